package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mediafeed-server/internal/domain"
	"mediafeed-server/internal/repository"
	"mediafeed-server/pkg/hash"
	"mediafeed-server/pkg/jwt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthService struct {
	userRepo          repository.UserRepository
	accessSecret      string
	refreshSecret     string
	accessExpiration  time.Duration
	refreshExpiration time.Duration
}

func NewAuthService(userRepo repository.UserRepository, accessSecret, refreshSecret string, accessExp, refreshExp time.Duration) *AuthService {
	return &AuthService{
		userRepo:          userRepo,
		accessSecret:      accessSecret,
		refreshSecret:     refreshSecret,
		accessExpiration:  accessExp,
		refreshExpiration: refreshExp,
	}
}

func (s *AuthService) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.RegisterResponse, error) {
	if len(req.Password) < 6 {
		return nil, &ValidationError{Message: "password must be at least 6 characters"}
	}

	email := strings.ToLower(req.Email)

	emailExists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if emailExists {
		return nil, &ValidationError{Message: "email already exists"}
	}

	usernameExists, err := s.userRepo.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username existence: %w", err)
	}
	if usernameExists {
		return nil, &ValidationError{Message: "username already exists"}
	}

	hashedPassword, err := hash.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		Name:      req.Name,
		Email:     email,
		Username:  req.Username,
		Password:  hashedPassword,
		Followers: []primitive.ObjectID{},
		Following: []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Only the public username goes back to the caller.
	return &domain.RegisterResponse{Username: user.Username}, nil
}

func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := hash.Compare(user.Password, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := jwt.GenerateToken(user.ID.Hex(), s.accessExpiration, s.accessSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := jwt.GenerateRefreshToken(user.ID.Hex(), s.refreshExpiration, s.refreshSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &domain.LoginResponse{
		ID:           user.ID.Hex(),
		Username:     user.Username,
		Token:        accessToken,
		ExpiresIn:    int64(s.accessExpiration.Seconds()),
		RefreshToken: refreshToken,
	}, nil
}

// Refresh mints a new access token from the refresh-cookie token. Fails when
// the cookie is absent, the token does not verify, or the subject user has
// since disappeared.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenResponse, error) {
	if refreshToken == "" {
		return nil, ErrNotAuthorised
	}

	claims, err := jwt.ValidateToken(refreshToken, s.refreshSecret)
	if err != nil {
		return nil, ErrNotAuthorised
	}

	oid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, ErrNotAuthorised
	}

	user, err := s.userRepo.FindByID(ctx, oid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotAuthorised
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	accessToken, err := jwt.GenerateToken(user.ID.Hex(), s.accessExpiration, s.accessSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.TokenResponse{
		ID:        user.ID.Hex(),
		Username:  user.Username,
		Token:     accessToken,
		ExpiresIn: int64(s.accessExpiration.Seconds()),
	}, nil
}

// ValidateAccessToken resolves an access token to a user id. Used where the
// identity middleware is not in the path, e.g. websocket upgrades.
func (s *AuthService) ValidateAccessToken(token string) (string, error) {
	claims, err := jwt.ValidateToken(token, s.accessSecret)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	return claims.UserID, nil
}

func (s *AuthService) RefreshExpiration() time.Duration {
	return s.refreshExpiration
}
