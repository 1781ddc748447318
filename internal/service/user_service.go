package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mediafeed-server/internal/domain"
	"mediafeed-server/internal/repository"
	"mediafeed-server/internal/websocket"
	"mediafeed-server/pkg/hash"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	searchPageSize  = 10
	suggestionLimit = 10
)

type UserService struct {
	userRepo repository.UserRepository
	notifier Notifier
}

func NewUserService(userRepo repository.UserRepository, notifier Notifier) *UserService {
	return &UserService{
		userRepo: userRepo,
		notifier: notifier,
	}
}

func (s *UserService) GetMe(ctx context.Context, identity string) (*domain.UserProfile, error) {
	uid, err := requireIdentity(identity)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, uid)
	if err != nil {
		return nil, s.mapUserErr(err)
	}

	return s.expandProfile(ctx, user)
}

func (s *UserService) GetUser(ctx context.Context, identity, targetID string) (*domain.UserProfile, error) {
	if _, err := requireIdentity(identity); err != nil {
		return nil, err
	}

	oid, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return nil, &NotFoundError{Resource: "user"}
	}

	user, err := s.userRepo.FindByID(ctx, oid)
	if err != nil {
		return nil, s.mapUserErr(err)
	}

	return s.expandProfile(ctx, user)
}

func (s *UserService) UpdateProfile(ctx context.Context, identity string, req *domain.UpdateProfileRequest) (*domain.UserProfile, error) {
	uid, err := requireIdentity(identity)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, uid)
	if err != nil {
		return nil, s.mapUserErr(err)
	}

	email := strings.ToLower(req.Email)

	// Duplicate checks must not trip on the caller's own record.
	if existing, err := s.userRepo.FindByEmail(ctx, email); err == nil && existing.ID != uid {
		return nil, &ValidationError{Message: "email already exists"}
	} else if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	if existing, err := s.userRepo.FindByUsername(ctx, req.Username); err == nil && existing.ID != uid {
		return nil, &ValidationError{Message: "username already exists"}
	} else if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	user.Name = req.Name
	user.Username = req.Username
	user.Email = email
	user.UpdatedAt = time.Now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return s.expandProfile(ctx, user)
}

func (s *UserService) ChangePassword(ctx context.Context, identity string, req *domain.ChangePasswordRequest) error {
	uid, err := requireIdentity(identity)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, uid)
	if err != nil {
		return s.mapUserErr(err)
	}

	if err := hash.Compare(user.Password, req.Password); err != nil {
		return ErrIncorrectPassword
	}

	if len(req.NewPwd) < 6 {
		return &ValidationError{Message: "password must be at least 6 characters"}
	}

	digest, err := hash.Hash(req.NewPwd)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, uid, digest); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

// FollowUser toggles the symmetric follow relation and returns the caller's
// updated profile.
func (s *UserService) FollowUser(ctx context.Context, identity, targetID string) (*domain.UserProfile, error) {
	uid, err := requireIdentity(identity)
	if err != nil {
		return nil, err
	}

	target, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return nil, &NotFoundError{Resource: "user"}
	}

	if target == uid {
		return nil, &ValidationError{Message: "cannot follow yourself"}
	}

	if _, err := s.userRepo.FindByID(ctx, target); err != nil {
		return nil, s.mapUserErr(err)
	}

	followed, err := s.userRepo.ToggleFollow(ctx, target, uid)
	if err != nil {
		return nil, s.mapUserErr(err)
	}

	if followed && s.notifier != nil {
		s.notifier.NotifyUser(target.Hex(), websocket.EventUserFollowed, &websocket.UserFollowedPayload{
			UserID: uid.Hex(),
		})
	}

	current, err := s.userRepo.FindByID(ctx, uid)
	if err != nil {
		return nil, s.mapUserErr(err)
	}

	return s.expandProfile(ctx, current)
}

func (s *UserService) SearchUsers(ctx context.Context, identity, query string, page int) (*domain.SearchResponse, error) {
	if _, err := requireIdentity(identity); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}

	skip := int64(page-1) * searchPageSize

	users, total, err := s.userRepo.SearchByName(ctx, query, skip, searchPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	resp := &domain.SearchResponse{
		Results: summarize(users),
	}

	if skip+searchPageSize < total {
		resp.Next = &domain.Page{Page: page + 1, Limit: searchPageSize}
	}
	if skip > 0 {
		resp.Prev = &domain.Page{Page: page - 1, Limit: searchPageSize}
	}
	return resp, nil
}

// Suggestions lists users the caller does not follow yet, excluding the
// caller themselves.
func (s *UserService) Suggestions(ctx context.Context, identity string) ([]*domain.UserSummary, error) {
	uid, err := requireIdentity(identity)
	if err != nil {
		return nil, err
	}

	current, err := s.userRepo.FindByID(ctx, uid)
	if err != nil {
		return nil, s.mapUserErr(err)
	}

	exclude := append([]primitive.ObjectID{uid}, current.Following...)

	users, err := s.userRepo.FindSuggestions(ctx, exclude, suggestionLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load suggestions: %w", err)
	}

	return summarize(users), nil
}

// expandProfile resolves the follower and following id lists with one grouped
// fetch instead of a lookup per referenced user.
func (s *UserService) expandProfile(ctx context.Context, user *domain.User) (*domain.UserProfile, error) {
	ids := make([]primitive.ObjectID, 0, len(user.Followers)+len(user.Following))
	ids = append(ids, user.Followers...)
	ids = append(ids, user.Following...)

	related, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to expand profile: %w", err)
	}

	index := make(map[primitive.ObjectID]*domain.User, len(related))
	for _, u := range related {
		index[u.ID] = u
	}

	pick := func(ids []primitive.ObjectID) []*domain.UserSummary {
		out := make([]*domain.UserSummary, 0, len(ids))
		for _, id := range ids {
			if u, ok := index[id]; ok {
				out = append(out, u.Summary())
			}
		}
		return out
	}

	return &domain.UserProfile{
		ID:        user.ID.Hex(),
		Name:      user.Name,
		Email:     user.Email,
		Username:  user.Username,
		Followers: pick(user.Followers),
		Following: pick(user.Following),
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *UserService) mapUserErr(err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return &NotFoundError{Resource: "user"}
	}
	return err
}

func summarize(users []*domain.User) []*domain.UserSummary {
	out := make([]*domain.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out
}
