package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the stored document. Email is persisted lowercased; the password
// digest never leaves the server. Followers and following are ordered
// most-recent-first and kept symmetric by the follow toggle.
type User struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name      string               `json:"name" bson:"name"`
	Email     string               `json:"email" bson:"email"`
	Username  string               `json:"username" bson:"username"`
	Password  string               `json:"-" bson:"password"`
	Followers []primitive.ObjectID `json:"followers" bson:"followers"`
	Following []primitive.ObjectID `json:"following" bson:"following"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updated_at"`
}

// UserSummary is the projection used when expanding follower/liker/author
// references.
type UserSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:       u.ID.Hex(),
		Name:     u.Name,
		Username: u.Username,
	}
}

// UserProfile is a user with follower/following references expanded.
type UserProfile struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Username  string         `json:"username"`
	Followers []*UserSummary `json:"followers"`
	Following []*UserSummary `json:"following"`
	CreatedAt time.Time      `json:"created_at"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Password string `json:"password" validate:"required,min=6"`
}

type RegisterResponse struct {
	Username string `json:"username"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Token        string `json:"token"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"-"`
}

type TokenResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

type UpdateProfileRequest struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email    string `json:"email" validate:"required,email"`
}

type ChangePasswordRequest struct {
	Password string `json:"password" validate:"required"`
	NewPwd   string `json:"new_pwd" validate:"required,min=6"`
}

// Page describes one page of a paginated result set.
type Page struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type SearchResponse struct {
	Results []*UserSummary `json:"results"`
	Next    *Page          `json:"next,omitempty"`
	Prev    *Page          `json:"prev,omitempty"`
}
