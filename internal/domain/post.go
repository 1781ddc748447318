package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post references its comments by id rather than embedding them. Likes and
// comments are ordered most-recent-first.
type Post struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	User      primitive.ObjectID   `json:"user" bson:"user"`
	Caption   string               `json:"caption" bson:"caption"`
	Excerpt   string               `json:"excerpt,omitempty" bson:"excerpt,omitempty"`
	Picture   string               `json:"picture" bson:"picture"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	Comments  []primitive.ObjectID `json:"comments" bson:"comments"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time            `json:"updated_at" bson:"updated_at"`
}

// PostView is a post with its author and liker references expanded. Comments
// are expanded only on single-post reads; feeds carry the ids.
type PostView struct {
	ID         string         `json:"id"`
	Caption    string         `json:"caption"`
	Excerpt    string         `json:"excerpt,omitempty"`
	Picture    string         `json:"picture"`
	User       *UserSummary   `json:"user"`
	Likes      []*UserSummary `json:"likes"`
	Comments   []*CommentView `json:"comments,omitempty"`
	CommentIDs []string       `json:"comment_ids"`
	CreatedAt  time.Time      `json:"created_at"`
}

type CreatePostRequest struct {
	Caption string `json:"caption" validate:"required"`
	Excerpt string `json:"excerpt"`
	Picture string `json:"picture" validate:"required"`
}

type CommentPostRequest struct {
	Comment string `json:"comment" validate:"required"`
}

type DeletePostResponse struct {
	ID string `json:"id"`
}
