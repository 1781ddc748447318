package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment lives in its own collection and is referenced by the owning post.
// It is destroyed when the parent post is destroyed.
type Comment struct {
	ID        primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	User      primitive.ObjectID   `json:"user" bson:"user"`
	Post      primitive.ObjectID   `json:"post" bson:"post"`
	Comment   string               `json:"comment" bson:"comment"`
	Likes     []primitive.ObjectID `json:"likes" bson:"likes"`
	CreatedAt time.Time            `json:"created_at" bson:"created_at"`
}

type CommentView struct {
	ID        string         `json:"id"`
	Comment   string         `json:"comment"`
	User      *UserSummary   `json:"user"`
	Likes     []*UserSummary `json:"likes"`
	CreatedAt time.Time      `json:"created_at"`
}
