package repository

import (
	"context"
	"errors"
	"fmt"

	"mediafeed-server/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrPostNotFound = errors.New("post not found")

type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Post, error)
	FindAll(ctx context.Context) ([]*domain.Post, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*domain.Post, error)
	ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*domain.Post, bool, error)
	PushComment(ctx context.Context, postID, commentID primitive.ObjectID) (*domain.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type postRepository struct {
	coll *mongo.Collection
}

func NewPostRepository(db *mongo.Database) PostRepository {
	return &postRepository{
		coll: db.Collection("posts"),
	}
}

func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	res, err := r.coll.InsertOne(ctx, post)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		post.ID = oid
	}
	return nil
}

func (r *postRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Post, error) {
	var post domain.Post
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	return &post, nil
}

func (r *postRepository) FindAll(ctx context.Context) ([]*domain.Post, error) {
	return r.findSorted(ctx, bson.M{})
}

func (r *postRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]*domain.Post, error) {
	return r.findSorted(ctx, bson.M{"user": userID})
}

func (r *postRepository) findSorted(ctx context.Context, filter bson.M) ([]*domain.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find posts: %w", err)
	}
	defer cursor.Close(ctx)

	var posts []*domain.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

// ToggleLike flips the user's membership in the post's liker list and returns
// the updated post plus whether the post is now liked. Each direction is one
// conditional update against the store, so two concurrent likes cannot both
// insert.
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*domain.Post, bool, error) {
	after := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post domain.Post
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": postID, "likes": userID},
		bson.M{"$pull": bson.M{"likes": userID}},
		after,
	).Decode(&post)
	if err == nil {
		return &post, false, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, fmt.Errorf("failed to unlike post: %w", err)
	}

	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": postID, "likes": bson.M{"$ne": userID}},
		bson.M{"$push": bson.M{"likes": bson.M{"$each": bson.A{userID}, "$position": 0}}},
		after,
	).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, ErrPostNotFound
		}
		return nil, false, fmt.Errorf("failed to like post: %w", err)
	}
	return &post, true, nil
}

// PushComment prepends the comment id to the post's comment list.
func (r *postRepository) PushComment(ctx context.Context, postID, commentID primitive.ObjectID) (*domain.Post, error) {
	var post domain.Post
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": postID},
		bson.M{"$push": bson.M{"comments": bson.M{"$each": bson.A{commentID}, "$position": 0}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to append comment: %w", err)
	}
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}
