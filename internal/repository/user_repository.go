package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"mediafeed-server/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, digest string) error
	SearchByName(ctx context.Context, query string, skip, limit int64) ([]*domain.User, int64, error)
	FindSuggestions(ctx context.Context, exclude []primitive.ObjectID, limit int64) ([]*domain.User, error)
	ToggleFollow(ctx context.Context, targetID, followerID primitive.ObjectID) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

type userRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepository{
		coll: db.Collection("users"),
	}
}

// EnsureUserIndexes creates the unique email/username indexes at startup.
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to find users by ids: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by username: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	res, err := r.coll.UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
		"name":       user.Name,
		"email":      user.Email,
		"username":   user.Username,
		"updated_at": user.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, digest string) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"password": digest}})
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SearchByName(ctx context.Context, query string, skip, limit int64) ([]*domain.User, int64, error) {
	filter := bson.M{"name": primitive.Regex{
		Pattern: regexp.QuoteMeta(query),
		Options: "i",
	}}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("failed to decode search results: %w", err)
	}
	return users, total, nil
}

func (r *userRepository) FindSuggestions(ctx context.Context, exclude []primitive.ObjectID, limit int64) ([]*domain.User, error) {
	cursor, err := r.coll.Find(ctx,
		bson.M{"_id": bson.M{"$nin": exclude}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find suggestions: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*domain.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode suggestions: %w", err)
	}
	return users, nil
}

// ToggleFollow flips the follow relation between follower and target and
// reports whether the follower now follows the target. Each side is a single
// conditional update, so concurrent toggles cannot duplicate an entry.
func (r *userRepository) ToggleFollow(ctx context.Context, targetID, followerID primitive.ObjectID) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": targetID, "followers": followerID},
		bson.M{"$pull": bson.M{"followers": followerID}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to unfollow: %w", err)
	}

	if res.ModifiedCount > 0 {
		_, err = r.coll.UpdateOne(ctx,
			bson.M{"_id": followerID},
			bson.M{"$pull": bson.M{"following": targetID}},
		)
		if err != nil {
			return false, fmt.Errorf("failed to unfollow: %w", err)
		}
		return false, nil
	}

	res, err = r.coll.UpdateOne(ctx,
		bson.M{"_id": targetID, "followers": bson.M{"$ne": followerID}},
		bson.M{"$push": bson.M{"followers": bson.M{"$each": bson.A{followerID}, "$position": 0}}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to follow: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, ErrUserNotFound
	}

	_, err = r.coll.UpdateOne(ctx,
		bson.M{"_id": followerID, "following": bson.M{"$ne": targetID}},
		bson.M{"$push": bson.M{"following": bson.M{"$each": bson.A{targetID}, "$position": 0}}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to follow: %w", err)
	}
	return true, nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *userRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
