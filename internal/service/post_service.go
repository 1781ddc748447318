package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mediafeed-server/internal/domain"
	"mediafeed-server/internal/repository"
	"mediafeed-server/internal/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PictureStore removes stored picture objects when their owning post goes
// away. Satisfied by storage.MediaStore.
type PictureStore interface {
	Delete(ctx context.Context, key string) error
}

type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	userRepo    repository.UserRepository
	notifier    Notifier
	pictures    PictureStore
}

func NewPostService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, userRepo repository.UserRepository, notifier Notifier, pictures PictureStore) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		pictures:    pictures,
	}
}

func (s *PostService) AddPost(ctx context.Context, identity string, req *domain.CreatePostRequest) (*domain.PostView, error) {
	uid, err := requireIdentity(identity)
	if err != nil {
		return nil, err
	}

	author, err := s.userRepo.FindByID(ctx, uid)
	if err != nil {
		return nil, s.mapUserErr(err)
	}

	now := time.Now()
	post := &domain.Post{
		User:      uid,
		Caption:   req.Caption,
		Excerpt:   req.Excerpt,
		Picture:   req.Picture,
		Likes:     []primitive.ObjectID{},
		Comments:  []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	if s.notifier != nil && len(author.Followers) > 0 {
		followers := make([]string, 0, len(author.Followers))
		for _, f := range author.Followers {
			followers = append(followers, f.Hex())
		}
		s.notifier.NotifyUsers(followers, websocket.EventPostCreated, &websocket.PostCreatedPayload{
			PostID: post.ID.Hex(),
			UserID: uid.Hex(),
		})
	}

	return &domain.PostView{
		ID:         post.ID.Hex(),
		Caption:    post.Caption,
		Excerpt:    post.Excerpt,
		Picture:    post.Picture,
		User:       author.Summary(),
		Likes:      []*domain.UserSummary{},
		CommentIDs: []string{},
		CreatedAt:  post.CreatedAt,
	}, nil
}

func (s *PostService) Feed(ctx context.Context, identity string) ([]*domain.PostView, error) {
	if _, err := requireIdentity(identity); err != nil {
		return nil, err
	}

	posts, err := s.postRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}

	return s.expandPosts(ctx, posts, false)
}

func (s *PostService) UserPosts(ctx context.Context, identity, userID string) ([]*domain.PostView, error) {
	if _, err := requireIdentity(identity); err != nil {
		return nil, err
	}

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, &NotFoundError{Resource: "user"}
	}

	posts, err := s.postRepo.FindByUser(ctx, oid)
	if err != nil {
		return nil, fmt.Errorf("failed to load user posts: %w", err)
	}

	return s.expandPosts(ctx, posts, false)
}

func (s *PostService) GetPost(ctx context.Context, identity, postID string) (*domain.PostView, error) {
	if _, err := requireIdentity(identity); err != nil {
		return nil, err
	}

	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, &NotFoundError{Resource: "post"}
	}

	post, err := s.postRepo.FindByID(ctx, oid)
	if err != nil {
		return nil, s.mapPostErr(err)
	}

	views, err := s.expandPosts(ctx, []*domain.Post{post}, true)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// LikePost toggles the caller's membership in the post's liker list.
func (s *PostService) LikePost(ctx context.Context, identity, postID string) (*domain.PostView, error) {
	uid, err := requireIdentity(identity)
	if err != nil {
		return nil, err
	}

	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, &NotFoundError{Resource: "post"}
	}

	post, liked, err := s.postRepo.ToggleLike(ctx, oid, uid)
	if err != nil {
		return nil, s.mapPostErr(err)
	}

	if liked && s.notifier != nil && post.User != uid {
		s.notifier.NotifyUser(post.User.Hex(), websocket.EventPostLiked, &websocket.PostLikedPayload{
			PostID: post.ID.Hex(),
			UserID: uid.Hex(),
		})
	}

	views, err := s.expandPosts(ctx, []*domain.Post{post}, false)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// CommentPost validates the post exists before creating the comment record,
// so a bad post id writes nothing.
func (s *PostService) CommentPost(ctx context.Context, identity, postID string, req *domain.CommentPostRequest) (*domain.PostView, error) {
	uid, err := requireIdentity(identity)
	if err != nil {
		return nil, err
	}

	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, &NotFoundError{Resource: "post"}
	}

	if _, err := s.postRepo.FindByID(ctx, oid); err != nil {
		return nil, s.mapPostErr(err)
	}

	comment := &domain.Comment{
		User:      uid,
		Post:      oid,
		Comment:   req.Comment,
		Likes:     []primitive.ObjectID{},
		CreatedAt: time.Now(),
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	post, err := s.postRepo.PushComment(ctx, oid, comment.ID)
	if err != nil {
		return nil, s.mapPostErr(err)
	}

	if s.notifier != nil && post.User != uid {
		s.notifier.NotifyUser(post.User.Hex(), websocket.EventPostCommented, &websocket.PostCommentedPayload{
			PostID:    post.ID.Hex(),
			CommentID: comment.ID.Hex(),
			UserID:    uid.Hex(),
		})
	}

	views, err := s.expandPosts(ctx, []*domain.Post{post}, true)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// RemovePost hard-deletes an owned post and cascades to its comments and
// stored picture. The cascade is best-effort: a failure after the post delete
// is logged, not rolled back.
func (s *PostService) RemovePost(ctx context.Context, identity, postID string) (*domain.DeletePostResponse, error) {
	uid, err := requireIdentity(identity)
	if err != nil {
		return nil, err
	}

	oid, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return nil, &NotFoundError{Resource: "post"}
	}

	post, err := s.postRepo.FindByID(ctx, oid)
	if err != nil {
		return nil, s.mapPostErr(err)
	}

	if post.User != uid {
		return nil, ErrForbidden
	}

	if err := s.postRepo.Delete(ctx, oid); err != nil {
		return nil, s.mapPostErr(err)
	}

	if _, err := s.commentRepo.DeleteByIDs(ctx, post.Comments); err != nil {
		log.Printf("cascade: failed to delete comments for post %s: %v", oid.Hex(), err)
	}

	if s.pictures != nil && post.Picture != "" {
		if err := s.pictures.Delete(ctx, post.Picture); err != nil {
			log.Printf("cascade: failed to delete picture %s: %v", post.Picture, err)
		}
	}

	return &domain.DeletePostResponse{ID: oid.Hex()}, nil
}

// expandPosts resolves authors, likers and (optionally) comments for a page
// of posts with one grouped fetch per collection.
func (s *PostService) expandPosts(ctx context.Context, posts []*domain.Post, withComments bool) ([]*domain.PostView, error) {
	userIDSet := make(map[primitive.ObjectID]bool)
	for _, p := range posts {
		userIDSet[p.User] = true
		for _, l := range p.Likes {
			userIDSet[l] = true
		}
	}

	var comments []*domain.Comment
	commentIndex := make(map[primitive.ObjectID]*domain.Comment)
	if withComments {
		var commentIDs []primitive.ObjectID
		for _, p := range posts {
			commentIDs = append(commentIDs, p.Comments...)
		}

		var err error
		comments, err = s.commentRepo.FindByIDs(ctx, commentIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to expand comments: %w", err)
		}

		for _, c := range comments {
			commentIndex[c.ID] = c
			userIDSet[c.User] = true
			for _, l := range c.Likes {
				userIDSet[l] = true
			}
		}
	}

	userIDs := make([]primitive.ObjectID, 0, len(userIDSet))
	for id := range userIDSet {
		userIDs = append(userIDs, id)
	}

	users, err := s.userRepo.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to expand users: %w", err)
	}

	userIndex := make(map[primitive.ObjectID]*domain.User, len(users))
	for _, u := range users {
		userIndex[u.ID] = u
	}

	pickUsers := func(ids []primitive.ObjectID) []*domain.UserSummary {
		out := make([]*domain.UserSummary, 0, len(ids))
		for _, id := range ids {
			if u, ok := userIndex[id]; ok {
				out = append(out, u.Summary())
			}
		}
		return out
	}

	views := make([]*domain.PostView, 0, len(posts))
	for _, p := range posts {
		view := &domain.PostView{
			ID:         p.ID.Hex(),
			Caption:    p.Caption,
			Excerpt:    p.Excerpt,
			Picture:    p.Picture,
			Likes:      pickUsers(p.Likes),
			CommentIDs: hexIDs(p.Comments),
			CreatedAt:  p.CreatedAt,
		}

		if author, ok := userIndex[p.User]; ok {
			view.User = author.Summary()
		}

		if withComments {
			view.Comments = make([]*domain.CommentView, 0, len(p.Comments))
			for _, cid := range p.Comments {
				c, ok := commentIndex[cid]
				if !ok {
					continue
				}

				cv := &domain.CommentView{
					ID:        c.ID.Hex(),
					Comment:   c.Comment,
					Likes:     pickUsers(c.Likes),
					CreatedAt: c.CreatedAt,
				}
				if author, ok := userIndex[c.User]; ok {
					cv.User = author.Summary()
				}
				view.Comments = append(view.Comments, cv)
			}
		}

		views = append(views, view)
	}

	return views, nil
}

func (s *PostService) mapPostErr(err error) error {
	if errors.Is(err, repository.ErrPostNotFound) {
		return &NotFoundError{Resource: "post"}
	}
	return err
}

func (s *PostService) mapUserErr(err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return &NotFoundError{Resource: "user"}
	}
	return err
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
