package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"mediafeed-server/internal/domain"
	"mediafeed-server/pkg/hash"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserService_AnonymousRejected(t *testing.T) {
	svc := NewUserService(newMockUserRepo(), nil)

	if _, err := svc.GetMe(context.Background(), ""); !errors.Is(err, ErrNotAuthorised) {
		t.Errorf("GetMe() error = %v, want %v", err, ErrNotAuthorised)
	}
	if _, err := svc.FollowUser(context.Background(), "", primitive.NewObjectID().Hex()); !errors.Is(err, ErrNotAuthorised) {
		t.Errorf("FollowUser() error = %v, want %v", err, ErrNotAuthorised)
	}
	if _, err := svc.SearchUsers(context.Background(), "", "al", 1); !errors.Is(err, ErrNotAuthorised) {
		t.Errorf("SearchUsers() error = %v, want %v", err, ErrNotAuthorised)
	}
}

func TestUserService_FollowToggle(t *testing.T) {
	repo := newMockUserRepo()
	alice := seedUser(repo, "Alice", "alice@example.com", "alice", "secret1")
	bob := seedUser(repo, "Bob", "bob@example.com", "bob", "secret1")
	carol := seedUser(repo, "Carol", "carol@example.com", "carol", "secret1")
	svc := NewUserService(repo, nil)

	// Carol already follows Bob so ordering is observable.
	if _, err := repo.ToggleFollow(context.Background(), bob.ID, carol.ID); err != nil {
		t.Fatalf("seed follow error = %v", err)
	}

	profile, err := svc.FollowUser(context.Background(), alice.ID.Hex(), bob.ID.Hex())
	if err != nil {
		t.Fatalf("FollowUser() error = %v", err)
	}

	if len(bob.Followers) != 2 || bob.Followers[0] != alice.ID {
		t.Errorf("follow did not insert at front: followers = %v", bob.Followers)
	}
	if len(alice.Following) != 1 || alice.Following[0] != bob.ID {
		t.Errorf("follow did not update following side: following = %v", alice.Following)
	}
	if len(profile.Following) != 1 || profile.Following[0].ID != bob.ID.Hex() {
		t.Errorf("FollowUser() profile following = %+v", profile.Following)
	}

	// Toggling again must restore both sides exactly.
	if _, err := svc.FollowUser(context.Background(), alice.ID.Hex(), bob.ID.Hex()); err != nil {
		t.Fatalf("FollowUser() unfollow error = %v", err)
	}

	if len(bob.Followers) != 1 || bob.Followers[0] != carol.ID {
		t.Errorf("unfollow did not restore followers: %v", bob.Followers)
	}
	if len(alice.Following) != 0 {
		t.Errorf("unfollow did not restore following: %v", alice.Following)
	}
}

func TestUserService_FollowErrors(t *testing.T) {
	repo := newMockUserRepo()
	alice := seedUser(repo, "Alice", "alice@example.com", "alice", "secret1")
	svc := NewUserService(repo, nil)

	t.Run("unknown target", func(t *testing.T) {
		var notFound *NotFoundError
		_, err := svc.FollowUser(context.Background(), alice.ID.Hex(), primitive.NewObjectID().Hex())
		if !errors.As(err, &notFound) {
			t.Errorf("FollowUser() error = %v, want NotFoundError", err)
		}
	})

	t.Run("self follow", func(t *testing.T) {
		var validation *ValidationError
		_, err := svc.FollowUser(context.Background(), alice.ID.Hex(), alice.ID.Hex())
		if !errors.As(err, &validation) {
			t.Errorf("FollowUser() error = %v, want ValidationError", err)
		}
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	repo := newMockUserRepo()
	alice := seedUser(repo, "Alice", "alice@example.com", "alice", "oldpass")
	svc := NewUserService(repo, nil)

	t.Run("incorrect old password", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), alice.ID.Hex(), &domain.ChangePasswordRequest{
			Password: "wrongpass",
			NewPwd:   "newpass1",
		})
		if !errors.Is(err, ErrIncorrectPassword) {
			t.Errorf("ChangePassword() error = %v, want %v", err, ErrIncorrectPassword)
		}
	})

	t.Run("new password too short", func(t *testing.T) {
		var validation *ValidationError
		err := svc.ChangePassword(context.Background(), alice.ID.Hex(), &domain.ChangePasswordRequest{
			Password: "oldpass",
			NewPwd:   "short",
		})
		if !errors.As(err, &validation) {
			t.Errorf("ChangePassword() error = %v, want ValidationError", err)
		}
	})

	t.Run("successful change", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), alice.ID.Hex(), &domain.ChangePasswordRequest{
			Password: "oldpass",
			NewPwd:   "newpass1",
		})
		if err != nil {
			t.Fatalf("ChangePassword() error = %v", err)
		}

		if err := hash.Compare(alice.Password, "newpass1"); err != nil {
			t.Error("new password does not verify against stored digest")
		}
		if err := hash.Compare(alice.Password, "oldpass"); err == nil {
			t.Error("old password still verifies after change")
		}
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	repo := newMockUserRepo()
	alice := seedUser(repo, "Alice", "alice@example.com", "alice", "secret1")
	seedUser(repo, "Bob", "bob@example.com", "bob", "secret1")
	svc := NewUserService(repo, nil)

	t.Run("duplicate email of another user", func(t *testing.T) {
		var validation *ValidationError
		_, err := svc.UpdateProfile(context.Background(), alice.ID.Hex(), &domain.UpdateProfileRequest{
			Name:     "Alice",
			Username: "alice",
			Email:    "bob@example.com",
		})
		if !errors.As(err, &validation) {
			t.Errorf("UpdateProfile() error = %v, want ValidationError", err)
		}
	})

	t.Run("keeping own email is allowed", func(t *testing.T) {
		profile, err := svc.UpdateProfile(context.Background(), alice.ID.Hex(), &domain.UpdateProfileRequest{
			Name:     "Alice Cooper",
			Username: "alice",
			Email:    "Alice@Example.com",
		})
		if err != nil {
			t.Fatalf("UpdateProfile() error = %v", err)
		}
		if profile.Name != "Alice Cooper" {
			t.Errorf("UpdateProfile() name = %v", profile.Name)
		}
		if profile.Email != "alice@example.com" {
			t.Errorf("UpdateProfile() email = %v, want lowercased", profile.Email)
		}
	})
}

func TestUserService_SearchUsers(t *testing.T) {
	repo := newMockUserRepo()
	viewer := seedUser(repo, "Viewer", "viewer@example.com", "viewer", "secret1")
	for i := 1; i <= 15; i++ {
		seedUser(repo,
			fmt.Sprintf("Alina %02d", i),
			fmt.Sprintf("alina%02d@example.com", i),
			fmt.Sprintf("alina%02d", i),
			"secret1",
		)
	}
	svc := NewUserService(repo, nil)

	page1, err := svc.SearchUsers(context.Background(), viewer.ID.Hex(), "al", 1)
	if err != nil {
		t.Fatalf("SearchUsers() error = %v", err)
	}

	if len(page1.Results) != 10 {
		t.Errorf("page 1 results = %d, want 10", len(page1.Results))
	}
	if page1.Next == nil || page1.Next.Page != 2 || page1.Next.Limit != 10 {
		t.Errorf("page 1 next = %+v, want {page:2 limit:10}", page1.Next)
	}
	if page1.Prev != nil {
		t.Errorf("page 1 prev = %+v, want nil", page1.Prev)
	}

	page2, err := svc.SearchUsers(context.Background(), viewer.ID.Hex(), "AL", 2)
	if err != nil {
		t.Fatalf("SearchUsers() error = %v", err)
	}

	if len(page2.Results) != 5 {
		t.Errorf("page 2 results = %d, want 5", len(page2.Results))
	}
	if page2.Next != nil {
		t.Errorf("page 2 next = %+v, want nil", page2.Next)
	}
	if page2.Prev == nil || page2.Prev.Page != 1 || page2.Prev.Limit != 10 {
		t.Errorf("page 2 prev = %+v, want {page:1 limit:10}", page2.Prev)
	}
}

func TestUserService_Suggestions(t *testing.T) {
	repo := newMockUserRepo()
	alice := seedUser(repo, "Alice", "alice@example.com", "alice", "secret1")
	bob := seedUser(repo, "Bob", "bob@example.com", "bob", "secret1")
	carol := seedUser(repo, "Carol", "carol@example.com", "carol", "secret1")
	svc := NewUserService(repo, nil)

	if _, err := repo.ToggleFollow(context.Background(), bob.ID, alice.ID); err != nil {
		t.Fatalf("seed follow error = %v", err)
	}

	suggestions, err := svc.Suggestions(context.Background(), alice.ID.Hex())
	if err != nil {
		t.Fatalf("Suggestions() error = %v", err)
	}

	if len(suggestions) != 1 || suggestions[0].ID != carol.ID.Hex() {
		t.Errorf("Suggestions() = %+v, want only %v", suggestions, carol.Username)
	}
}
