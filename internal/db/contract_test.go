package db

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/BorisDmv/blog-posts-api/internal/models"
)

func strPtr(s string) *string { return &s }

// testStoreContract runs the behaviour every Store implementation must share.
func testStoreContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	user, err := store.CreateUser(ctx, models.User{
		Username:     "ada-" + uuid.NewString()[:8],
		Email:        "ada@example.com",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	author := models.Identity{ID: user.ID}

	t.Run("create rejects missing title", func(t *testing.T) {
		_, err := store.CreatePost(ctx, models.NewPost{Content: "body", Author: author})
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	first, err := store.CreatePost(ctx, models.NewPost{Title: "first", Content: "one", Category: "go", Author: author})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := store.CreatePost(ctx, models.NewPost{Title: "second", Content: "two", Author: author})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	t.Cleanup(func() {
		_ = store.DeletePost(ctx, first.ID)
		_ = store.DeletePost(ctx, second.ID)
	})

	t.Run("create assigns id, createdAt and author", func(t *testing.T) {
		if first.ID == "" || first.ID == second.ID {
			t.Errorf("ids not unique: %q %q", first.ID, second.ID)
		}
		if first.CreatedAt.IsZero() {
			t.Error("createdAt not set")
		}
		if first.Author.ID != user.ID {
			t.Errorf("author = %q, want %q", first.Author.ID, user.ID)
		}
		if first.Title != "first" || first.Content != "one" || first.Category != "go" {
			t.Errorf("fields not stored: %+v", first)
		}
	})

	t.Run("list is newest first with projected author", func(t *testing.T) {
		posts, err := store.ListPosts(ctx)
		if err != nil {
			t.Fatal(err)
		}
		for i := 1; i < len(posts); i++ {
			if posts[i].CreatedAt.After(posts[i-1].CreatedAt) {
				t.Fatalf("posts out of order at %d: %v after %v", i, posts[i].CreatedAt, posts[i-1].CreatedAt)
			}
		}
		idx := map[string]int{}
		for i, p := range posts {
			idx[p.ID] = i
			if p.ID == first.ID || p.ID == second.ID {
				if p.Author.Username != user.Username || p.Author.Email != user.Email {
					t.Errorf("author not projected: %+v", p.Author)
				}
			}
		}
		i1, ok1 := idx[first.ID]
		i2, ok2 := idx[second.ID]
		if !ok1 || !ok2 {
			t.Fatalf("created posts missing from list")
		}
		if i2 > i1 && second.CreatedAt.After(first.CreatedAt) {
			t.Errorf("second post listed after first")
		}
	})

	t.Run("get projects author", func(t *testing.T) {
		got, err := store.GetPost(ctx, first.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Title != "first" || got.Author.ID != user.ID || got.Author.Username != user.Username {
			t.Errorf("unexpected post: %+v", got)
		}
	})

	t.Run("get malformed id is not found", func(t *testing.T) {
		if _, err := store.GetPost(ctx, "does-not-exist"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("update changes only given fields", func(t *testing.T) {
		updated, err := store.UpdatePost(ctx, first.ID, models.PostUpdate{Title: strPtr("first, edited")})
		if err != nil {
			t.Fatal(err)
		}
		if updated.Title != "first, edited" {
			t.Errorf("title = %q", updated.Title)
		}
		if updated.ID != first.ID || updated.Author.ID != user.ID || updated.Content != "one" || updated.Category != "go" {
			t.Errorf("unexpected fields changed: %+v", updated)
		}
		if !updated.CreatedAt.Equal(first.CreatedAt) {
			t.Errorf("createdAt changed: %v != %v", updated.CreatedAt, first.CreatedAt)
		}

		got, err := store.GetPost(ctx, first.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Title != "first, edited" {
			t.Errorf("stored title = %q", got.Title)
		}
	})

	t.Run("empty update returns current post", func(t *testing.T) {
		got, err := store.UpdatePost(ctx, second.ID, models.PostUpdate{})
		if err != nil {
			t.Fatal(err)
		}
		if got.Title != "second" || got.Content != "two" {
			t.Errorf("unexpected post: %+v", got)
		}
	})

	t.Run("update rejects blank title", func(t *testing.T) {
		_, err := store.UpdatePost(ctx, second.ID, models.PostUpdate{Title: strPtr("")})
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("delete then get and delete again are not found", func(t *testing.T) {
		doomed, err := store.CreatePost(ctx, models.NewPost{Title: "doomed", Author: author})
		if err != nil {
			t.Fatal(err)
		}
		if err := store.DeletePost(ctx, doomed.ID); err != nil {
			t.Fatal(err)
		}
		if _, err := store.GetPost(ctx, doomed.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("get after delete: expected ErrNotFound, got %v", err)
		}
		if _, err := store.UpdatePost(ctx, doomed.ID, models.PostUpdate{Title: strPtr("x")}); !errors.Is(err, ErrNotFound) {
			t.Errorf("update after delete: expected ErrNotFound, got %v", err)
		}
		if err := store.DeletePost(ctx, doomed.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("second delete: expected ErrNotFound, got %v", err)
		}
	})
}
