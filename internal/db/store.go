package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/BorisDmv/blog-posts-api/internal/models"
)

// ErrNotFound is returned when no post or user matches the given id.
var ErrNotFound = errors.New("not found")

// PostStore is the persistence contract the posts handler depends on.
type PostStore interface {
	CreatePost(ctx context.Context, post models.NewPost) (*models.Post, error)
	ListPosts(ctx context.Context) ([]models.Post, error)
	GetPost(ctx context.Context, id string) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, update models.PostUpdate) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error
}

type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
}

// Store is a post and user store with an explicit lifecycle.
type Store interface {
	PostStore
	UserStore
	Close(ctx context.Context) error
}

type Options struct {
	DatabaseURL   string
	MongoDatabase string
}

// Open connects to the store selected by the scheme of opts.DatabaseURL and
// prepares its schema.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch scheme(opts.DatabaseURL) {
	case "postgres", "postgresql":
		store, err := NewPostgresStore(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close(ctx)
			return nil, err
		}
		return store, nil
	case "mongodb", "mongodb+srv":
		store, err := NewMongoStore(ctx, opts.DatabaseURL, opts.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close(ctx)
			return nil, err
		}
		return store, nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database url scheme %q", scheme(opts.DatabaseURL))
	}
}

func scheme(databaseURL string) string {
	i := strings.Index(databaseURL, "://")
	if i <= 0 {
		return ""
	}
	return strings.ToLower(databaseURL[:i])
}
