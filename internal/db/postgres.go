package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BorisDmv/blog-posts-api/internal/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying pgxpool.Pool
func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConnIdleTime = 5 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close(ctx context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Migrate creates the posts and users tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS users (
		    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		    username TEXT NOT NULL UNIQUE,
		    email TEXT NOT NULL DEFAULT '',
		    password_hash TEXT NOT NULL,
		    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS posts (
		    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		    author TEXT NOT NULL,
		    title TEXT NOT NULL,
		    content TEXT NOT NULL DEFAULT '',
		    category TEXT NOT NULL DEFAULT '',
		    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS posts_created_at_idx ON posts (created_at DESC);
	`
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreatePost(ctx context.Context, post models.NewPost) (*models.Post, error) {
	if err := post.Validate(); err != nil {
		return nil, err
	}

	const query = `
		INSERT INTO posts (author, title, content, category)
		VALUES ($1, $2, $3, $4)
		RETURNING id::text, title, content, category, author, created_at
	`

	var created models.Post
	err := s.pool.QueryRow(ctx, query,
		post.Author.ID,
		post.Title,
		post.Content,
		post.Category,
	).Scan(
		&created.ID,
		&created.Title,
		&created.Content,
		&created.Category,
		&created.Author.ID,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &created, nil
}

const selectPostWithAuthor = `
	SELECT
		p.id::text,
		p.title,
		p.content,
		p.category,
		p.author,
		COALESCE(u.username, ''),
		COALESCE(u.email, ''),
		p.created_at
	FROM posts p
	LEFT JOIN users u ON u.id::text = p.author
`

func scanPostWithAuthor(row pgx.Row, post *models.Post) error {
	return row.Scan(
		&post.ID,
		&post.Title,
		&post.Content,
		&post.Category,
		&post.Author.ID,
		&post.Author.Username,
		&post.Author.Email,
		&post.CreatedAt,
	)
}

func (s *PostgresStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	rows, err := s.pool.Query(ctx, selectPostWithAuthor+" ORDER BY p.created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0)
	for rows.Next() {
		var post models.Post
		if err := scanPostWithAuthor(rows, &post); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return posts, nil
}

func (s *PostgresStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var post models.Post
	err := scanPostWithAuthor(s.pool.QueryRow(ctx, selectPostWithAuthor+" WHERE p.id = $1", id), &post)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return &post, nil
}

// UpdatePost overwrites only the fields set in update. NULL parameters keep
// the current column value, so an empty update returns the post unchanged.
func (s *PostgresStore) UpdatePost(ctx context.Context, id string, update models.PostUpdate) (*models.Post, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	const query = `
		UPDATE posts SET
			title = COALESCE($2, title),
			content = COALESCE($3, content),
			category = COALESCE($4, category)
		WHERE id = $1
		RETURNING id::text, title, content, category, author, created_at
	`

	var updated models.Post
	err := s.pool.QueryRow(ctx, query, id, update.Title, update.Content, update.Category).Scan(
		&updated.ID,
		&updated.Title,
		&updated.Content,
		&updated.Category,
		&updated.Author.ID,
		&updated.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	return &updated, nil
}

func (s *PostgresStore) DeletePost(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	tag, err := s.pool.Exec(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const query = `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id::text, username, email, password_hash, created_at
	`

	var created models.User
	err := s.pool.QueryRow(ctx, query, user.Username, user.Email, user.PasswordHash).Scan(
		&created.ID,
		&created.Username,
		&created.Email,
		&created.PasswordHash,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &created, nil
}
