package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BorisDmv/blog-posts-api/internal/models"
)

type memoryPost struct {
	post models.Post
	seq  uint64
}

// MemoryStore is an in-process store for development and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	posts map[string]memoryPost
	users map[string]models.User
	seq   uint64
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		posts: make(map[string]memoryPost),
		users: make(map[string]models.User),
		now:   time.Now,
	}
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) CreatePost(ctx context.Context, post models.NewPost) (*models.Post, error) {
	if err := post.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	created := models.Post{
		ID:        uuid.NewString(),
		Title:     post.Title,
		Content:   post.Content,
		Category:  post.Category,
		Author:    models.Author{ID: post.Author.ID},
		CreatedAt: s.now().UTC(),
	}
	s.posts[created.ID] = memoryPost{post: created, seq: s.seq}
	return &created, nil
}

// ListPosts orders by creation time, newest first. Posts created within the
// same clock tick keep reverse insertion order.
func (s *MemoryStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]memoryPost, 0, len(s.posts))
	for _, entry := range s.posts {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.post.CreatedAt.Equal(b.post.CreatedAt) {
			return a.post.CreatedAt.After(b.post.CreatedAt)
		}
		return a.seq > b.seq
	})

	posts := make([]models.Post, 0, len(entries))
	for _, entry := range entries {
		posts = append(posts, s.withAuthor(entry.post))
	}
	return posts, nil
}

func (s *MemoryStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	post := s.withAuthor(entry.post)
	return &post, nil
}

func (s *MemoryStore) UpdatePost(ctx context.Context, id string, update models.PostUpdate) (*models.Post, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	update.Apply(&entry.post)
	s.posts[id] = entry
	updated := entry.post
	return &updated, nil
}

func (s *MemoryStore) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = s.now().UTC()
	s.users[user.ID] = user
	return &user, nil
}

// withAuthor must be called with s.mu held.
func (s *MemoryStore) withAuthor(post models.Post) models.Post {
	if user, ok := s.users[post.Author.ID]; ok {
		post.Author.Username = user.Username
		post.Author.Email = user.Email
	}
	return post
}
