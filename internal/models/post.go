package models

import (
	"strings"
	"time"
)

// Identity is the authenticated caller as resolved by the authorization guard.
type Identity struct {
	ID string
}

func (i Identity) IsZero() bool {
	return i.ID == ""
}

// Equal reports whether both identities refer to the same user.
// Zero identities are never equal to anything.
func (i Identity) Equal(other Identity) bool {
	if i.IsZero() || other.IsZero() {
		return false
	}
	return i.ID == other.ID
}

// Author is the stored author reference. Username and Email are only set
// when the store has projected the referenced user.
type Author struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

func (a Author) Identity() Identity {
	return Identity{ID: a.ID}
}

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewPost holds the fields a caller may supply on creation.
type NewPost struct {
	Title    string
	Content  string
	Category string
	Author   Identity
}

func (p NewPost) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if p.Author.IsZero() {
		return &ValidationError{Field: "author", Message: "author is required"}
	}
	return nil
}

// PostUpdate lists the mutable fields of a post. Nil means unchanged.
type PostUpdate struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Category *string `json:"category"`
}

func (u PostUpdate) IsEmpty() bool {
	return u.Title == nil && u.Content == nil && u.Category == nil
}

func (u PostUpdate) Validate() error {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return &ValidationError{Field: "title", Message: "title cannot be empty"}
	}
	return nil
}

func (u PostUpdate) Apply(p *Post) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
