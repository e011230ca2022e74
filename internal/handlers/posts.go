package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BorisDmv/blog-posts-api/internal/db"
	"github.com/BorisDmv/blog-posts-api/internal/middleware"
	"github.com/BorisDmv/blog-posts-api/internal/models"
)

const (
	msgPostNotFound  = "Post not found"
	msgNotAuthorized = "Not authorized"
	msgPostDeleted   = "Post deleted"
)

type PostsHandler struct {
	store db.PostStore
}

type PostResponse struct {
	Success bool         `json:"success"`
	Post    *models.Post `json:"post"`
}

type PostsResponse struct {
	Success bool          `json:"success"`
	Posts   []models.Post `json:"posts"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CreatePostRequest has no author field: the author is always the caller.
type CreatePostRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

func NewPostsHandler(store db.PostStore) *PostsHandler {
	return &PostsHandler{store: store}
}

// Routes returns the /posts sub-router. requireAuth guards the mutating
// routes; public wraps the read routes and may be nil.
func (h *PostsHandler) Routes(requireAuth, public func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		if public != nil {
			r.Use(public)
		}
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
	})
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	created, err := h.store.CreatePost(r.Context(), models.NewPost{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Author:   caller,
	})
	if err != nil {
		respondStoreError(w, "create post", err)
		return
	}
	respondJSON(w, http.StatusCreated, PostResponse{Success: true, Post: created})
}

func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListPosts(r.Context())
	if err != nil {
		respondStoreError(w, "list posts", err)
		return
	}
	respondJSON(w, http.StatusOK, PostsResponse{Success: true, Posts: posts})
}

func (h *PostsHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.store.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, "get post", err)
		return
	}
	respondJSON(w, http.StatusOK, PostResponse{Success: true, Post: post})
}

// Update applies only title, content and category. Any other field in the
// body, including author, is ignored.
func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.authorizeOwner(w, r, id) {
		return
	}
	var update models.PostUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	updated, err := h.store.UpdatePost(r.Context(), id, update)
	if err != nil {
		respondStoreError(w, "update post", err)
		return
	}
	respondJSON(w, http.StatusOK, PostResponse{Success: true, Post: updated})
}

func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.authorizeOwner(w, r, id) {
		return
	}
	if err := h.store.DeletePost(r.Context(), id); err != nil {
		respondStoreError(w, "delete post", err)
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Success: true, Message: msgPostDeleted})
}

// authorizeOwner loads the post and checks that the caller wrote it. On
// failure it has already written the response.
func (h *PostsHandler) authorizeOwner(w http.ResponseWriter, r *http.Request, id string) bool {
	caller, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return false
	}
	post, err := h.store.GetPost(r.Context(), id)
	if err != nil {
		respondStoreError(w, "get post", err)
		return false
	}
	if !post.Author.Identity().Equal(caller) {
		respondError(w, http.StatusForbidden, msgNotAuthorized)
		return false
	}
	return true
}

func respondStoreError(w http.ResponseWriter, op string, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, db.ErrNotFound):
		respondError(w, http.StatusNotFound, msgPostNotFound)
	default:
		log.Printf("%s: %v", op, err)
		respondError(w, http.StatusInternalServerError, "failed to "+op)
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}
