// Command seed creates a user in the configured store and prints a bearer
// token for it, for trying the posts API locally.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/BorisDmv/blog-posts-api/internal/config"
	"github.com/BorisDmv/blog-posts-api/internal/db"
	"github.com/BorisDmv/blog-posts-api/internal/middleware"
	"github.com/BorisDmv/blog-posts-api/internal/models"
)

func main() {
	username := flag.String("username", "", "username of the user to create")
	email := flag.String("email", "", "email of the user to create")
	password := flag.String("password", "", "password of the user to create")
	ttl := flag.Duration("ttl", 24*time.Hour, "lifetime of the printed token")
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal("-username and -password are required")
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := db.Open(ctx, db.Options{
		DatabaseURL:   cfg.DatabaseURL,
		MongoDatabase: cfg.MongoDatabase,
	})
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer store.Close(ctx)

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	user, err := store.CreateUser(ctx, models.User{
		Username:     *username,
		Email:        *email,
		PasswordHash: string(hash),
	})
	if err != nil {
		log.Fatalf("create user: %v", err)
	}

	token, err := middleware.IssueToken([]byte(cfg.JWTSecret), user.ID, *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}

	fmt.Printf("user id: %s\n", user.ID)
	fmt.Printf("token:   %s\n", token)
}
