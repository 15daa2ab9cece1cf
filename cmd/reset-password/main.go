package main

import (
	"context"
	"flag"
	"log"

	"go-ombor/internal/config"
	"go-ombor/internal/model"
	"go-ombor/internal/repository"
	"go-ombor/pkg/kvstore"

	"github.com/joho/godotenv"
)

func main() {
	username := flag.String("user", model.AdminUsername, "username whose password is reset")
	newPassword := flag.String("password", repository.SeedAdminPassword, "new password")
	flag.Parse()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// 2. Setup Store
	ctx := context.Background()
	store, err := kvstore.Open(ctx, cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store.Driver, err)
	}
	defer store.Close()
	users := repository.NewUserRepo(store)

	// 3. Find user
	matches, err := users.FindByUsername(ctx, *username)
	if err != nil {
		log.Fatalf("Failed to read users: %v", err)
	}
	if len(matches) == 0 {
		log.Fatalf("User %s not found: %v", *username, repository.ErrUserNotFound)
	}

	// 4. Hash and save every record under that username
	for i := range matches {
		user := &matches[i]
		if err := user.SetPassword(*newPassword); err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}
		if err := users.Save(ctx, user); err != nil {
			log.Fatalf("Failed to save user %s: %v", user.ID, err)
		}
	}

	log.Printf("Password for %s has been reset (%d record(s))", *username, len(matches))
}
