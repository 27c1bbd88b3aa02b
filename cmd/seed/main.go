package main

import (
	"context"
	"errors"
	"log"

	"github.com/joho/godotenv"

	"authsvc/internal/auth"
	"authsvc/internal/config"
	"authsvc/internal/db"
	"authsvc/internal/model"
	"authsvc/internal/repository"
	"authsvc/internal/service"
)

// demoUsers are registered through the auth service so their passwords get
// properly hashed.
var demoUsers = []struct {
	Email    string
	Password string
}{
	{"alice@example.com", "alice-password"},
	{"bob@example.com", "bob-password"},
	{"carol@example.com", "carol-password"},
}

func main() {
	log.Println("Starting seed script...")

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using environment")
	}
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	authService := service.NewAuthService(userRepo, auth.NewBcryptHasher(), auth.NewUUIDGenerator(), nil)

	ctx := context.Background()
	created, skipped := 0, 0
	for _, u := range demoUsers {
		if _, err := authService.Register(ctx, u.Email, u.Password); err != nil {
			if errors.Is(err, service.ErrAlreadyRegistered) {
				log.Printf("Skipping %s: already registered", u.Email)
				skipped++
				continue
			}
			log.Fatalf("Failed to register %s: %v", u.Email, err)
		}
		created++
	}

	log.Printf("Seed completed: %d created, %d skipped", created, skipped)
}
