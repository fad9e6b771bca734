// Command createadmin seeds an admin account. Admin accounts cannot be created
// through the public API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"os"

	_ "github.com/lib/pq"

	"eventregistration/config"
	authadapter "eventregistration/internal/adapters/auth"
	"eventregistration/internal/domain"
	"eventregistration/internal/repository/postgres"
)

func main() {
	email := flag.String("email", "admin@event.com", "admin email")
	name := flag.String("name", "Admin", "admin display name")
	flag.Parse()

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Fatal("ADMIN_PASSWORD must be set")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	hasher := authadapter.NewBcryptHasher(10)
	hash, err := hasher.Hash(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		Email:        *email,
		Name:         *name,
		Role:         domain.RoleAdmin,
		PasswordHash: hash,
	}
	if err := postgres.NewUserRepository(db).Create(context.Background(), user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			log.Fatalf("admin %s already exists", *email)
		}
		log.Fatalf("failed to create admin: %v", err)
	}
	log.Printf("Admin user created successfully! Email: %s", *email)
}
