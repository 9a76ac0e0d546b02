package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/sgescolar/secretaria-api/internal/models"
	"github.com/sgescolar/secretaria-api/internal/repository"
	"github.com/sgescolar/secretaria-api/pkg/config"
	"github.com/sgescolar/secretaria-api/pkg/database"
)

// seed-admin provisions the first ADMIN account so the API can be used right
// after deployment. It refuses to overwrite an existing user.
func main() {
	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", "", "admin password (required)")
	name := flag.String("name", "Administrador", "admin display name")
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.Database.MigrationDir); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	ctx := context.Background()
	repo := repository.NewUserRepository(db)

	if _, err := repo.FindByEmail(ctx, *email); err == nil {
		log.Fatalf("user %s already exists", *email)
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Fatalf("failed to check existing user: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:         *name,
		Email:        *email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := repo.Create(ctx, user); err != nil {
		log.Fatalf("failed to create admin: %v", err)
	}

	fmt.Printf("admin %s created (id %s)\n", user.Email, user.ID)
}
