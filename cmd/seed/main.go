package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/Dheerajaldak/lms-backend/config"
	"github.com/Dheerajaldak/lms-backend/pkg/helpers"
)

// Seeds a local admin account for development. Credentials are fixed and
// printed so the frontend team can log in against a fresh database.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := "admin@lms.local"
	password := "admin12345"
	name := "LMS Admin"

	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, full_name, role, avatar_public_id, avatar_url)
		VALUES ($1, $2, $3, 'ADMIN', $1, $4)
		ON CONFLICT (email) DO UPDATE SET role = 'ADMIN', updated_at = now()
		RETURNING id
	`, email, hash, name, cfg.PlaceholderAvatarURL).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s password=%s\n", id, email, password)
}
