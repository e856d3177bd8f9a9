package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sjperalta/registro-api/internal/audit"
	"github.com/sjperalta/registro-api/internal/config"
	"github.com/sjperalta/registro-api/internal/database"
	"github.com/sjperalta/registro-api/internal/repository"
	"github.com/sjperalta/registro-api/internal/services"
	"github.com/sjperalta/registro-api/pkg/logger"
)

// issue_token prints a bearer token for an active registry user so operators
// can call the ops API.
func main() {
	username := flag.String("user", "", "username of an active registry user")
	ttl := flag.Duration("ttl", services.DefaultTokenTTL, "token lifetime")
	flag.Parse()

	if *username == "" {
		log.Fatal("-user is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Setup(cfg.Environment, "warn")

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	repos := repository.NewRepositories(db, audit.NewInterceptor())
	auth := services.NewAuthService(repos.User, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	token, err := auth.IssueToken(ctx, *username, *ttl)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}
	fmt.Println(token)
}
