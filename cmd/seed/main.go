// Package main provides a tool to provision user accounts directly,
// including staff and superuser accounts that cannot be created through
// the public registration endpoint.
//
// Usage:
//
//	go run ./cmd/seed --data-path ~/Cookbook/data \
//	    --email admin@example.com --password change-me --name Admin --superuser
package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cookbookapp/cookbook-server/internal/auth"
	"github.com/cookbookapp/cookbook-server/internal/service"
	"github.com/cookbookapp/cookbook-server/internal/store/sqlite"
)

var (
	dataPath  = flag.String("data-path", "", "Base path for data storage (default: ~/Cookbook/data)")
	email     = flag.String("email", "", "Email address for the new account")
	password  = flag.String("password", "", "Password for the new account")
	name      = flag.String("name", "", "Display name for the new account")
	staff     = flag.Bool("staff", false, "Grant the staff flag")
	superuser = flag.Bool("superuser", false, "Grant the superuser flag (implies admin access)")
)

func main() {
	flag.Parse()

	if *email == "" || *password == "" || *name == "" {
		flag.Usage()
		log.Fatal("--email, --password, and --name are required")
	}

	base := *dataPath
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatalf("Failed to resolve home directory: %v", err)
		}
		base = filepath.Join(home, "Cookbook", "data")
	}

	if err := os.MkdirAll(base, 0o700); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(base, "cookbook.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(dbPath, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	key, err := auth.LoadOrGenerateKey(base)
	if err != nil {
		log.Fatalf("Failed to load auth key: %v", err)
	}

	tokens, err := auth.NewTokenService(hex.EncodeToString(key), 15*time.Minute, 30*24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	authService := service.NewAuthService(st, tokens, logger)

	user, err := authService.Provision(context.Background(), service.ProvisionRequest{
		Email:     *email,
		Password:  *password,
		Name:      *name,
		Staff:     *staff,
		Superuser: *superuser,
	})
	if err != nil {
		log.Fatalf("Failed to provision user: %v", err)
	}

	fmt.Printf("Created user %s (%s)\n", user.Email, user.ID)
	if user.IsAdmin() {
		fmt.Println("Account has administrative privileges")
	}
}
