// scripts/generate_password.go
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/your-org/pharmacy-backend/internal/config"
	"github.com/your-org/pharmacy-backend/internal/pkg/auth"
)

// Prints a bcrypt hash for seeding staff accounts by hand.
// Usage: go run scripts/generate_password.go <password>
func main() {
	if len(os.Args) < 2 {
		logrus.Fatal("Usage: go run scripts/generate_password.go <password>")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	pm := auth.NewPasswordManager(cfg)
	password := os.Args[1]

	hash, err := pm.HashPassword(password)
	if err != nil {
		logrus.Fatalf("Error generating hash: %v", err)
	}
	if err := pm.VerifyPassword(password, hash); err != nil {
		logrus.Fatalf("Hash verification failed: %v", err)
	}

	fmt.Printf("Cost: %d\n", cfg.Security.BcryptCost)
	fmt.Printf("Hash: %s\n", hash)
}
