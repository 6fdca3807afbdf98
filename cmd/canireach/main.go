package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/canireach/canireach/internal/app"
)

func main() {
	// Optional .env for local development; env vars win in production.
	_ = godotenv.Load()

	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ canireach failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ canireach failed: %v", err)
	}
}
