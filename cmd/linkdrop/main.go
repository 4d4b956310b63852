package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/MrSnakeDoc/linkdrop/internal/app"
)

func main() {
	// Dev convenience only; env vars win over the .env file.
	_ = godotenv.Load()

	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ linkdrop failed to start: %v", err)
	}
}
