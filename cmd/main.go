package main

import (
	"log"

	_ "habit-garden/docs" // Import generated docs
	"habit-garden/internal/app"
)

// @title Habit Garden API
// @version 1.0
// @description Habit streaks, daily vitals and friends.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Create and initialize the application
	application, err := app.New()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Run the application
	if err := application.Run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
