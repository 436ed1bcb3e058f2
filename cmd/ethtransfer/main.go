package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not read .env: %v", err)
	}

	root, cleanup := newRootCmd()
	err := root.Execute()
	cleanup()
	if err != nil {
		os.Exit(1)
	}
}
