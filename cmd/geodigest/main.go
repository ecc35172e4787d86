package main

import (
	"os"

	"geodigest/cmd/handlers"
	"geodigest/internal/logger"
)

func main() {
	logger.Init()
	if err := handlers.Execute(); err != nil {
		os.Exit(1)
	}
}
