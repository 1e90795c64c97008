package main

import (
	"fmt"
	"os"

	"github.com/3madMostafa/Alta-Video-Assistant/common/version"
	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/app"
	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/config"
)

func main() {
	fmt.Printf("Alta Access Assistant\n")
	fmt.Printf("Version: %s\n", version.Version)
	fmt.Printf("Commit: %s\n", version.GitCommit)
	fmt.Printf("Build Time: %s\n", version.BuildTime)
	fmt.Println()

	// Load configuration from file and environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Create application
	assistant, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize assistant: %v\n", err)
		os.Exit(1)
	}
	defer assistant.Stop()

	// Run application
	if err := assistant.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running assistant: %v\n", err)
		os.Exit(1)
	}
}
