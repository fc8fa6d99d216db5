package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/docsage-labs/docsage-cli/internal/adapters/driving/cli"
	"github.com/docsage-labs/docsage-cli/internal/app"
)

// version is overridden at build time via -ldflags.
var version = "0.1.0"

func main() {
	// Optional .env for API keys during development.
	_ = godotenv.Load()

	application, err := app.New("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "docsage: %v\n", err)
		os.Exit(1)
	}
	defer application.Close() //nolint:errcheck

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Query:     application.Query,
		Ingestion: application.Ingestion,
		Document:  application.Documents,
		Config:    application.Config,
	})

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
