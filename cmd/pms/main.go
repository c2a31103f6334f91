// Package main is the entry point for the pms CLI.
package main

import (
	"fmt"
	"os"

	"kyri56xcaesar/pms-workspace/internal/cli"
	"kyri56xcaesar/pms-workspace/internal/config"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	path := os.Getenv("PMS_CONFIG")
	if path == "" {
		path = ".env"
	}

	app, err := cli.NewApp(config.Load(path))
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}

	return cli.NewRootCommand(app, version).Execute()
}
