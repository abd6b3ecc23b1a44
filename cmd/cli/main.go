package main

import (
	"fmt"
	"os"

	"somikra/internal/cli"
	"somikra/internal/config"
	"somikra/internal/observability"
)

func main() {
	logger := observability.NewLoggerTo(os.Stderr, config.LoggerConfig{Level: "warn", Format: "text"})

	c := cli.NewCLI(cli.Options{
		Output: os.Stdout,
		Logger: logger,
	})

	if err := c.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
