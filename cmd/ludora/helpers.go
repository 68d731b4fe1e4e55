package main

import (
	"fmt"
	"os"

	ludora "github.com/ludora-edu/ludora-go"
)

// getClient creates a Ludora client from the stored configuration.
// Exits with a message when no session token is configured.
func getClient() *ludora.Client {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Auth.SessionToken == "" {
		fmt.Fprintln(os.Stderr, "No session token. Run 'ludora init <session-token>' first.")
		os.Exit(1)
	}
	return ludora.NewClient(cfg.Auth.SessionToken, clientOptions(cfg)...)
}

// getAnonymousClient creates a Ludora client without a session token for
// endpoints that allow anonymous access.
func getAnonymousClient() *ludora.Client {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	return ludora.NewClient(cfg.Auth.SessionToken, clientOptions(cfg)...)
}

func clientOptions(cfg *Config) []ludora.ClientOption {
	var opts []ludora.ClientOption
	if cfg.Default.BaseURL != "" {
		opts = append(opts, ludora.WithBaseURL(cfg.Default.BaseURL))
	} else if cfg.Default.Environment != "" && cfg.Default.Environment != "production" {
		opts = append(opts, ludora.WithEnvironment(ludora.Environment(cfg.Default.Environment)))
	}
	return opts
}
