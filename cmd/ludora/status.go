package main

import (
	"context"
	"fmt"
	"time"

	ludora "github.com/ludora-edu/ludora-go"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current configuration and platform health",
	Long:  "Display the current configuration and fetch live platform health.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Print config summary.
		fmt.Println("Configuration:")
		fmt.Printf("  Environment: %s\n", valueOrDefault(cfg.Default.Environment, "(not set)"))
		if cfg.Default.BaseURL != "" {
			fmt.Printf("  Base URL:    %s\n", cfg.Default.BaseURL)
		}
		if cfg.Auth.SessionToken != "" {
			fmt.Printf("  Token:       %s\n", maskKey(cfg.Auth.SessionToken))
		} else {
			fmt.Println("  Token:       (not set)")
		}
		if cfg.Auth.UserID != "" {
			fmt.Printf("  User ID:     %s\n", cfg.Auth.UserID)
		}

		fmt.Println()
		fmt.Println("Platform:")

		client := getAnonymousClient()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		result, err := client.Status().Health(ctx)
		if err != nil {
			fmt.Printf("  Error fetching health: %v\n", err)
			return nil
		}
		if !result.OK {
			if result.Error != nil {
				fmt.Printf("  API error: %s: %s\n", result.Error.Code, result.Error.Message)
			} else {
				fmt.Println("  API returned an error (no details)")
			}
			return nil
		}

		var health ludora.HealthInfo
		if err := result.Decode(&health); err != nil {
			fmt.Printf("  Error decoding response: %v\n", err)
			return nil
		}

		fmt.Printf("  Status:  %s\n", health.Status)
		if health.Version != "" {
			fmt.Printf("  Version: %s\n", health.Version)
		}
		if health.Uptime > 0 {
			fmt.Printf("  Uptime:  %s\n", (time.Duration(health.Uptime) * time.Second).String())
		}
		return nil
	},
}

// maskKey shows the first 12 and last 4 characters of a key.
func maskKey(key string) string {
	if len(key) <= 16 {
		return key[:4] + "..." + key[len(key)-4:]
	}
	return key[:12] + "..." + key[len(key)-4:]
}

func valueOrDefault(val, def string) string {
	if val == "" {
		return def
	}
	return val
}
