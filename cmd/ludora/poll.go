package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var pollFlags struct {
	channels []string
	since    int64
	limit    int
}

func init() {
	rootCmd.AddCommand(pollCmd)
	f := pollCmd.Flags()
	f.StringSliceVarP(&pollFlags.channels, "channels", "c", nil, "channels to poll (comma-separated or repeated)")
	f.Int64Var(&pollFlags.since, "since", 0, "cursor to resume from (0 = earliest retained)")
	f.IntVar(&pollFlags.limit, "limit", 100, "maximum events to fetch")
}

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Fetch recent events once via the polling endpoint",
	Long: "Fetch events through the request/response polling endpoint, the same data\n" +
		"the realtime stream delivers. Useful for scripting and for verifying what a\n" +
		"degraded client would see.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(pollFlags.channels) == 0 {
			return fmt.Errorf("at least one channel is required (use --channels)")
		}

		client := getClient()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		page, err := client.Events().Poll(ctx, pollFlags.channels, pollFlags.since, pollFlags.limit)
		if err != nil {
			return fmt.Errorf("poll failed: %w", err)
		}

		for _, ev := range page.Events {
			fmt.Printf("%d  %s  %-24s %s\n", ev.Seq, ev.At, ev.EventType, string(ev.Data))
		}
		fmt.Printf("cursor: %d  hasMore: %v\n", page.Cursor, page.HasMore)
		return nil
	},
}
