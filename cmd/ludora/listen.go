package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	ludora "github.com/ludora-edu/ludora-go"
	"github.com/spf13/cobra"
)

var listenFlags struct {
	channels    []string
	gameID      string
	lobbyID     string
	sessionID   string
	isHost      bool
	participant bool
	priority    string
	useWS       bool
	noReconnect bool
	fallback    bool
}

func init() {
	rootCmd.AddCommand(listenCmd)
	f := listenCmd.Flags()
	f.StringSliceVarP(&listenFlags.channels, "channels", "c", nil, "channels to subscribe to (comma-separated or repeated)")
	f.StringVar(&listenFlags.gameID, "game", "", "game id for the session context")
	f.StringVar(&listenFlags.lobbyID, "lobby", "", "lobby id for the session context")
	f.StringVar(&listenFlags.sessionID, "session", "", "session id for the session context")
	f.BoolVar(&listenFlags.isHost, "host", false, "subscribe as session host")
	f.BoolVar(&listenFlags.participant, "participant", false, "subscribe as session participant")
	f.StringVar(&listenFlags.priority, "priority", "", "subscription priority hint")
	f.BoolVar(&listenFlags.useWS, "ws", false, "use the WebSocket transport instead of SSE")
	f.BoolVar(&listenFlags.noReconnect, "no-reconnect", false, "disable automatic reconnection")
	f.BoolVar(&listenFlags.fallback, "fallback", false, "poll for events when streaming permanently fails")
}

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Stream realtime events to stdout",
	Long: "Subscribe to the realtime event stream and print every event as it arrives.\n" +
		"Example: ludora listen -c lobby:42 --lobby 42 --participant",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(listenFlags.channels) == 0 {
			return fmt.Errorf("at least one channel is required (use --channels)")
		}

		client := getClient()

		opts := ludora.SubscriptionOptions{
			Channels: listenFlags.channels,
			Session: ludora.SessionContext{
				GameID:        listenFlags.gameID,
				LobbyID:       listenFlags.lobbyID,
				SessionID:     listenFlags.sessionID,
				IsHost:        listenFlags.isHost,
				IsParticipant: listenFlags.participant,
				Priority:      listenFlags.priority,
			},
		}

		config := &ludora.RealtimeConfig{
			AutoReconnect:   !listenFlags.noReconnect,
			FallbackEnabled: listenFlags.fallback,
		}
		if listenFlags.fallback {
			config.FallbackPoll = pollPrinter(client, listenFlags.channels)
		}

		var rt *ludora.RealtimeClient
		if listenFlags.useWS {
			rt = client.Realtime().SubscribeWS(opts, config)
		} else {
			rt = client.Realtime().Subscribe(opts, config)
		}
		defer rt.Close()

		rt.AddEventListener(ludora.Wildcard, func(ev ludora.Event) {
			fmt.Printf("%s  %-24s %s\n",
				ev.ReceivedAt.Format(time.RFC3339), ev.EventType, string(ev.Data))
		})

		rt.Connect()
		fmt.Fprintf(os.Stderr, "Listening on %s (Ctrl-C to stop)\n", strings.Join(listenFlags.channels, ", "))

		// Surface state changes until interrupted.
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		last := rt.State()
		for {
			select {
			case <-sig:
				fmt.Fprintln(os.Stderr, "Shutting down")
				return nil
			case <-ticker.C:
				state := rt.State()
				if state == last {
					continue
				}
				last = state
				switch state {
				case ludora.StateConnected:
					fmt.Fprintf(os.Stderr, "Connected (channels: %s)\n",
						strings.Join(rt.SubscribedChannels(), ", "))
				case ludora.StatePermanentlyFailed:
					fmt.Fprintf(os.Stderr, "Gave up reconnecting: %v\n", rt.LastError())
					if !rt.FallbackActive() {
						return fmt.Errorf("stream permanently failed")
					}
					fmt.Fprintln(os.Stderr, "Continuing in polling mode")
				case ludora.StateError:
					fmt.Fprintf(os.Stderr, "Stream error: %v\n", rt.LastError())
				default:
					fmt.Fprintf(os.Stderr, "State: %s\n", state)
				}
			}
		}
	},
}

// pollPrinter returns a fallback poll hook that fetches and prints events
// through the request/response API, carrying the cursor between ticks.
func pollPrinter(client *ludora.Client, channels []string) func(ctx context.Context) {
	var cursor int64
	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		page, err := client.Events().Poll(ctx, channels, cursor, 100)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Poll error: %v\n", err)
			return
		}
		for _, ev := range page.Events {
			fmt.Printf("%s  %-24s %s\n", ev.At, ev.EventType, string(ev.Data))
		}
		cursor = page.Cursor
	}
}
