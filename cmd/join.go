package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/anushkanegi003/google-meet/internal/client"
	"github.com/anushkanegi003/google-meet/internal/config"
	"github.com/anushkanegi003/google-meet/internal/logging"
	"github.com/anushkanegi003/google-meet/internal/relay"
	"github.com/anushkanegi003/google-meet/internal/ui"
)

var (
	flagRelayURL string
	flagCodec    string
	flagRoom     string
	flagName     string
	flagPlain    bool
)

var joinCmd = &cobra.Command{
	Use:     "join",
	Aliases: []string{"j"},
	Short:   "Join a room and chat with its members",
	Long: `Join a room on a relay, see who comes and goes, and chat with everyone in it.

Examples:
  meetrelay join --room standup --name alice
  meetrelay join --name bob --relay wss://relay.example.com/ws --codec msgpack
  echo "hello" | meetrelay join --room standup --name bot --plain`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadClientConfig()
		if err != nil {
			return err
		}
		logging.Init(cfg.LogLevel)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		return joinRoom(ctx, cfg)
	},
}

func init() {
	joinCmd.Flags().StringVar(&flagRelayURL, "relay", "", "relay websocket URL (default ws://localhost:3000/ws)")
	joinCmd.Flags().StringVar(&flagCodec, "codec", "", "wire codec: json or msgpack")
	joinCmd.Flags().StringVarP(&flagRoom, "room", "r", "", "room to join (default: a new random room)")
	joinCmd.Flags().StringVarP(&flagName, "name", "n", "", "participant name shown to others")
	joinCmd.Flags().BoolVar(&flagPlain, "plain", false, "line mode: print events, send stdin lines")
	joinCmd.MarkFlagRequired("name")
}

func loadClientConfig() (*config.ClientConfig, error) {
	return config.LoadClient(config.ClientOptions{
		ConfigFile: flagConfig,
		RelayURL:   flagRelayURL,
		Codec:      flagCodec,
		LogLevel:   flagLogLevel,
	})
}

func joinRoom(ctx context.Context, cfg *config.ClientConfig) error {
	room := flagRoom
	if room == "" {
		id, err := relay.NewRoomIDGenerator(relay.RoomIDWords, nil).New(ctx)
		if err != nil {
			return err
		}
		room = string(id)
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c := client.New(cfg.RelayURL, cfg.Codec)
	if err := c.Connect(dialCtx); err != nil {
		return err
	}
	defer c.Close()

	handler := client.NewHandler(c)
	go handler.Start()
	go handler.LogErrors(slog.Default())

	if err := c.Join(room, flagName); err != nil {
		return err
	}

	send := func(text string) error {
		return c.Say(client.ChatPayload{From: flagName, Text: text})
	}

	if flagPlain {
		return runPlain(ctx, room, handler, send)
	}
	return ui.RunChat(ui.NewChatModel(room, flagName, handler.Events, send))
}

// runPlain prints events line by line and relays stdin lines until either side ends.
func runPlain(ctx context.Context, room string, handler *client.Handler, send ui.SendFunc) error {
	ui.PrintSuccess(fmt.Sprintf("joined %s as %s", room, flagName))

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				if err := send(line); err != nil {
					return
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-handler.Events:
			if !ok {
				ui.PrintWarning("connection to relay closed")
				return nil
			}
			fmt.Println(ui.FormatEvent(ev))
		}
	}
}
