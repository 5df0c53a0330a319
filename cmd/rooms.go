package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/anushkanegi003/google-meet/internal/client"
	"github.com/anushkanegi003/google-meet/internal/server"
	"github.com/anushkanegi003/google-meet/internal/ui"
)

func init() {
	roomsCmd.Flags().StringVar(&flagRelayURL, "relay", "", "relay websocket URL (default ws://localhost:3000/ws)")
}

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "List occupied rooms on a relay",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadClientConfig()
		if err != nil {
			return err
		}

		httpClient := &http.Client{Timeout: 10 * time.Second}
		req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, cfg.StatsURL(), nil)
		if err != nil {
			return err
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			return &client.Error{Op: "fetch stats", Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return &client.Error{Op: "fetch stats", Err: fmt.Errorf("unexpected status %s", resp.Status)}
		}

		var stats server.StatsResponse
		if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
			return &client.Error{Op: "decode stats", Err: err}
		}

		ui.RenderRooms(os.Stdout, stats.Connections, stats.Rooms)
		return nil
	},
}
