package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/anushkanegi003/google-meet/internal/ui"
	"github.com/anushkanegi003/google-meet/internal/version"
)

var (
	flagConfig   string
	flagLogLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "meetrelay",
	Short: "Room relay for video meetings: presence notifications and chat over websockets",
	Long: `meetrelay keeps track of which connections sit in which meeting room, tells
room members when someone joins or leaves, and relays chat messages to the
whole room. Media itself flows peer to peer and never touches the relay.`,
	Version: version.Version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd, joinCmd, roomsCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
