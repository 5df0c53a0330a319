package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/anushkanegi003/google-meet/internal/config"
	"github.com/anushkanegi003/google-meet/internal/logging"
	"github.com/anushkanegi003/google-meet/internal/relay"
	"github.com/anushkanegi003/google-meet/internal/server"
	"github.com/anushkanegi003/google-meet/internal/version"
)

var (
	flagHost           string
	flagPort           int
	flagRoomIDStyle    string
	flagAllowedOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the room relay",
	Long: `Run the room relay.

Examples:
  meetrelay serve
  meetrelay serve --port 8080 --room-id-style words
  meetrelay serve --config relay.yaml --allowed-origin meet.example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadServer(config.ServerOptions{
			ConfigFile:     flagConfig,
			Host:           flagHost,
			Port:           flagPort,
			LogLevel:       flagLogLevel,
			RoomIDStyle:    flagRoomIDStyle,
			AllowedOrigins: flagAllowedOrigins,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagHost, "host", "", "interface to listen on (default all)")
	serveCmd.Flags().IntVarP(&flagPort, "port", "p", 0, "port to listen on (default 3000)")
	serveCmd.Flags().StringVar(&flagRoomIDStyle, "room-id-style", "", "style of generated room ids: uuid or words")
	serveCmd.Flags().StringSliceVar(&flagAllowedOrigins, "allowed-origin", nil, "accepted websocket Origin host (repeatable, default any)")
}

func serve(ctx context.Context, cfg *config.ServerConfig) error {
	log := logging.Init(cfg.LogLevel)

	hub := relay.NewHub(log.With("component", "hub"))
	srv := server.New(hub, server.Options{
		AllowedOrigins:  cfg.AllowedOrigins,
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		RoomIDStyle:     relay.RoomIDStyle(cfg.RoomIDStyle),
		Client: relay.ClientOptions{
			WriteWait:      cfg.WriteWait,
			PongWait:       cfg.PongWait,
			MaxMessageSize: cfg.MaxMessageSize,
			SendBufferSize: cfg.SendBufferSize,
		},
	}, log.With("component", "http"))

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})

	g.Go(func() error {
		log.Info("starting room relay", "addr", httpServer.Addr, "version", version.Version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down room relay")
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
