package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jhsu-tw/tianji/internal/config"
	"github.com/jhsu-tw/tianji/internal/home"
	"github.com/jhsu-tw/tianji/internal/server"
	"github.com/jhsu-tw/tianji/version"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Tianji server",
	Long: `Start the Tianji HTTP server.

Sessions are persisted to an embedded SQLite database under the home
directory, so they survive restarts. Configuration is hot-reloaded
when the config file changes, including LLM provider credentials.

Examples:
  tianji serve                   # Start on the configured port (default 8080)
  tianji serve --port 3000       # Start on a custom port
  tianji serve --host 127.0.0.1  # Bind to localhost only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Load .env if present so ${VAR} references in config resolve.
		_ = godotenv.Load()

		// Set up logger
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		// Get home directory
		h, err := home.New(homeDir)
		if err != nil {
			return err
		}
		if err := h.EnsureExists(); err != nil {
			return err
		}
		if !h.ConfigExists() {
			if err := config.WriteDefault(h.ConfigPath()); err != nil {
				return err
			}
			logger.Info("wrote default config", "path", h.ConfigPath())
		}

		// Load config with hot-reload support
		cfgPath := cfgFile
		if cfgPath == "" {
			cfgPath = h.ConfigPath()
		}
		cm, err := config.NewManager(cfgPath)
		if err != nil {
			return err
		}
		cm.WatchConfig()

		cfg := cm.Get()
		host := serveHost
		if host == "" {
			host = cfg.Server.Host
		}
		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		// Create server
		srv, err := server.New(server.Config{
			Host:          host,
			Port:          port,
			DatabasePath:  cfg.Session.DatabasePath,
			ConfigManager: cm,
			Home:          h,
			Logger:        logger,
			Version:       version.GitRelease,
		})
		if err != nil {
			return err
		}

		// Start server (blocks until shutdown)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")

	rootCmd.AddCommand(serveCmd)
}
