package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cpu-sched/cpu-sched/internal/server"
)

var serveConfigFile string

// serveSettings is everything serve reads through viper.
type serveSettings struct {
	Server server.Config
	DBPath string
}

// serveCmd hosts the front end and the session API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the visualization front end and the session API",
	Long: `serve starts an HTTP server exposing the simulator as a JSON session API
under /api/v1 and, when a static directory is configured, the front end at /.

Settings come from flags, CPUSCHED_* environment variables (CPUSCHED_ADDR,
CPUSCHED_STATIC_DIR, CPUSCHED_MAX_TICKS, CPUSCHED_MAX_SESSIONS, CPUSCHED_DB)
and an optional YAML config file, in that order of precedence.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadServeSettings(cmd)
		if err != nil {
			return err
		}

		var opts []server.Option
		if settings.DBPath != "" {
			st, err := openStore(cmd, settings.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()
			opts = append(opts, server.WithStore(st))
		}

		srv := server.New(settings.Server, opts...)
		httpServer := &http.Server{
			Addr:              settings.Server.Addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logrus.Infof("server starting on %s (static=%q, db=%q)",
				settings.Server.Addr, settings.Server.StaticDir, settings.DBPath)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}
		logrus.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logrus.Info("server stopped")
		return nil
	},
}

// loadServeSettings resolves serve's settings from flags, environment and the
// optional config file.
func loadServeSettings(cmd *cobra.Command) (serveSettings, error) {
	v := viper.New()
	defaults := server.DefaultConfig()
	v.SetDefault("addr", defaults.Addr)
	v.SetDefault("static_dir", defaults.StaticDir)
	v.SetDefault("max_ticks", defaults.MaxTicks)
	v.SetDefault("max_sessions", defaults.MaxSessions)
	v.SetDefault("session_ttl", defaults.SessionTTL)
	v.SetDefault("db", "")

	if serveConfigFile != "" {
		v.SetConfigFile(serveConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return serveSettings{}, fmt.Errorf("reading config %s: %w", serveConfigFile, err)
		}
		logrus.Infof("Using config file: %s", v.ConfigFileUsed())
	}

	// Read environment variables that match "CPUSCHED_VARNAME"
	v.SetEnvPrefix("CPUSCHED")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	flags := cmd.Flags()
	for key, flag := range map[string]string{
		"addr":         "addr",
		"static_dir":   "static-dir",
		"max_ticks":    "max-ticks",
		"max_sessions": "max-sessions",
		"session_ttl":  "session-ttl",
		"db":           "db",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return serveSettings{}, err
		}
	}

	settings := serveSettings{DBPath: v.GetString("db")}
	if err := v.Unmarshal(&settings.Server); err != nil {
		return serveSettings{}, fmt.Errorf("decoding server config: %w", err)
	}
	if settings.Server.MaxTicks < 0 || settings.Server.MaxSessions < 0 || settings.Server.SessionTTL < 0 {
		return serveSettings{}, fmt.Errorf("max_ticks, max_sessions and session_ttl must be non-negative")
	}
	return settings, nil
}

func init() {
	defaults := server.DefaultConfig()
	serveCmd.Flags().StringVar(&serveConfigFile, "config", "", "YAML config file")
	serveCmd.Flags().String("addr", defaults.Addr, "Listen address")
	serveCmd.Flags().String("static-dir", defaults.StaticDir, "Directory of front-end assets served at /; empty disables")
	serveCmd.Flags().Int64("max-ticks", defaults.MaxTicks, "Tick ceiling for /run requests; 0 disables")
	serveCmd.Flags().Int("max-sessions", defaults.MaxSessions, "Maximum live sessions; 0 is unlimited")
	serveCmd.Flags().Duration("session-ttl", defaults.SessionTTL, "Idle time after which a session may be reclaimed when the server is full; 0 disables")
	serveCmd.Flags().String("db", "", "SQLite database recording finished sessions")
	rootCmd.AddCommand(serveCmd)
}
