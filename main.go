package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat-analyzer/analyzer"
	"chat-analyzer/apiclient"
	"chat-analyzer/cache"
	"chat-analyzer/config"
	"chat-analyzer/handler"
	appLogger "chat-analyzer/logger"
	"chat-analyzer/middleware"
	redisClient "chat-analyzer/redis"
	"chat-analyzer/tokenstore"
	"chat-analyzer/upload"
	"chat-analyzer/view"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "chat-analyzer",
	Short: "Dashboard for WhatsApp chat analysis",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard web server",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default ./config.yaml)")
	rootCmd.AddCommand(serveCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	appLogger.Initialize(cfg.Log)
	log.Info().Str("version", version).Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Session token store
	store, closeStore, err := newTokenStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	client := apiclient.New(cfg.Backend)

	wsCache, err := cache.New(cfg.Cache, cache.WithEvictHook(func(key uint64, _ interface{}) {
		log.Debug().Uint64("key", key).Msg("Idle analysis workspace evicted")
	}))
	if err != nil {
		return fmt.Errorf("initialize workspace cache: %w", err)
	}
	defer wsCache.Close()
	workspaces := analyzer.NewRegistry(wsCache, client)

	renderer, err := view.NewRenderer()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}

	rules := upload.Rules{
		Extension: cfg.Upload.AllowedExtension,
		MaxBytes:  int64(cfg.Upload.MaxSizeMB) << 20,
	}
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	go sweepVisitors(ctx, rateLimiter)

	r := handler.NewRouter(
		handler.NewAuthHandler(client, renderer, workspaces),
		handler.NewAnalyzerHandler(workspaces, renderer, rules),
		handler.NewHealthHandler(client, workspaces, version),
		middleware.NewSessionGuard(store),
		rateLimiter,
	)

	// Configure HTTP server
	serverAddress := fmt.Sprintf("%s:%s", cfg.WebServer.IP, cfg.WebServer.Port)
	server := &http.Server{
		Addr:         serverAddress,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.WebServer.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WebServer.WriteTimeout) * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().
			Str("address", serverAddress).
			Str("backend", cfg.Backend.BaseURL).
			Str("session_store", cfg.Session.Store).
			Msg("Starting server")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("start server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.WebServer.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server stopped gracefully")
	return nil
}

// newTokenStore picks the session backend named by session.store.
func newTokenStore(cfg config.Config) (tokenstore.Store, func(), error) {
	switch cfg.Session.Store {
	case "", "cookie":
		log.Info().Str("cookie", cfg.Session.CookieName).Msg("Using cookie session store")
		return tokenstore.NewCookieStore(cfg.Session), func() {}, nil
	case "redis":
		rdb, err := redisClient.NewClient(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := rdb.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close Redis connection")
			}
		}
		opTimeout := time.Duration(cfg.Redis.OperationTimeout) * time.Second
		log.Info().Int("ttl_seconds", cfg.Session.TTLSeconds).Msg("Using redis session store")
		return tokenstore.NewRedisStore(rdb, cfg.Session, opTimeout), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}

func sweepVisitors(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := rl.Sweep(now); n > 0 {
				log.Debug().Int("removed", n).Msg("Forgot idle rate limit visitors")
			}
		}
	}
}
