package service

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quill/app/config"
	"quill/app/repositories"
	"quill/app/routes"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func (c *cli) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the blog web server",
		Long: `Run the blog web server until interrupted.

Examples:
  quill serve                                   # listen on ADDR (default :5002)
  quill serve --addr :8080
  quill serve --database-url badger://data/badger`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.config()
			if addr != "" {
				cfg.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides ADDR)")
	return cmd
}

func (c *cli) serve(ctx context.Context, cfg *config.Config) error {
	if err := cfg.RequireSecret(); err != nil {
		return err
	}
	log := c.logger(cfg)

	store, err := repositories.Open(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return err
	}
	defer store.Close()
	log.WithField("backend", store.Location.Backend).Info("database ready")

	client := connectRedis(ctx, cfg, log)
	if client != nil {
		defer client.Close()
	}

	router, err := routes.SetupRoutes(routes.Dependencies{
		Config: cfg,
		Log:    log,
		Store:  store,
		Redis:  client,
	})
	if err != nil {
		return err
	}
	return routes.StartServer(ctx, cfg.Addr, router, log)
}

// connectRedis returns nil when no redis is configured or it cannot be
// reached, which turns rate limiting off.
func connectRedis(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR not set, rate limiting disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).Warn("redis unreachable, rate limiting disabled")
		client.Close()
		return nil
	}
	return client
}
