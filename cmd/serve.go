package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodorder/cache"
	"foodorder/configs"
	"foodorder/events"
	"foodorder/imagestore"
	"foodorder/middlewares"
	"foodorder/payment"
	"foodorder/routes"
	"foodorder/utils"
	"foodorder/ws"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configs.LoadConfig()
			setupLogger(cfg.SlogLevel())
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
}

func serve(ctx context.Context, cfg *configs.Config) error {
	// DB
	db, err := configs.ConnectionDB(cfg)
	if err != nil {
		return err
	}
	if err := configs.SetupDatabase(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if cfg.SeedDemo {
		if err := configs.SeedDemo(db); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	// Auth
	kf, err := utils.NewJWKSKeyfunc(ctx, cfg.JWKSURL())
	if err != nil {
		return fmt.Errorf("jwks: %w", err)
	}
	verifier := utils.NewTokenVerifier(kf, cfg.AuthAudience, cfg.AuthIssuer)

	// Images
	var images imagestore.Uploader
	localImages := cfg.CloudinaryURL == ""
	if localImages {
		images = imagestore.NewLocal(cfg.UploadDir, "/uploads")
		slog.Warn("CLOUDINARY_URL not set, storing images on local disk", "dir", cfg.UploadDir)
	} else {
		cld, err := imagestore.NewCloudinary(cfg.CloudinaryURL, "foodorder")
		if err != nil {
			return err
		}
		images = cld
	}

	// Events + webhook idempotency
	var (
		bus  events.Bus
		idem cache.Idempotency
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
		}
		bus = events.NewRedisBus(rdb)
		idem = cache.NewRedisIdempotency(rdb)
	} else {
		bus = events.NewLocalBus()
		idem = cache.NewMemoryIdempotency()
	}

	hub := ws.NewOrderHub(bus, cfg.FrontendURL)
	hubErr := make(chan error, 1)
	go func() {
		if err := hub.Run(ctx); err != nil {
			hubErr <- fmt.Errorf("order hub: %w", err)
		}
	}()

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(), middlewares.CORSMiddleware(cfg.FrontendURL))
	if localImages {
		r.Static("/uploads", cfg.UploadDir)
	}
	routes.RegisterRoutes(r, routes.Deps{
		Config:   cfg,
		DB:       db,
		Verifier: verifier,
		Gateway:  payment.NewStripe(cfg.StripeAPIKey, cfg.StripeWebhookSecret),
		Images:   images,
		Bus:      bus,
		Idem:     idem,
		Hub:      hub,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case err := <-hubErr:
		slog.Error("order hub stopped", "err", err)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(err, srv.Shutdown(shutdownCtx))
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func migrateCmd() *cobra.Command {
	var seed bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := configs.LoadConfig()
			setupLogger(cfg.SlogLevel())
			db, err := configs.ConnectionDB(cfg)
			if err != nil {
				return err
			}
			if err := configs.SetupDatabase(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			slog.Info("schema up to date", "driver", cfg.DBDriver)
			if seed || cfg.SeedDemo {
				return configs.SeedDemo(db)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "also insert demo restaurants")
	return cmd
}
