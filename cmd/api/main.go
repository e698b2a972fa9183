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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/docbook-api/internal/config"
	"github.com/harentsoaR/docbook-api/internal/handlers"
	"github.com/harentsoaR/docbook-api/internal/logger"
	"github.com/harentsoaR/docbook-api/internal/metrics"
	"github.com/harentsoaR/docbook-api/internal/middleware"
	"github.com/harentsoaR/docbook-api/internal/payments"
	"github.com/harentsoaR/docbook-api/internal/services"
	"github.com/harentsoaR/docbook-api/internal/store"
	"github.com/harentsoaR/docbook-api/internal/utils"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "docbook-api",
		Short:        "Doctor appointment booking API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(ensureIndexesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func ensureIndexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ensure-indexes",
		Short: "Create the MongoDB indexes the API relies on",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.StoreDriver != config.DriverMongo {
				return fmt.Errorf("ensure-indexes needs STORE_DRIVER=%s", config.DriverMongo)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			client, err := connectMongo(ctx, cfg.MongoURI)
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())

			if err := store.NewMongo(client.Database(cfg.MongoDatabase)).EnsureIndexes(ctx); err != nil {
				return err
			}
			fmt.Println("Indexes are in place.")
			return nil
		},
	}
}

func connectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping MongoDB: %w", err)
	}
	return client, nil
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// --- Storage ---
	var (
		st     store.Store
		images store.ImageStore
	)
	switch cfg.StoreDriver {
	case config.DriverMemory:
		mem := store.NewMemory()
		st, images = mem, mem
		log.Warn("Using the in-memory store; data is lost on restart")
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		client, err := connectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return err
		}
		defer client.Disconnect(context.Background())

		db := client.Database(cfg.MongoDatabase)
		mst := store.NewMongo(db)
		if err := mst.EnsureIndexes(ctx); err != nil {
			log.WithError(err).Warn("Could not ensure indexes")
		}
		st, images = mst, store.NewGridFSImages(db)
		log.WithField("database", cfg.MongoDatabase).Info("Successfully connected to MongoDB")
	}

	// --- Services ---
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	m := metrics.New()
	gateway := payments.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	if cfg.RazorpayKeyID == "" {
		log.Warn("RAZORPAY_KEY_ID is not set; online payments are disabled")
	}
	notifier := services.NewNotificationService(cfg.TextbeltKey, log)

	svc := services.New(st, tokens, gateway, notifier, m, log, services.Options{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		Currency:      cfg.Currency,
		PaymentSecret: cfg.RazorpayKeySecret,
		Location:      loc,
	})

	// --- Router ---
	if log.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics(m))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "token", "atoken", "d-token", "dtoken", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	}))

	handlers.RegisterRoutes(r, handlers.NewHandler(svc, images, st, log), tokens, m)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-quit:
	}

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
