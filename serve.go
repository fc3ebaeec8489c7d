package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handlers"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/notify"
	"storefront/internal/orders"
	"storefront/internal/payment"
	"storefront/internal/shipping"
	"storefront/internal/store"
	"storefront/internal/webhook"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE:  runServe,
	}
}

func indexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create the MongoDB indexes orders and products rely on",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, db, err := connectMongo()
			if err != nil {
				return err
			}
			defer client.Disconnect(context.Background())
			return ensureIndexes(db)
		},
	}
}

func connectMongo() (*mongo.Client, *mongo.Database, error) {
	if config.AppEnv.MongoURI == "" {
		return nil, nil, errors.New("MONGO_URI is not set")
	}
	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	db := client.Database(config.AppEnv.DBName)
	log.Println("MongoDB connected to:", db.Name())
	return client, db, nil
}

// ensureIndexes treats product index errors as warnings. Order index errors
// are fatal.
func ensureIndexes(db *mongo.Database) error {
	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("[DB] [WARN] product index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		return fmt.Errorf("order indexes: %w", err)
	}
	return nil
}

func newMailer() (notify.Mailer, func()) {
	if config.AppEnv.RedisURL == "" {
		log.Println("[MAIL] [WARN] REDIS_URL not set, confirmation emails are only logged")
		return notify.LogMailer{}, func() {}
	}
	mailer, err := notify.NewRedisMailer(config.AppEnv.RedisURL)
	if err != nil {
		log.Printf("[MAIL] [WARN] redis unavailable (%v), confirmation emails are only logged", err)
		return notify.LogMailer{}, func() {}
	}
	return mailer, func() { _ = mailer.Close() }
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.AppEnv
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	client, db, err := connectMongo()
	if err != nil {
		return err
	}
	defer client.Disconnect(context.Background())
	if err := ensureIndexes(db); err != nil {
		return err
	}
	orderStore := store.NewMongoOrders(db)
	catalog := store.NewMongoProducts(db)
	ping := func(ctx context.Context) error { return database.Ping(ctx, client) }

	mailer, closeMailer := newMailer()
	defer closeMailer()

	provider := payment.NewStripeProvider(cfg.Stripe.SecretKey)
	gateway := shipping.NewGateway(provider, cfg.Checkout.Currency)
	builder := checkout.NewBuilder(catalog, gateway, provider, checkout.Options{
		Currency:   cfg.Checkout.Currency,
		SuccessURL: cfg.Checkout.SuccessURL,
		CancelURL:  cfg.Checkout.CancelURL,
		Methods:    cfg.DeliveryMethods,
	})
	svc := orders.NewService(orderStore, provider, gateway, mailer, cfg.DeliveryMethods)
	ingestor := webhook.NewIngestor(webhook.NewStripeVerifier(cfg.Stripe.WebhookSecret), svc)

	metrics.RegisterDefault()
	router := handlers.NewRouter(handlers.Deps{
		JWTSecret:       cfg.JWTSecret,
		RequestTimeout:  cfg.RequestTimeout,
		DeliveryMethods: cfg.DeliveryMethods,
		Checkout:        builder,
		Ingestor:        ingestor,
		Orders:          svc,
		Rates:           gateway,
		CheckoutLimiter: middleware.NewLimiter(cfg.Checkout.RateLimit, cfg.Checkout.RateBurst),
		Ping:            ping,
		Metrics:         promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[HTTP] [INFO] listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("[HTTP] [INFO] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
