package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vbank-adapter/internal/config"
	"vbank-adapter/internal/db"
	"vbank-adapter/internal/gateway"
	"vbank-adapter/internal/keystore"
	"vbank-adapter/internal/logger"
	"vbank-adapter/internal/metrics"
	"vbank-adapter/internal/middleware"
	"vbank-adapter/internal/webhook"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

var (
	initDBFunc      = db.NewDatabase
	startServerFunc = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	var database *sql.DB
	if cfg.JournalEnabled() {
		conn, err := initDBFunc(cfg)
		if err != nil {
			return err
		}
		defer conn.Close()
		database = conn
	} else {
		logger.L().Warn("DB_HOST not set; notification journal disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newServer(cfg, database)
	go app.limiter.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("server running", zap.String("addr", srv.Addr), zap.String("webhook_path", cfg.WebhookPath))
		errCh <- startServerFunc(srv)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.L().Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type server struct {
	router  http.Handler
	client  *gateway.Client
	limiter *middleware.Limiter
}

// newServer wires keys, the gateway client and the notification endpoint.
// database may be nil when the journal is disabled.
func newServer(cfg *config.Config, database *sql.DB) *server {
	keys := keystore.New(keystore.Paths{
		Private:    cfg.PrivateKeyPath,
		Public:     cfg.PublicKeyPath,
		GatewayKey: cfg.GatewayPublicKey,
	})
	m := metrics.New()

	var outbound *rate.Limiter
	if cfg.RateLimit > 0 {
		outbound = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}

	client := gateway.NewClient(gateway.Options{
		BaseURL:     cfg.BaseURL,
		AppID:       cfg.AppID,
		CountryCode: cfg.CountryCode,
		Keys:        keys,
		Limiter:     outbound,
		Metrics:     m,
	})

	var repo webhook.Repository
	if database != nil {
		repo = webhook.NewRepository(database)
	}

	processor := webhook.NewReconciler(client, webhook.ProcessorFunc(logPayment))
	hook := webhook.NewHandler(webhook.NewVerifier(keys, m), repo, processor)

	limiter := middleware.NewLimiter(middleware.LimiterConfig{
		StrictPaths:    []string{cfg.WebhookPath},
		InternalSecret: cfg.InternalSecret,
	})

	return &server{
		router:  setupRouter(cfg.WebhookPath, hook, m.Handler(), limiter),
		client:  client,
		limiter: limiter,
	}
}

func setupRouter(webhookPath string, hook, metricsHandler http.Handler, limiter *middleware.Limiter) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	mux.Handle("/metrics", metricsHandler)
	mux.Handle(webhookPath, limiter.Middleware(hook))

	return logger.RequestIDMiddleware(logger.LoggingMiddleware(mux))
}

// logPayment is the last step for a reconciled notification.
func logPayment(ctx context.Context, n *webhook.PaymentNotification) error {
	logger.FromCtx(ctx).Info("payment received",
		zap.String("order_no", n.OrderNo),
		zap.String("virtual_account_no", n.VirtualAccountNo),
		zap.String("amount", n.OrderAmount.String()),
		zap.String("currency", n.Currency),
		zap.Int("order_status", n.OrderStatus),
		zap.Time("created", n.Created()),
	)
	return nil
}
