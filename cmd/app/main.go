package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cafe-passport/internal/config"
	"cafe-passport/internal/domain/ports/adapter"
	"cafe-passport/internal/infra/api"
	pg "cafe-passport/internal/infra/db/postgres"
	"cafe-passport/internal/infra/events"
	"cafe-passport/internal/infra/logging"
	"cafe-passport/internal/infra/metrics"
	"cafe-passport/internal/infra/payment"
	red "cafe-passport/internal/infra/redis"
	"cafe-passport/internal/infra/relay"
	"cafe-passport/internal/infra/sched"
	"cafe-passport/internal/infra/worker"
	"cafe-passport/internal/usecase"
)

type eventBus interface {
	adapter.EventPublisher
	events.Subscriber
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	txManager := pg.NewTxManager(pool)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Event bus ----
	var bus eventBus
	if cfg.NATS.URL != "" {
		natsBus, err := events.NewNATSEventBus(cfg.NATS.URL, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("nats")
		}
		defer natsBus.Close()
		bus = natsBus
		logger.Info().Str("url", cfg.NATS.URL).Msg("event bus: nats")
	} else {
		bus = events.NewLocalBus()
		logger.Info().Msg("event bus: in-process")
	}

	pubPool := worker.NewPool(cfg.Server.Workers)
	pubPool.Start(ctx)
	defer pubPool.Stop()
	publisher := events.NewAsyncPublisher(bus, pubPool, logger)

	// ---- Relay ----
	hub := relay.NewHub(logger)
	if err := hub.Run(bus); err != nil {
		logger.Fatal().Err(err).Msg("relay subscribe")
	}

	// ---- Repositories ----
	userRepo := pg.NewPostgresUserRepo(pool)
	planRepo := pg.NewPostgresPlanRepo(pool)
	claimRepo := pg.NewPostgresClaimRepo(pool)
	cafeRepo := pg.NewCafeRepoCacheDecorator(pg.NewPostgresCafeRepo(pool), redisClient)
	referralRepo := pg.NewPostgresReferralCodeRepo(pool)
	paymentRepo := pg.NewPostgresPaymentRepo(pool)

	// ---- Payment gateway ----
	var gateway adapter.PaymentGateway
	switch cfg.Payment.Provider {
	case "razorpay":
		gateway = payment.NewRazorpayGateway(cfg.Payment.KeySecret, logger)
	case "noop":
		if !cfg.Runtime.Dev {
			logger.Fatal().Msg("noop payment gateway is dev-only")
		}
		gateway = payment.NewNoopGateway()
	default:
		logger.Fatal().Str("provider", cfg.Payment.Provider).Msg("unknown payment provider")
	}

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, planRepo)
	entUC := usecase.NewEntitlementUseCase(userRepo, planRepo, claimRepo, paymentRepo, referralRepo, txManager, gateway.Name(), logger)
	claimUC := usecase.NewClaimUseCase(cafeRepo, planRepo, claimRepo, txManager, logger)
	redeemUC := usecase.NewRedeemUseCase(userRepo, cafeRepo, claimRepo, txManager, publisher, logger)
	cafeUC := usecase.NewCafeUseCase(cafeRepo, claimRepo, publisher, logger)
	referralUC := usecase.NewReferralUseCase(referralRepo)
	statsUC := usecase.NewStatsUseCase(userRepo, planRepo, paymentRepo)

	// ---- API server ----
	auth := api.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	server := api.NewServer(
		userUC, entUC, claimUC, redeemUC, cafeUC, referralUC, statsUC,
		gateway, auth, hub, rateLimiter, cfg.RateLimit.ClaimsPerMinute,
		cfg.Server.RequestTimeout, logger,
	)
	handler := api.Chain(server.Routes(),
		api.TraceID(),
		api.RequestLog(logger),
		api.Recover(logger),
	)
	apiSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: the SSE stream must outlive any fixed deadline.
	}
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("api listening")
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("api server error")
		}
	}()

	// ---- Admin listener: metrics + health ----
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminMux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})
	adminSrv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Admin.Port), Handler: adminMux}
	go func() {
		logger.Info().Int("port", cfg.Admin.Port).Msg("admin listening")
		if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin server error")
		}
	}()

	// ---- Expiry worker ----
	expiry := sched.NewExpiryWorker(cfg.Scheduler.ExpiryCheckInterval, planRepo, logger)
	go func() { _ = expiry.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("api shutdown")
	}
	if err := adminSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("admin shutdown")
	}
}
