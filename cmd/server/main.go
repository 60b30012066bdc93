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

	"github.com/ikkim/hwawon-backend/config"
	"github.com/ikkim/hwawon-backend/internal/app/controller"
	"github.com/ikkim/hwawon-backend/internal/app/repository"
	"github.com/ikkim/hwawon-backend/internal/app/service"
	"github.com/ikkim/hwawon-backend/internal/db"
	"github.com/ikkim/hwawon-backend/internal/events"
	"github.com/ikkim/hwawon-backend/internal/middleware"
	"github.com/ikkim/hwawon-backend/internal/router"
	"github.com/ikkim/hwawon-backend/internal/scheduler"
	"github.com/ikkim/hwawon-backend/internal/storage"
	ws "github.com/ikkim/hwawon-backend/internal/websocket"
	"github.com/ikkim/hwawon-backend/pkg/logger"
	"github.com/ikkim/hwawon-backend/pkg/payment/kakaopay"
	"github.com/ikkim/hwawon-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	format := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		format = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      format,
		EnableColor: true,
	})

	logger.Info("Starting HWAWON Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Redis (결제 중복 방지, 잔액 캐시). 없으면 DB 만으로 동작
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, continuing without cache", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer func() {
		if err := redis.Close(); err != nil {
			logger.Error("Failed to close Redis connection", err)
		}
	}()

	var (
		idempotency  redis.IdempotencyStore
		balanceCache *redis.BalanceCache
	)
	if client := redis.GetClient(); client != nil {
		idempotency = redis.NewIdempotencyStore(client, "hwawon:payment")
		balanceCache = redis.NewBalanceCache(client, cfg.Loyalty.BalanceCacheTTL)
	}

	// 원장 이벤트: 실시간 알림 + Kafka + 잔액 캐시 무효화
	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()

	publishers := events.MultiPublisher{hub}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.LedgerTopic)
		if err != nil {
			logger.Warn("Kafka unavailable, ledger events stay local", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer kafkaPublisher.Close()
			publishers = append(publishers, kafkaPublisher)
		}
	}
	if balanceCache != nil {
		publishers = append(publishers, service.NewBalanceCacheInvalidator(balanceCache))
	}

	// Initialize repositories
	gdb := db.GetDB()
	productRepo := repository.NewProductRepository(gdb)
	storeRepo := repository.NewStoreRepository(gdb)
	orderRepo := repository.NewOrderRepository(gdb)
	ledgerRepo := repository.NewLedgerRepository(gdb)
	memberRepo := repository.NewMemberRepository(gdb)
	withdrawalRepo := repository.NewWithdrawalRepository(gdb)
	settlementRepo := repository.NewSettlementRepository(gdb)

	// Initialize services
	policy := cfg.Loyalty
	loc := policy.Location()

	productService := service.NewProductService(productRepo)
	matcher := service.NewStoreMatcher(storeRepo, policy.CentralDispatchSLA)
	ledgerService := service.NewLedgerService(ledgerRepo, gdb, publishers, policy.EntryValidity)
	orderService := service.NewOrderService(
		orderRepo,
		productRepo,
		ledgerRepo,
		memberRepo,
		settlementRepo,
		matcher,
		idempotency,
		publishers,
		policy,
		gdb,
	)
	couponService := service.NewCouponService(ledgerRepo, balanceCache)
	referralService := service.NewReferralService(orderRepo, loc)
	withdrawalService := service.NewWithdrawalService(withdrawalRepo, ledgerRepo, publishers, policy, gdb)
	memberService := service.NewMemberService(memberRepo, ledgerRepo, publishers, policy, gdb)

	var provider service.PaymentProvider
	kakaoCfg := kakaopay.Config{
		AdminKey:    cfg.Payment.KakaoPay.AdminKey,
		CID:         cfg.Payment.KakaoPay.CID,
		BaseURL:     cfg.Payment.KakaoPay.BaseURL,
		ApprovalURL: cfg.Payment.KakaoPay.ApprovalURL,
		FailURL:     cfg.Payment.KakaoPay.FailURL,
		CancelURL:   cfg.Payment.KakaoPay.CancelURL,
	}
	if kakaoClient, err := kakaopay.NewClient(kakaoCfg, &http.Client{Timeout: 10 * time.Second}); err != nil {
		logger.Warn("KakaoPay not configured, only external confirmations accepted", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		provider = service.NewKakaoPayProvider(kakaoClient)
	}
	paymentService := service.NewPaymentService(provider, orderRepo, orderService)

	// 출금 보고서 보관소
	var reports storage.ReportStore
	if cfg.S3.Bucket != "" {
		reports = storage.NewS3Storage(cfg.S3)
	}

	// Scheduler
	ledgerScheduler := scheduler.NewLedgerScheduler(
		cfg.Schedule,
		ledgerService,
		orderService,
		withdrawalService,
		reports,
		cfg.S3.ReportPrefix,
		loc,
	)
	if err := ledgerScheduler.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", err)
	}
	defer ledgerScheduler.Stop()

	// Initialize controllers
	productController := controller.NewProductController(productService)
	storeController := controller.NewStoreController(matcher, productService)
	orderController := controller.NewOrderController(orderService)
	paymentController := controller.NewPaymentController(paymentService, orderService)
	couponController := controller.NewCouponController(couponService)
	referralController := controller.NewReferralController(referralService)
	withdrawalController := controller.NewWithdrawalController(withdrawalService)
	memberController := controller.NewMemberController(memberService)
	ledgerStreamController := controller.NewLedgerStreamController(hub, cfg.CORS.AllowedOrigins)
	adminController := controller.NewAdminController(withdrawalService, loc)

	// Initialize middleware
	adminMiddleware := middleware.NewAdminMiddleware(cfg.Admin.APIKey)
	webhookMiddleware := middleware.NewWebhookMiddleware(cfg.Payment.WebhookSecret)
	if cfg.Payment.WebhookSecret == "" {
		logger.Warn("Payment webhook secret not set, provider-agnostic confirm is disabled")
	}

	// Setup router
	r := router.NewRouter(
		productController,
		storeController,
		orderController,
		paymentController,
		couponController,
		referralController,
		withdrawalController,
		memberController,
		ledgerStreamController,
		adminController,
		adminMiddleware,
		webhookMiddleware,
		cfg,
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r.Setup(),
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}
	logger.Info("Server stopped successfully")
}
