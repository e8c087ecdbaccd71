package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/payrelay/internal/cache"
	"github.com/GTDGit/payrelay/internal/config"
	"github.com/GTDGit/payrelay/internal/envelope"
	"github.com/GTDGit/payrelay/internal/handler"
	"github.com/GTDGit/payrelay/internal/middleware"
	"github.com/GTDGit/payrelay/internal/service"
	"github.com/GTDGit/payrelay/pkg/gateway"
)

// main is the application entrypoint for the payment relay.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().
		Str("env", cfg.Env).
		Str("scheme", string(cfg.Merchant.Scheme)).
		Msg("starting payment relay")

	// 3. Sealer shared by both directions
	sealer, err := envelope.NewSealer(cfg.Merchant.Scheme, cfg.Merchant.SecretKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid signing configuration: %v\n", err)
		os.Exit(1)
	}

	// 4. Connect to Redis (optional)
	var (
		guard       service.ReplayGuard
		redisPinger handler.Pinger
	)
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis connection failed - callback replay guard disabled")
		} else {
			defer redisClient.Close()
			guard = cache.NewReplayGuard(redisClient, cfg.Redis.ReplayTTL)
			redisPinger = redisClient
			log.Info().Msg("redis connected successfully")
		}
	}

	// 5. Gateway client, only when the relay talks to the gateway itself
	var tokens service.TokenRequester
	if cfg.Gateway.TokenURL != "" {
		tokens = gateway.NewClient(gateway.Config{
			TokenURL: cfg.Gateway.TokenURL,
			Timeout:  cfg.Gateway.Timeout,
		})
	}

	// 6. Initialize services
	invoices, err := service.NewInvoiceGenerator(cfg.Invoice.Prefix, cfg.Invoice.NodeID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invoice generator: %v\n", err)
		os.Exit(1)
	}
	paymentSvc := service.NewPaymentService(cfg, sealer, invoices, tokens)
	dispatchSvc := service.NewDispatchService(&cfg.Dispatch)
	callbackSvc := service.NewCallbackService(sealer, dispatchSvc, guard)

	if cfg.Dispatch.OrderURL == "" {
		log.Warn().Msg("ORDER_API_URL not set - order dispatch disabled")
	}
	if cfg.Dispatch.TicketURL == "" {
		log.Warn().Msg("TICKET_WEBHOOK_URL not set - ticket dispatch disabled")
	}

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:   handler.NewHealthHandler(cfg.Merchant.Scheme, redisPinger),
		Payment:  handler.NewPaymentHandler(paymentSvc),
		Callback: handler.NewCallbackHandler(callbackSvc),
	}

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers)

	// 9. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 10. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 11. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers.
type Handlers struct {
	Health   *handler.HealthHandler
	Payment  *handler.PaymentHandler
	Callback *handler.CallbackHandler
}

func setupRoutes(router *gin.Engine, handlers *Handlers) {
	router.GET("/", handlers.Health.GetRoot)
	router.GET("/v1/health", handlers.Health.GetHealth)

	api := router.Group("/api")
	{
		api.POST("/start-payment", handlers.Payment.StartPayment)
		api.POST("/payment-callback", handlers.Callback.HandlePaymentCallback)
	}
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
