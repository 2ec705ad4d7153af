// Package server wires the full application and runs the HTTP server.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	activation "marketplace/internal/application/activation/usecases"
	paymentusecases "marketplace/internal/application/payment/usecases"
	userusecases "marketplace/internal/application/user/usecases"
	"marketplace/internal/infrastructure/auth"
	"marketplace/internal/infrastructure/cache"
	"marketplace/internal/infrastructure/config"
	"marketplace/internal/infrastructure/database"
	"marketplace/internal/infrastructure/email"
	licensingclient "marketplace/internal/infrastructure/licensing"
	"marketplace/internal/infrastructure/otp"
	"marketplace/internal/infrastructure/payment/mercadopago"
	"marketplace/internal/infrastructure/persistence/migrations"
	"marketplace/internal/infrastructure/repository"
	httpiface "marketplace/internal/interfaces/http"
	"marketplace/internal/interfaces/http/handlers"
	"marketplace/internal/interfaces/http/routes"
	"marketplace/internal/shared/db"
	"marketplace/internal/shared/logger"
)

// NewCommand returns the serve subcommand.
func NewCommand() *cobra.Command {
	var env string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the marketplace API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(env)
		},
	}
	cmd.Flags().StringVar(&env, "env", "default", "environment override for server mode")
	return cmd
}

func run(env string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	debugMode := cfg.Server.Mode == "debug"
	if err := logger.Init(&cfg.Logger, debugMode); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	log := logger.NewLogger()

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to init database: %w", err)
	}
	defer database.Close()
	gormDB := database.Get()

	if err := migrations.Run(gormDB, log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// The plan cache is an optimization; the server runs without
	// redis, just slower against the license platform.
	var planCache licensingclient.PlanCache
	if redisClient, err := cache.NewRedisClient(&cfg.Redis); err != nil {
		log.Warnw("redis unavailable, plan cache disabled", "error", err)
	} else {
		planCache = cache.NewPlanCache(redisClient, log)
	}

	// Repositories and shared services.
	txManager := db.NewTransactionManager(gormDB)
	userRepo := repository.NewUserRepository(gormDB)
	paymentRepo := repository.NewPaymentRepository(gormDB)
	purchaseRepo := repository.NewPurchaseRepository(gormDB, log)
	subscriptionRepo := repository.NewSubscriptionRepository(gormDB)

	jwtService := auth.NewJWTService(&cfg.Auth.JWT)
	hasher := auth.NewPasswordHasher(&cfg.Auth.Password)
	emailSender := email.NewSMTPSender(&cfg.Email, log)
	otpSender := otp.NewWhatsAppClient(&cfg.WhatsApp, cfg.Licensing.Store, log)
	licensing := licensingclient.NewClient(&cfg.Licensing, planCache, log)
	gateway := mercadopago.NewGateway(&cfg.MercadoPago, log)

	// Use cases.
	activateUC := activation.NewActivatePlanUseCase(userRepo, purchaseRepo,
		paymentRepo, subscriptionRepo, licensing, txManager, emailSender,
		cfg.Licensing.PortalURL, log)
	credentialsUC := activation.NewGetCredentialsUseCase(userRepo, cfg.Licensing.PortalURL)
	listPlansUC := activation.NewListPlansUseCase(licensing)

	createPreferenceUC := paymentusecases.NewCreatePreferenceUseCase(userRepo,
		licensing, gateway, &cfg.Server, &cfg.MercadoPago, log)
	webhookUC := paymentusecases.NewHandleWebhookUseCase(paymentRepo,
		purchaseRepo, userRepo, gateway, activateUC, cfg.Webhook, log)
	processReturnUC := paymentusecases.NewProcessReturnUseCase(paymentRepo,
		gateway, activateUC, credentialsUC, cfg.Webhook, log)

	registerUC := userusecases.NewRegisterUserUseCase(userRepo, licensing,
		hasher, jwtService, emailSender, cfg.Server.BaseURL, log)
	loginUC := userusecases.NewLoginUseCase(userRepo, hasher, jwtService, log)
	verifyEmailUC := userusecases.NewVerifyEmailUseCase(userRepo, log)
	resendUC := userusecases.NewResendVerificationUseCase(userRepo, emailSender,
		cfg.Server.BaseURL, log)
	phoneUC := userusecases.NewPhoneVerificationUseCase(userRepo, otpSender, log)

	router := httpiface.NewRouter(&cfg.Server, routes.Handlers{
		Auth:    handlers.NewAuthHandler(registerUC, loginUC, verifyEmailUC, resendUC),
		Phone:   handlers.NewPhoneHandler(phoneUC),
		Plan:    handlers.NewPlanHandler(listPlansUC, activateUC, credentialsUC),
		Payment: handlers.NewPaymentHandler(createPreferenceUC, processReturnUC),
		Webhook: handlers.NewWebhookHandler(webhookUC, log),
	}, jwtService, log)

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server listening", "addr", srv.Addr, "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Infow("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	log.Infow("server stopped")
	return nil
}
