package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/serenity-bookings/internal/application"
	"github.com/example/serenity-bookings/internal/config"
	httptransport "github.com/example/serenity-bookings/internal/http"
	"github.com/example/serenity-bookings/internal/notification"
	"github.com/example/serenity-bookings/internal/payment"
	"github.com/example/serenity-bookings/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional .env for local development; the environment wins in production.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(context.Background(), pool, logger); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	tokenGenerator := func() string { return randomHex(32) }
	now := time.Now

	bookingRepo := newBookingRepositoryAdapter(sqlite.NewBookingRepository(pool))
	slotCalendar := newSlotCalendarAdapter(sqlite.NewBookingRepository(pool))
	serviceCatalog := newServiceCatalogAdapter(sqlite.NewServiceRepository(pool))
	credentialStore := newCredentialStoreAdapter(sqlite.NewUserRepository(pool))

	var mailer notification.Mailer
	if cfg.SMTPConfigured() {
		mailer = notification.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	} else {
		logger.Warn("SMTP relay not configured, emails will be logged only")
		mailer = notification.NewLogMailer(logger)
	}
	dispatcher := notification.NewDispatcher(mailer, logger)
	go dispatcher.Run(ctx)

	availabilityService := application.NewAvailabilityService(slotCalendar, logger)
	catalogService := application.NewCatalogService(serviceCatalog, now, logger)
	bookingService := application.NewBookingService(bookingRepo, serviceCatalog, dispatcher, idGenerator, tokenGenerator, now, logger)
	authService := application.NewAuthService(credentialStore, []byte(cfg.JWTSecret), cfg.TokenTTL, now, logger)

	processor := payment.NewStripeProcessor(cfg.StripeSecretKey)
	paymentService := application.NewPaymentService(bookingRepo, processor, cfg.Currency, bookingService.MarkConfirmed, now, logger)

	bootstrapper := application.NewBootstrapper(serviceCatalog, credentialStore, idGenerator, now, logger)
	if err := bootstrapper.Bootstrap(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Error("failed to bootstrap initial data", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:      httptransport.NewAuthHandler(authService, logger),
		Slots:     httptransport.NewSlotHandler(availabilityService, logger),
		Services:  httptransport.NewServiceHandler(catalogService, logger),
		Bookings:  httptransport.NewBookingHandler(bookingService, logger),
		Payments:  httptransport.NewPaymentHandler(paymentService, logger),
		Emails:    httptransport.NewEmailHandler(bookingService, logger),
		Validator: authService,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func randomHex(bytes int) string {
	if bytes <= 0 {
		bytes = 16
	}
	buf := make([]byte, bytes)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
