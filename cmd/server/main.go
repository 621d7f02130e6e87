// Portfolio backend: chatbot proxy + contact-form mailer.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"portfolio-backend/handler"
	"portfolio-backend/internal/config"
	"portfolio-backend/internal/mail"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/usecase"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting server",
		"port", cfg.Port,
		"gemini_configured", cfg.GeminiConfigured(),
		"gmail_configured", cfg.GmailConfigured(),
	)

	// The chat agent connects lazily on the first /chat request; a missing
	// API key degrades that endpoint instead of failing startup.
	chatService, err := usecase.NewChatService(cfg)
	if err != nil {
		slog.Error("Failed to create chat service", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := chatService.Close(); closeErr != nil {
			slog.Error("Failed to close chat service", "error", closeErr)
		}
	}()

	sender, err := mail.NewSMTPSender(cfg.Gmail.Address, cfg.Gmail.AppPassword, cfg.SMTP.Host, cfg.SMTP.Port)
	if err != nil {
		slog.Error("Failed to create mail sender", "error", err)
		os.Exit(1)
	}
	contactService, err := usecase.NewContactService(sender)
	if err != nil {
		slog.Error("Failed to create contact service", "error", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(chatService, contactService, cfg)
	if err != nil {
		slog.Error("Failed to create handler", "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	stop()

	slog.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped successfully")
}
