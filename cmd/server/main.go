package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"spendsplit/internal/auth"
	"spendsplit/internal/config"
	"spendsplit/internal/gemini"
	"spendsplit/internal/handler"
	"spendsplit/internal/ledger"
	"spendsplit/internal/metrics"
	"spendsplit/internal/middleware"
	"spendsplit/internal/service"
	"spendsplit/internal/storage/sqlite"
	"spendsplit/pkg/logging"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	categoryService := service.NewCategoryService(store)
	authService := service.NewAuthService(authenticator, tokens, categoryService)
	transactionService := service.NewTransactionService(store)
	friendService := service.NewFriendService(store)
	groupService := service.NewGroupService(store)
	expenseService := service.NewExpenseService(store, ledger.NewAccumulator(store), m)

	var voiceService *service.VoiceService
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			slog.Error("Failed to create Gemini client", "error", err)
			os.Exit(1)
		}
		voiceService = service.NewVoiceService(client, categoryService)
	} else {
		slog.Warn("GEMINI_API_KEY not set, voice transaction parsing disabled")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(cors.New())
	app.Use(limiter.New(limiter.Config{Max: 120}))
	app.Use(middleware.RequestLogger(m))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	h := handler.New(
		authService,
		store,
		categoryService,
		transactionService,
		friendService,
		groupService,
		expenseService,
		voiceService,
		tokens,
	)
	h.Register(app)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		slog.Info("Server starting", "addr", addr, "db", cfg.DBPath)
		if err := app.Listen(addr); err != nil {
			slog.Error("Server stopped", "error", err)
		}
	}()

	<-stop
	slog.Info("Shutting down")

	if err := app.Shutdown(); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	if err := store.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}
