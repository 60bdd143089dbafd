package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	accounts "github.com/stormhaven/go-accounts"
	"github.com/stormhaven/go-accounts/mailer"
)

func main() {
	godotenv.Load()

	cfg := loadConfig()

	level := glog.Info
	if cfg.Debug {
		level = glog.Debug
	}

	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(level),
		glog.WithName("accounts"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)
	logger := lgr.GetLogger("server")

	if cfg.SigningKey == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := db.NewCreateTable().
		Model((*accounts.Account)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		cancel()
		logger.Error("failed to create accounts table", "error", err)
		os.Exit(1)
	}
	cancel()

	repo := accounts.NewRepositoryManager(db)
	repo.MustValidate()

	notifier := mailer.New(cfg.SMTP).WithLogger(lgr.GetLogger("mailer"))

	provider := accounts.NewAccountProvider(repo.Accounts()).
		WithLogger(lgr.GetLogger("auth:prv"))

	auther := accounts.NewAuthenticator(provider, cfg).
		WithLogger(lgr.GetLogger("auth"))

	ctrl := accounts.NewAPIController(repo, auther, notifier)
	ctrl.Debug = cfg.Debug
	ctrl.ContextKey = cfg.GetContextKey()
	ctrl.Logger = lgr.GetLogger("auth:http")

	app := fiber.New(fiber.Config{
		AppName:               "accounts",
		DisableStartupMessage: !cfg.Debug,
	})

	accounts.RegisterRoutes(app, ctrl, accounts.ProtectedRoute(cfg, auther.TokenService()))

	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		if err := app.Listen(cfg.Addr); err != nil {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}
}
