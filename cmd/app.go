package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/auth"
	"github.com/frahmantamala/expense-tracker/internal/category"
	categoryPostgres "github.com/frahmantamala/expense-tracker/internal/category/postgres"
	"github.com/frahmantamala/expense-tracker/internal/core/events"
	"github.com/frahmantamala/expense-tracker/internal/expense"
	expensePostgres "github.com/frahmantamala/expense-tracker/internal/expense/postgres"
	"github.com/frahmantamala/expense-tracker/internal/transport"
	"github.com/frahmantamala/expense-tracker/internal/transport/rest"
	"github.com/frahmantamala/expense-tracker/internal/user"
	userPostgres "github.com/frahmantamala/expense-tracker/internal/user/postgres"
	"gorm.io/gorm"
)

// application is the wired object graph shared by the server, seed and user
// commands.
type application struct {
	Bus        *events.EventBus
	Auth       *auth.Service
	Users      *user.Service
	Categories *category.Service
	Expenses   *expense.Service
	Router     http.Handler
}

func newApplication(ctx context.Context, cfg *internal.Config, db *gorm.DB, pinger rest.Pinger, logger *slog.Logger) (*application, error) {
	loc, err := cfg.Stats.Location()
	if err != nil {
		return nil, err
	}

	bus := events.NewEventBus(logger)
	events.RegisterAuditLog(bus, logger)

	userRepo := userPostgres.NewUserRepository(db)
	categoryRepo := categoryPostgres.NewCategoryRepository(db)
	expenseRepo := expensePostgres.NewExpenseRepository(db)

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.JWTAccessSecret,
		cfg.Security.JWTRefreshSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	hasher := auth.NewBcryptHasher(cfg.Security.BCryptCost)

	app := &application{
		Bus:        bus,
		Auth:       auth.NewService(userRepo, tokens, hasher, bus, logger),
		Users:      user.NewService(userRepo, logger),
		Categories: category.NewService(categoryRepo, bus, logger),
		Expenses:   expense.NewService(expenseRepo, categoryRepo, bus, loc, logger),
	}

	base := transport.NewBaseHandler(logger, !cfg.IsProduction())
	authHandler := auth.NewHandler(base, app.Auth)

	routes := rest.Routes(rest.Handlers{
		Health:   rest.NewHealthHandler(base, pinger),
		Auth:     authHandler,
		User:     user.NewHandler(base, app.Users),
		Category: category.NewHandler(base, app.Categories),
		Expense:  expense.NewHandler(base, app.Expenses),
	})

	doc, err := rest.LoadDocument(ctx)
	if err != nil {
		return nil, err
	}
	if err := rest.VerifyRoutes(doc, routes); err != nil {
		return nil, fmt.Errorf("startup check: %w", err)
	}

	app.Router = rest.NewRouter(routes, rest.Options{
		Base:           base,
		AllowedOrigins: cfg.Server.Origins(),
		Gate:           authHandler.AuthMiddleware,
	})
	return app, nil
}
