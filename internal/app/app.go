// Package app assembles the catalog's stores and services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"movie-catalog/internal/cache"
	"movie-catalog/internal/config"
	"movie-catalog/internal/service"
	"movie-catalog/internal/store"
	"movie-catalog/pkg/auth"

	"github.com/jmoiron/sqlx"
)

// App owns the database, the movie cache and every service built on them.
type App struct {
	Config *config.Config
	DB     *sqlx.DB
	Logger *slog.Logger

	Movies    *store.SQLMovieStore
	Users     *store.SQLUserStore
	Tokens    *store.SQLTokenStore
	Favorites *store.SQLFavoriteStore

	MovieService    *service.MovieService
	FavoriteService *service.FavoriteService
	SearchService   *service.SearchService
	AuthService     *service.AuthService

	closers []func() error
}

// New connects to the database (and Redis when enabled), applies pending
// migrations when configured to, and wires the services.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := store.Connect(ctx, cfg.Database.Driver, cfg.Database.URL, store.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime.Duration,
	}, logger)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, DB: db, Logger: logger, closers: []func() error{db.Close}}

	if cfg.Database.AutoMigrate {
		applied, err := store.Migrate(ctx, db)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		logger.InfoContext(ctx, "Database migrations applied", slog.Any("versions", applied))
	}

	if err := a.wire(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	var err error
	if a.Movies, err = store.NewSQLMovieStore(a.DB, a.Logger); err != nil {
		return err
	}
	if a.Users, err = store.NewSQLUserStore(a.DB, a.Logger); err != nil {
		return err
	}
	if a.Tokens, err = store.NewSQLTokenStore(a.DB, a.Logger); err != nil {
		return err
	}
	if a.Favorites, err = store.NewSQLFavoriteStore(a.DB, a.Logger); err != nil {
		return err
	}

	var movieCache cache.MovieCache = cache.NoopCache{}
	if a.Config.Redis.Enabled {
		var closeCache func() error
		movieCache, closeCache = cache.Connect(ctx, a.Config.Redis.Addr, a.Config.Redis.Password,
			a.Config.Redis.DB, a.Config.Redis.TTL.Duration, a.Logger)
		a.closers = append(a.closers, closeCache)
	}

	tokens, err := auth.NewTokenManager(a.Config.Auth.JWTSecret, a.Config.Auth.TokenTTL.Duration)
	if err != nil {
		return fmt.Errorf("failed to create token manager: %w", err)
	}

	pages := service.PageConfig{
		DefaultPerPage: a.Config.Catalog.DefaultPerPage,
		MaxPerPage:     a.Config.Catalog.MaxPerPage,
	}
	validate := service.NewValidator()
	a.MovieService = service.NewMovieService(a.Movies, a.Favorites, movieCache, validate, a.Logger)
	a.FavoriteService = service.NewFavoriteService(a.Favorites, movieCache, pages, a.Logger)
	a.SearchService = service.NewSearchService(a.Movies, a.Favorites, pages, a.Logger)
	a.AuthService = service.NewAuthService(a.Users, a.Tokens, movieCache, tokens, service.LogMailer{Logger: a.Logger},
		validate, a.Config.Server.PublicURL, a.Logger)
	return nil
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
