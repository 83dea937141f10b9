// cmd/catalogservice/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpAPI "movie-catalog/internal/api"
	"movie-catalog/internal/app"
	"movie-catalog/internal/config"
	"movie-catalog/internal/graphql"
	grpcServer "movie-catalog/internal/grpc"

	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "catalogservice",
		Usage: "serve the movie catalog over HTTP (REST, GraphQL) and gRPC",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a TOML config file",
				Value:   "config.toml",
				Sources: cli.EnvVars("CATALOG_CONFIG"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(ctx, cmd.String("config"))
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("catalogservice exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("Closing database and cache connections")
		if err := a.Close(); err != nil {
			logger.Error("Failed to close resources", slog.String("error", err.Error()))
		}
	}()

	schema, err := graphql.NewSchema(a.SearchService, a.MovieService)
	if err != nil {
		return err
	}

	// --- gRPC ---
	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC on %s: %w", cfg.Server.GRPCAddr, err)
	}
	grpcSrv := grpcServer.NewGRPCServer(grpcServer.NewServer(a.MovieService, logger), logger)
	go func() {
		logger.Info("gRPC server starting", slog.String("addr", cfg.Server.GRPCAddr))
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("gRPC server Serve() failed", slog.String("error", err.Error()))
		}
	}()

	// --- HTTP ---
	handler := httpAPI.NewHandler(a.MovieService, a.FavoriteService, a.SearchService, a.AuthService, logger)
	httpSrv := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      httpAPI.NewRouter(handler, graphql.NewHandler(schema, logger)),
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
		IdleTimeout:  cfg.Server.IdleTimeout.Duration,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", slog.String("addr", cfg.Server.HTTPAddr), slog.String("version", httpAPI.Version))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("Shutting down", slog.String("signal", sig.String()))
	case err := <-serveErr:
		logger.Error("HTTP server ListenAndServe() failed", slog.String("error", err.Error()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	grpcSrv.GracefulStop()
	logger.Info("gRPC server gracefully stopped")
	return nil
}
