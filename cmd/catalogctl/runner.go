package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"movie-catalog/internal/app"
	"movie-catalog/internal/config"
	"movie-catalog/internal/domain"
	catalogrpc "movie-catalog/internal/grpc"
	"movie-catalog/internal/omdb"
	"movie-catalog/internal/service"
	"movie-catalog/internal/store"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v3"
)

// Runner holds the dependencies shared by every catalogctl command.
type Runner struct {
	term   *log.Logger
	logger *slog.Logger
	output io.Writer

	loadConfig func(path string) (*config.Config, error)
	// newCatalog builds the import source; tests swap in a fake.
	newCatalog func(cfg *config.Config, logger *slog.Logger) (service.ExternalCatalog, error)
}

type RunnerOpts struct {
	Logger     *log.Logger
	Output     io.Writer
	LoadConfig func(path string) (*config.Config, error)
	NewCatalog func(cfg *config.Config, logger *slog.Logger) (service.ExternalCatalog, error)
}

func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.Load
	}
	if opts.NewCatalog == nil {
		opts.NewCatalog = newOMDbCatalog
	}
	return &Runner{
		term:       opts.Logger,
		logger:     slog.New(opts.Logger),
		output:     opts.Output,
		loadConfig: opts.LoadConfig,
		newCatalog: opts.NewCatalog,
	}
}

func newOMDbCatalog(cfg *config.Config, logger *slog.Logger) (service.ExternalCatalog, error) {
	return omdb.NewClient(omdb.Options{
		APIKey:            cfg.OMDb.APIKey,
		BaseURL:           cfg.OMDb.BaseURL,
		RequestsPerSecond: cfg.OMDb.RequestsPerSecond,
		Timeout:           cfg.OMDb.Timeout.Duration,
	}, logger)
}

func (r *Runner) config(cmd *cli.Command) (*config.Config, error) {
	cfg, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		r.term.SetLevel(lvl)
	}
	return cfg, nil
}

// open builds the full service graph. Schema changes are left to "migrate".
func (r *Runner) open(ctx context.Context, cmd *cli.Command) (*app.App, error) {
	cfg, err := r.config(cmd)
	if err != nil {
		return nil, err
	}
	cfg.Database.AutoMigrate = false
	return app.New(ctx, cfg, r.logger)
}

func (r *Runner) connect(ctx context.Context, cmd *cli.Command) (*sqlx.DB, error) {
	cfg, err := r.config(cmd)
	if err != nil {
		return nil, err
	}
	return store.Connect(ctx, cfg.Database.Driver, cfg.Database.URL, store.PoolOptions{}, r.logger)
}

func (r *Runner) MigrateUp(ctx context.Context, cmd *cli.Command) error {
	db, err := r.connect(ctx, cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := store.Migrate(ctx, db)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Fprintln(r.output, "Database is up to date")
		return nil
	}
	for _, v := range applied {
		fmt.Fprintf(r.output, "Applied migration %d\n", v)
	}
	return nil
}

func (r *Runner) MigrateDown(ctx context.Context, cmd *cli.Command) error {
	db, err := r.connect(ctx, cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := store.Rollback(ctx, db)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.output, "Rolled back migration %d\n", version)
	return nil
}

func (r *Runner) Seed(ctx context.Context, cmd *cli.Command) error {
	a, err := r.open(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	source, err := r.newCatalog(a.Config, r.logger)
	if err != nil {
		return err
	}
	importer := service.NewImportService(source, a.MovieService, r.logger)
	summary, err := importer.Seed(ctx, service.SeedOptions{
		Count:        int(cmd.Int("count")),
		Terms:        cmd.StringSlice("term"),
		PagesPerTerm: int(cmd.Int("pages")),
	})
	if err != nil {
		return err
	}
	r.term.Info("Seeding finished", "seeded", summary.Seeded, "skipped", summary.Skipped,
		"duplicates", summary.Duplicates, "failed", summary.Failed)
	return r.writeJSON(summary)
}

func (r *Runner) ResetPassword(ctx context.Context, cmd *cli.Command) error {
	a, err := r.open(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := r.lookupUser(ctx, a, cmd.String("email"))
	if err != nil {
		return err
	}
	temp, err := a.AuthService.ResetPassword(ctx, user.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.output, "Temporary password for %s: %s\n", user.Email, temp)
	return nil
}

func (r *Runner) DeleteUser(ctx context.Context, cmd *cli.Command) error {
	a, err := r.open(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := r.lookupUser(ctx, a, cmd.String("email"))
	if err != nil {
		return err
	}
	if err := a.AuthService.DeleteUser(ctx, user.ID); err != nil {
		return err
	}
	fmt.Fprintf(r.output, "Deleted user %s (id %d)\n", user.Email, user.ID)
	return nil
}

func (r *Runner) lookupUser(ctx context.Context, a *app.App, email string) (*domain.User, error) {
	user, err := a.AuthService.LookupUser(ctx, email)
	if errors.Is(err, store.ErrUserNotFound) {
		return nil, fmt.Errorf("no user with email %s", email)
	}
	return user, err
}

func (r *Runner) MovieInfo(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	if addr == "" {
		cfg, err := r.config(cmd)
		if err != nil {
			return err
		}
		addr = cfg.Server.GRPCAddr
	}
	client, err := catalogrpc.Dial(addr, r.logger)
	if err != nil {
		return err
	}
	defer client.Close()

	info, err := client.GetMovieInfo(ctx, cmd.Int64("id"))
	if err != nil {
		return err
	}
	return r.writeJSON(info)
}

func (r *Runner) writeJSON(v any) error {
	enc := json.NewEncoder(r.output)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
