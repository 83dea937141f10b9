// cmd/catalogctl/main.go
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := runner.Command().Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("catalogctl: %v", err)
	}
}

// Command is the root catalogctl command.
func (r *Runner) Command() *cli.Command {
	return &cli.Command{
		Name:  "catalogctl",
		Usage: "Administer the movie catalog database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("CATALOG_CONFIG"),
			},
		},
		Commands: r.register(),
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range []func(*Runner) *cli.Command{
		migrateCommand, seedCommand, resetPasswordCommand, deleteUserCommand, movieInfoCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply or roll back schema migrations",
		Commands: []*cli.Command{
			{Name: "up", Usage: "Apply all pending migrations", Action: r.MigrateUp},
			{Name: "down", Usage: "Roll back the latest migration", Action: r.MigrateDown},
		},
	}
}

func seedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Import movies from OMDb",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "count", Usage: "Number of movies to import", Value: 50},
			&cli.IntFlag{Name: "pages", Usage: "Search pages to read per term", Value: 5},
			&cli.StringSliceFlag{Name: "term", Usage: "Search term (repeatable); defaults to a built-in list"},
		},
		Action: r.Seed,
	}
}

func resetPasswordCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "reset-password",
		Usage: "Issue a temporary password and force a change at next login",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Usage: "Account email", Required: true},
		},
		Action: r.ResetPassword,
	}
}

func deleteUserCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "delete-user",
		Usage: "Delete an account with its favorites and tokens",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Usage: "Account email", Required: true},
		},
		Action: r.DeleteUser,
	}
}

func movieInfoCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "movie-info",
		Usage: "Look up a movie over the internal gRPC API",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "id", Usage: "Movie id", Required: true},
			&cli.StringFlag{Name: "addr", Usage: "gRPC address; defaults to server.grpc_addr"},
		},
		Action: r.MovieInfo,
	}
}
