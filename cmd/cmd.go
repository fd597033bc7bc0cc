// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/marquee/internal/client"
	"github.com/urfave/cli/v3"
)

// remoteFlags are shared by commands that talk to a running server.
func remoteFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "url",
			Usage:   "Base URL of the marquee server",
			Value:   client.DefaultBaseURL,
			Sources: cli.EnvVars("MARQUEE_URL"),
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "Session token sent as a bearer token",
			Sources: cli.EnvVars("MARQUEE_TOKEN"),
		},
	}
}

// setupCommand handles first-run setup of the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write an example config file to the --config path",
				Action: r.SetupConfig,
			},
		},
	}
}

// migrateCommand handles schema migrations.
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply, roll back or inspect schema migrations",
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Apply all pending migrations",
				Action: r.MigrateUp,
			},
			{
				Name:   "down",
				Usage:  "Roll back the most recent migration",
				Action: r.MigrateDown,
			},
			{
				Name:   "status",
				Usage:  "List migrations and when they were applied",
				Action: r.MigrateStatus,
			},
		},
	}
}

// serveCommand runs the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Override server.host",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Override server.port",
			},
		},
		Action: r.Serve,
	}
}

// usersCommand manages accounts directly against the database.
func usersCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage user accounts",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create an email/password account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Display name", Required: true},
					&cli.StringFlag{Name: "email", Usage: "Email address", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Password (at least 8 characters)", Required: true},
					&cli.BoolFlag{Name: "admin", Usage: "Grant admin rights"},
				},
				Action: r.UsersCreate,
			},
			{
				Name:  "promote",
				Usage: "Grant or revoke admin rights",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Email address", Required: true},
					&cli.BoolFlag{Name: "revoke", Usage: "Revoke admin rights instead"},
				},
				Action: r.UsersPromote,
			},
			{
				Name:  "list",
				Usage: "List accounts",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.UsersList,
			},
		},
	}
}

// exportCommand writes a watchlist to a file.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export one or all watchlists as csv, markdown, txt or json",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "user",
				Aliases:  []string{"u"},
				Usage:    "Email of the watchlist owner",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "watchlist",
				Aliases: []string{"w"},
				Usage:   "Watchlist ID",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Export every watchlist the user owns into --output with a manifest",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent writers for --all",
				Value: 5,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "csv, markdown, txt or json",
				Value:   "csv",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file, or directory for markdown (defaults to the working directory)",
			},
		},
		Action: r.Export,
	}
}

// authCommand handles sessions against a running server.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in to a running server",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Exchange email and password for a session token",
				Flags: append(remoteFlags(),
					&cli.StringFlag{Name: "email", Usage: "Email address", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Password", Required: true, Sources: cli.EnvVars("MARQUEE_PASSWORD")},
					&cli.StringFlag{Name: "save", Usage: "Write the token to this file"},
				),
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check server health (calls /health)",
				Flags:  remoteFlags(),
				Action: r.AuthStatus,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to a running server",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "GET a path and print the response",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: append(remoteFlags(),
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output", Value: true},
				),
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "POST a JSON body to a path and print the response",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Flags: append(remoteFlags(),
					&cli.StringFlag{Name: "data", Aliases: []string{"d"}, Usage: "JSON body to send", Required: true},
				),
				Action: r.APIPost,
			},
		},
	}
}

// cacheCommand inspects the optional rating cache.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and invalidate the rating cache",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Check that the configured cache is reachable",
				Action: r.CacheStatus,
			},
			{
				Name:   "invalidate",
				Usage:  "Drop every cached leaderboard page",
				Action: r.CacheInvalidate,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive watchlist management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse and reorder watchlists in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "email",
				Usage:    "Email of the account to open",
				Required: true,
			},
		},
		Action: r.TUI,
	}
}
