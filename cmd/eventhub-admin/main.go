// Command eventhub-admin runs one-off maintenance tasks against the event hub
// database: migrations, development seeding, out-of-band role assignment and
// event reminders.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/campushub/eventhub/config"
	"github.com/campushub/eventhub/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	usage       string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Out    io.Writer
}

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
		Out:    os.Stdout,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"migrate": {
			name:        "migrate",
			usage:       "migrate [--timeout 5m]",
			description: "Run database migrations",
			run:         runMigrations,
		},
		"seed": {
			name:        "seed",
			usage:       "seed [--admin EMAIL] [--coordinator EMAIL] [--allow-remote]",
			description: "Run migrations and seed development clubs and events",
			run:         runSeed,
		},
		"set-role": {
			name:        "set-role",
			usage:       "set-role EMAIL STUDENT|COORDINATOR|ADMIN [CLUB_ID]",
			description: "Assign a role; coordinators need a club id",
			run:         runSetRole,
		},
		"list-users": {
			name:        "list-users",
			usage:       "list-users [--role ROLE] [--limit 50] [--offset 0]",
			description: "List users in the directory",
			run:         runListUsers,
		},
		"remind": {
			name:        "remind",
			usage:       "remind EVENT_ID",
			description: "Email a reminder to every registered attendee of an event",
			run:         runRemind,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: eventhub-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := cmds[name]
		if err := writef(w, "  %-64s %s\n", c.usage, c.description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
