package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/campushub/eventhub/internal/bootstrap"
	"github.com/campushub/eventhub/internal/data"
	"github.com/campushub/eventhub/internal/devseed"
	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/domain/model"
	"github.com/campushub/eventhub/internal/service"
)

type migrateOptions struct {
	Timeout time.Duration
}

type seedOptions struct {
	Timeout     time.Duration
	AllowRemote bool
	Seed        devseed.Options
}

type setRoleOptions struct {
	Timeout time.Duration
	Request model.SetRoleRequest
}

type listUsersOptions struct {
	Timeout time.Duration
	List    model.UsersListOptions
}

type remindOptions struct {
	Timeout time.Duration
	EventID string
}

func newFlagSet(name string) (*flag.FlagSet, *time.Duration) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	timeout := fs.Duration("timeout", defaultCommandTimeout, "Maximum duration for the command")
	return fs, timeout
}

func checkTimeout(d time.Duration) error {
	if d <= 0 {
		return errors.New("--timeout must be greater than zero")
	}
	return nil
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs, timeout := newFlagSet("migrate")
	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if err := checkTimeout(*timeout); err != nil {
		return migrateOptions{}, err
	}
	return migrateOptions{Timeout: *timeout}, nil
}

func parseSeedFlags(args []string) (seedOptions, error) {
	fs, timeout := newFlagSet("seed")
	var opts seedOptions
	fs.BoolVar(&opts.AllowRemote, "allow-remote", false, "Permit running against database hosts that do not look local")
	fs.StringVar(&opts.Seed.AdminEmail, "admin", "", "Create this user if needed and make them ADMIN")
	fs.StringVar(&opts.Seed.CoordinatorEmail, "coordinator", "", "Make this user COORDINATOR of the first seeded club")
	if err := fs.Parse(args); err != nil {
		return seedOptions{}, err
	}
	if err := checkTimeout(*timeout); err != nil {
		return seedOptions{}, err
	}
	opts.Timeout = *timeout
	return opts, nil
}

func parseSetRoleFlags(args []string) (setRoleOptions, error) {
	fs, timeout := newFlagSet("set-role")
	if err := fs.Parse(args); err != nil {
		return setRoleOptions{}, err
	}
	if err := checkTimeout(*timeout); err != nil {
		return setRoleOptions{}, err
	}
	rest := fs.Args()
	if len(rest) < 2 || len(rest) > 3 {
		return setRoleOptions{}, errors.New("usage: set-role EMAIL ROLE [CLUB_ID]")
	}
	role, err := domainauth.ParseRole(rest[1])
	if err != nil {
		return setRoleOptions{}, err
	}
	opts := setRoleOptions{
		Timeout: *timeout,
		Request: model.SetRoleRequest{Email: rest[0], Role: role},
	}
	if len(rest) == 3 {
		club := rest[2]
		opts.Request.ClubID = &club
	}
	if err := opts.Request.Validate(); err != nil {
		return setRoleOptions{}, err
	}
	return opts, nil
}

func parseListUsersFlags(args []string) (listUsersOptions, error) {
	fs, timeout := newFlagSet("list-users")
	var (
		role string
		opts listUsersOptions
	)
	fs.StringVar(&role, "role", "", "Only list users with this role")
	fs.IntVar(&opts.List.Limit, "limit", 50, "Maximum rows to print")
	fs.IntVar(&opts.List.Offset, "offset", 0, "Rows to skip")
	if err := fs.Parse(args); err != nil {
		return listUsersOptions{}, err
	}
	if err := checkTimeout(*timeout); err != nil {
		return listUsersOptions{}, err
	}
	if opts.List.Limit <= 0 || opts.List.Offset < 0 {
		return listUsersOptions{}, errors.New("--limit must be positive and --offset non-negative")
	}
	if role != "" {
		r, err := domainauth.ParseRole(role)
		if err != nil {
			return listUsersOptions{}, err
		}
		opts.List.Role = &r
	}
	opts.Timeout = *timeout
	return opts, nil
}

func parseRemindFlags(args []string) (remindOptions, error) {
	fs, timeout := newFlagSet("remind")
	if err := fs.Parse(args); err != nil {
		return remindOptions{}, err
	}
	if err := checkTimeout(*timeout); err != nil {
		return remindOptions{}, err
	}
	if fs.NArg() != 1 || strings.TrimSpace(fs.Arg(0)) == "" {
		return remindOptions{}, errors.New("usage: remind EVENT_ID")
	}
	return remindOptions{Timeout: *timeout, EventID: strings.TrimSpace(fs.Arg(0))}, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		cmdCtx.Logger.InfoContext(ctx, "running database migrations")
		return bootstrap.RunMigrations(ctx, db, cmdCtx.Logger)
	})
}

func runSeed(cmdCtx *commandContext, args []string) error {
	opts, err := parseSeedFlags(args)
	if err != nil {
		return err
	}
	if guardErr := guardRemoteHost(cmdCtx, opts.AllowRemote, "seed development data on the configured database"); guardErr != nil {
		return guardErr
	}
	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		if migrateErr := bootstrap.RunMigrations(ctx, db, cmdCtx.Logger); migrateErr != nil {
			return migrateErr
		}
		res, seedErr := devseed.Run(ctx, devseed.NewServices(db), opts.Seed, cmdCtx.Logger)
		if seedErr != nil {
			return fmt.Errorf("seed data: %w", seedErr)
		}
		return writef(cmdCtx.Out, "Seeded %d clubs and %d events\n", res.Clubs, res.Events)
	})
}

func newUserService(db *sql.DB) *service.UserService {
	return service.NewUserService(service.UserServiceOptions{
		Repo:  data.NewUserRepo(db),
		Clubs: data.NewClubRepo(db),
	})
}

func runSetRole(cmdCtx *commandContext, args []string) error {
	opts, err := parseSetRoleFlags(args)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		return setRole(ctx, cmdCtx.Out, newUserService(db), opts.Request)
	})
}

// setRole assigns the role. The user must already have signed in once.
func setRole(ctx context.Context, w io.Writer, users *service.UserService, req model.SetRoleRequest) error {
	u, err := users.SetRole(ctx, &req)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return fmt.Errorf("no user with email %s; they must sign in once first", req.Email)
		}
		return err
	}
	club := "-"
	if u.ClubID != nil {
		club = *u.ClubID
	}
	return writef(w, "%s is now %s (club %s)\n", u.Email, u.Role, club)
}

func runListUsers(cmdCtx *commandContext, args []string) error {
	opts, err := parseListUsersFlags(args)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		users, listErr := newUserService(db).List(ctx, opts.List)
		if listErr != nil {
			return listErr
		}
		return printUsers(cmdCtx.Out, users)
	})
}

func printUsers(w io.Writer, users []*model.User) error {
	if len(users) == 0 {
		return writef(w, "(no users found)\n")
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if err := writef(tw, "EMAIL\tNAME\tROLE\tPROFILE\tCLUB\n"); err != nil {
		return err
	}
	for _, u := range users {
		profile := "incomplete"
		if u.IsProfileComplete {
			profile = "complete"
		}
		club := "-"
		if u.ClubID != nil {
			club = *u.ClubID
		}
		if err := writef(tw, "%s\t%s\t%s\t%s\t%s\n", u.Email, u.DisplayName(), u.Role, profile, club); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func runRemind(cmdCtx *commandContext, args []string) error {
	opts, err := parseRemindFlags(args)
	if err != nil {
		return err
	}
	return withDatabase(cmdCtx, opts.Timeout, func(ctx context.Context, db *sql.DB) error {
		client, redisErr := connectOptionalRedis(ctx, cmdCtx)
		if redisErr != nil {
			return redisErr
		}
		if client != nil {
			defer func() {
				if cerr := client.Close(); cerr != nil {
					cmdCtx.Logger.Warn("redis close failed", "error", cerr)
				}
			}()
		}

		mail, mailErr := bootstrap.BuildMailing(cmdCtx.Config.Notify, client, cmdCtx.Logger)
		if mailErr != nil {
			return mailErr
		}
		registrations, svcErr := service.NewRegistrationService(service.RegistrationServiceOptions{
			Registrations: data.NewRegistrationRepo(db),
			Events:        data.NewEventRepo(db),
			Users:         data.NewUserRepo(db),
			Notifier:      mail.Notifier,
			Logger:        cmdCtx.Logger,
		})
		if svcErr != nil {
			return svcErr
		}

		remindErr := remind(ctx, cmdCtx.Out, registrations, opts.EventID)
		// Direct sends must finish before the process exits.
		mail.Wait()
		return remindErr
	})
}

func remind(ctx context.Context, w io.Writer, registrations *service.RegistrationService, eventID string) error {
	n, err := registrations.RemindAttendees(ctx, eventID)
	if err != nil {
		if errors.Is(err, model.ErrEventNotFound) {
			return fmt.Errorf("event %s not found", eventID)
		}
		return err
	}
	return writef(w, "Queued %d reminder(s) for event %s\n", n, eventID)
}
