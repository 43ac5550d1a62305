// Package devseed fills a development database with a few clubs and upcoming
// events. Every step is idempotent: existing clubs (by name) and events (by
// club and title) are left alone.
package devseed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/campushub/eventhub/internal/core"
	"github.com/campushub/eventhub/internal/data"
	domainauth "github.com/campushub/eventhub/internal/domain/auth"
	"github.com/campushub/eventhub/internal/domain/model"
	"github.com/campushub/eventhub/internal/service"
)

// Services bundles the dependencies needed for development seeding.
type Services struct {
	Clubs  core.ClubRepository
	Events core.EventRepository
	Users  *service.UserService
	// Now anchors event dates; nil uses time.Now.
	Now func() time.Time
}

// NewServices constructs the seeding dependencies over db.
func NewServices(db *sql.DB) Services {
	clubs := data.NewClubRepo(db)
	return Services{
		Clubs:  clubs,
		Events: data.NewEventRepo(db),
		Users: service.NewUserService(service.UserServiceOptions{
			Repo:  data.NewUserRepo(db),
			Clubs: clubs,
		}),
	}
}

// Options tune what Run seeds beyond clubs and events.
type Options struct {
	// AdminEmail, when set, is created if missing and promoted to ADMIN.
	AdminEmail string
	// CoordinatorEmail, when set, becomes COORDINATOR of the first seeded club.
	CoordinatorEmail string
}

// Result counts what Run created.
type Result struct {
	Clubs  int
	Events int
}

type clubSeed struct {
	name        string
	description string
	contact     string
	events      []eventSeed
}

type eventSeed struct {
	title       string
	description string
	location    string
	// in is the offset from the seeding time.
	in time.Duration
}

func defaultClubSeeds() []clubSeed {
	day := 24 * time.Hour
	return []clubSeed{
		{
			name:        "Coding Club",
			description: "Weekly hack nights, contest prep and project showcases.",
			contact:     "coding@students.college.edu",
			events: []eventSeed{
				{"Hack Night", "Bring a laptop and an idea.", "Lab 3", 7*day + 18*time.Hour},
				{"Intro to Go", "A hands-on workshop for beginners.", "Seminar Hall B", 14*day + 16*time.Hour},
			},
		},
		{
			name:        "Drama Society",
			description: "Stage productions, improv and open auditions.",
			contact:     "drama@students.college.edu",
			events: []eventSeed{
				{"Open Auditions", "Auditions for the spring production.", "Main Auditorium", 10*day + 17*time.Hour},
			},
		},
		{
			name:        "Photography Club",
			description: "Photo walks, editing sessions and the annual exhibition.",
			contact:     "photo@students.college.edu",
			events: []eventSeed{
				{"Campus Photo Walk", "Golden-hour walk around the old campus.", "Front Gate", 5*day + 17*time.Hour},
			},
		},
	}
}

// Run executes the development seeding workflow.
func Run(ctx context.Context, svcs Services, opts Options, logger *slog.Logger) (Result, error) {
	if svcs.Clubs == nil || svcs.Events == nil {
		return Result{}, errors.New("devseed: club and event repositories are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now
	if svcs.Now != nil {
		now = svcs.Now
	}
	base := now().UTC().Truncate(24 * time.Hour)

	existing, err := svcs.Clubs.List(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list clubs: %w", err)
	}
	byName := make(map[string]*model.Club, len(existing))
	for _, c := range existing {
		byName[strings.ToLower(c.Name)] = c
	}

	var res Result
	var firstClub string
	for _, seed := range defaultClubSeeds() {
		club, created, clubErr := ensureClub(ctx, svcs.Clubs, byName, seed)
		if clubErr != nil {
			return res, clubErr
		}
		if created {
			res.Clubs++
			logger.InfoContext(ctx, "seeded club", "name", club.Name, "id", club.ID)
		}
		if firstClub == "" {
			firstClub = club.ID
		}

		n, evErr := ensureEvents(ctx, svcs.Events, club, seed.events, base)
		if evErr != nil {
			return res, evErr
		}
		res.Events += n
	}

	if err := promote(ctx, svcs.Users, opts.AdminEmail, domainauth.RoleAdmin, nil); err != nil {
		return res, err
	}
	if err := promote(ctx, svcs.Users, opts.CoordinatorEmail, domainauth.RoleCoordinator, &firstClub); err != nil {
		return res, err
	}

	logger.InfoContext(ctx, "development seed complete", "clubs_created", res.Clubs, "events_created", res.Events)
	return res, nil
}

func ensureClub(
	ctx context.Context,
	repo core.ClubRepository,
	byName map[string]*model.Club,
	seed clubSeed,
) (*model.Club, bool, error) {
	if c, ok := byName[strings.ToLower(seed.name)]; ok {
		return c, false, nil
	}
	req := &model.CreateClubRequest{
		Name:        seed.name,
		Description: stringPtr(seed.description),
		Contact:     stringPtr(seed.contact),
	}
	if err := req.Validate(); err != nil {
		return nil, false, fmt.Errorf("club %q: %w", seed.name, err)
	}
	c, err := repo.Create(ctx, req)
	if err != nil {
		return nil, false, fmt.Errorf("create club %q: %w", seed.name, err)
	}
	byName[strings.ToLower(c.Name)] = c
	return c, true, nil
}

func ensureEvents(
	ctx context.Context,
	repo core.EventRepository,
	club *model.Club,
	seeds []eventSeed,
	base time.Time,
) (int, error) {
	clubID := club.ID
	current, err := repo.List(ctx, model.EventsListOptions{ClubID: &clubID, Limit: 500})
	if err != nil {
		return 0, fmt.Errorf("list events for club %q: %w", club.Name, err)
	}
	titles := make(map[string]bool, len(current))
	for _, e := range current {
		titles[strings.ToLower(e.Title)] = true
	}

	created := 0
	for _, s := range seeds {
		if titles[strings.ToLower(s.title)] {
			continue
		}
		if _, err := repo.Create(ctx, core.CreateEventParams{
			ClubID:      club.ID,
			Title:       s.title,
			Description: s.description,
			Date:        base.Add(s.in),
			Location:    s.location,
		}); err != nil {
			return created, fmt.Errorf("create event %q: %w", s.title, err)
		}
		created++
	}
	return created, nil
}

func promote(ctx context.Context, users *service.UserService, email string, role domainauth.Role, clubID *string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	if users == nil {
		return errors.New("devseed: user service is required to assign roles")
	}
	if _, err := users.EnsureUser(ctx, domainauth.Identity{Email: email}); err != nil {
		return fmt.Errorf("ensure user %s: %w", email, err)
	}
	if _, err := users.SetRole(ctx, &model.SetRoleRequest{Email: email, Role: role, ClubID: clubID}); err != nil {
		return fmt.Errorf("set role for %s: %w", email, err)
	}
	return nil
}

func stringPtr(s string) *string { return &s }
