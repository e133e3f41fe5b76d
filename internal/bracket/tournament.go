package bracket

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentDraft     TournamentStatus = "draft"
	TournamentActive    TournamentStatus = "active"
	TournamentCompleted TournamentStatus = "completed"
)

type CancellationPolicy string

const (
	KeepBeers   CancellationPolicy = "keep_beers"
	RemoveBeers CancellationPolicy = "remove_beers"
)

// Config is the per-tournament reward and undo configuration.
type Config struct {
	BeersPerPlayer     int                `db:"beers_per_player" json:"beers_per_player"`
	TimeWindowMinutes  int                `db:"time_window_minutes" json:"time_window_minutes"`
	UndoWindowMinutes  int                `db:"undo_window_minutes" json:"undo_window_minutes"`
	CancellationPolicy CancellationPolicy `db:"cancellation_policy" json:"cancellation_policy"`
}

func (c Config) Validate() error {
	if c.BeersPerPlayer < 1 {
		return fmt.Errorf("%w: beers per player must be at least 1, got %d", ErrValidation, c.BeersPerPlayer)
	}
	if c.TimeWindowMinutes < 1 {
		return fmt.Errorf("%w: time window must be at least 1 minute, got %d", ErrValidation, c.TimeWindowMinutes)
	}
	if c.UndoWindowMinutes < 1 {
		return fmt.Errorf("%w: undo window must be at least 1 minute, got %d", ErrValidation, c.UndoWindowMinutes)
	}
	switch c.CancellationPolicy {
	case KeepBeers, RemoveBeers:
	default:
		return fmt.Errorf("%w: unknown cancellation policy %q", ErrValidation, c.CancellationPolicy)
	}
	return nil
}

func (c Config) TimeWindow() time.Duration {
	return time.Duration(c.TimeWindowMinutes) * time.Minute
}

func (c Config) UndoWindow() time.Duration {
	return time.Duration(c.UndoWindowMinutes) * time.Minute
}

type Tournament struct {
	ID      uuid.UUID        `db:"id" json:"id"`
	EventID uuid.UUID        `db:"event_id" json:"event_id"`
	Name    string           `db:"name" json:"name"`
	Slug    string           `db:"slug" json:"slug"`
	Status  TournamentStatus `db:"status" json:"status"`
	Config

	StartedAt   *time.Time `db:"started_at" json:"started_at,omitempty"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// IsFinished reports whether the tournament no longer locks its players into their teams.
func (t *Tournament) IsFinished() bool {
	return t.Status == TournamentCompleted
}
