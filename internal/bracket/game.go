package bracket

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type GameStatus string

const (
	GamePending    GameStatus = "pending"
	GameInProgress GameStatus = "in_progress"
	GameCompleted  GameStatus = "completed"
)

type Round string

const (
	Quarterfinal Round = "quarterfinal"
	Semifinal    Round = "semifinal"
	Final        Round = "final"
)

// Rank orders rounds from the first played to the last.
func (r Round) Rank() int {
	switch r {
	case Quarterfinal:
		return 1
	case Semifinal:
		return 2
	case Final:
		return 3
	}
	return 0
}

type Game struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TournamentID uuid.UUID `db:"tournament_id" json:"tournament_id"`

	Round Round `db:"round" json:"round"`
	Order int   `db:"game_order" json:"order"`

	Team1ID *uuid.UUID `db:"team_1_id" json:"team_1_id,omitempty"`
	Team2ID *uuid.UUID `db:"team_2_id" json:"team_2_id,omitempty"`

	Status   GameStatus `db:"status" json:"status"`
	WinnerID *uuid.UUID `db:"winner_id" json:"winner_id,omitempty"`

	StartedAt       *time.Time `db:"started_at" json:"started_at,omitempty"`
	EndedAt         *time.Time `db:"ended_at" json:"ended_at,omitempty"`
	CreditedAt      *time.Time `db:"credited_at" json:"credited_at,omitempty"`
	DurationSeconds *int64     `db:"duration_seconds" json:"duration_seconds,omitempty"`

	// Where the winner goes; nil for the final
	NextGameID *uuid.UUID `db:"next_game_id" json:"next_game_id,omitempty"`
	NextSlot   *int       `db:"next_slot" json:"next_slot,omitempty"`
}

func (g *Game) Ready() bool {
	return g.Team1ID != nil && g.Team2ID != nil
}

func (g *Game) HasTeam(teamID uuid.UUID) bool {
	return (g.Team1ID != nil && *g.Team1ID == teamID) || (g.Team2ID != nil && *g.Team2ID == teamID)
}

func (g *Game) slot(n int) **uuid.UUID {
	if n == 1 {
		return &g.Team1ID
	}
	return &g.Team2ID
}

// Label is a short human-readable position such as "QF2" or "F".
func (g *Game) Label() string {
	switch g.Round {
	case Quarterfinal:
		return fmt.Sprintf("QF%d", g.Order)
	case Semifinal:
		return fmt.Sprintf("SF%d", g.Order)
	}
	return "F"
}
