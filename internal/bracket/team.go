package bracket

import (
	"time"

	"github.com/google/uuid"
)

// EventTeam is a pairing of two participants that can be reused by every
// tournament of the same event.
type EventTeam struct {
	ID        uuid.UUID `db:"id" json:"id"`
	EventID   uuid.UUID `db:"event_id" json:"event_id"`
	Name      string    `db:"name" json:"name"`
	Player1ID uuid.UUID `db:"player_1_id" json:"player_1_id"`
	Player2ID uuid.UUID `db:"player_2_id" json:"player_2_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// HasPlayers reports whether the team consists of exactly a and b, in any order.
func (t *EventTeam) HasPlayers(a, b uuid.UUID) bool {
	return (t.Player1ID == a && t.Player2ID == b) || (t.Player1ID == b && t.Player2ID == a)
}

type TournamentTeam struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	TournamentID uuid.UUID  `db:"tournament_id" json:"tournament_id"`
	EventTeamID  *uuid.UUID `db:"event_team_id" json:"event_team_id,omitempty"`
	Name         string     `db:"name" json:"name"`
	Seed         int        `db:"seed" json:"seed"`
	Player1ID    uuid.UUID  `db:"player_1_id" json:"player_1_id"`
	Player2ID    uuid.UUID  `db:"player_2_id" json:"player_2_id"`
}

func (t *TournamentTeam) Players() [2]uuid.UUID {
	return [2]uuid.UUID{t.Player1ID, t.Player2ID}
}
