package store

import (
	"context"

	"github.com/AdamBeresnev/beerpong/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TeamStore struct {
	db *sqlx.DB
}

const (
	getEventTeamQuery          = "SELECT * FROM event_teams WHERE id = ?"
	getEventTeamByPlayersQuery = `
		SELECT * FROM event_teams
		WHERE event_id = ?
		AND ((player_1_id = ? AND player_2_id = ?) OR (player_1_id = ? AND player_2_id = ?))
		ORDER BY created_at ASC
		LIMIT 1
	`
	createEventTeamQuery = `
		INSERT INTO event_teams (id, event_id, name, player_1_id, player_2_id, created_at) VALUES
		(:id, :event_id, :name, :player_1_id, :player_2_id, :created_at)
	`
	// Teams of unfinished tournaments in the event that contain either player
	getLockedTeamsQuery = `
		SELECT tt.* FROM tournament_teams tt
		JOIN tournaments t ON t.id = tt.tournament_id
		WHERE t.event_id = ?
		AND t.status <> 'completed'
		AND (tt.player_1_id IN (?, ?) OR tt.player_2_id IN (?, ?))
	`
)

func NewTeamStore(db *sqlx.DB) *TeamStore {
	return &TeamStore{db: db}
}

func (s *TeamStore) GetEventTeamTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.EventTeam, error) {
	var team bracket.EventTeam
	if err := tx.GetContext(ctx, &team, getEventTeamQuery, id); err != nil {
		return nil, notFound(err, "event team %s", id)
	}
	return &team, nil
}

// FindEventTeamByPlayersTx returns nil without error when the pair has never been registered.
func (s *TeamStore) FindEventTeamByPlayersTx(ctx context.Context, tx *sqlx.Tx, eventID, a, b uuid.UUID) (*bracket.EventTeam, error) {
	var teams []bracket.EventTeam
	if err := tx.SelectContext(ctx, &teams, getEventTeamByPlayersQuery, eventID, a, b, b, a); err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, nil
	}
	return &teams[0], nil
}

func (s *TeamStore) CreateEventTeamTx(ctx context.Context, tx *sqlx.Tx, team *bracket.EventTeam) error {
	_, err := tx.NamedExecContext(ctx, createEventTeamQuery, team)
	return err
}

func (s *TeamStore) LockedTeamsTx(ctx context.Context, tx *sqlx.Tx, eventID, a, b uuid.UUID) ([]bracket.TournamentTeam, error) {
	var teams []bracket.TournamentTeam
	err := tx.SelectContext(ctx, &teams, getLockedTeamsQuery, eventID, a, b, a, b)
	return teams, err
}

func (s *TeamStore) ListEventTeams(ctx context.Context, eventID uuid.UUID) ([]bracket.EventTeam, error) {
	var teams []bracket.EventTeam
	err := s.db.SelectContext(ctx, &teams, "SELECT * FROM event_teams WHERE event_id = ? ORDER BY created_at ASC", eventID)
	return teams, err
}
