package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Activity struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Kind         string     `db:"kind" json:"kind"`
	TournamentID uuid.UUID  `db:"tournament_id" json:"tournament_id"`
	GameID       *uuid.UUID `db:"game_id" json:"game_id,omitempty"`
	StatusBefore *string    `db:"status_before" json:"status_before,omitempty"`
	StatusAfter  string     `db:"status_after" json:"status_after"`
	Operator     *string    `db:"operator" json:"operator,omitempty"`
	Detail       *string    `db:"detail" json:"detail,omitempty"`
	OccurredAt   time.Time  `db:"occurred_at" json:"occurred_at"`
}

type ActivityStore struct {
	db *sqlx.DB
}

func NewActivityStore(db *sqlx.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

func (s *ActivityStore) CreateActivity(ctx context.Context, a *Activity) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO activity_log (id, kind, tournament_id, game_id, status_before, status_after, operator, detail, occurred_at)
		VALUES (:id, :kind, :tournament_id, :game_id, :status_before, :status_after, :operator, :detail, :occurred_at)`, a)
	return err
}

func (s *ActivityStore) ListActivity(ctx context.Context, tournamentID uuid.UUID) ([]Activity, error) {
	var rows []Activity
	err := s.db.SelectContext(ctx, &rows, "SELECT * FROM activity_log WHERE tournament_id = ? ORDER BY rowid ASC", tournamentID)
	return rows, err
}
