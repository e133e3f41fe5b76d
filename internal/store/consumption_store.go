package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SourceTournament tags consumption rows created as tournament rewards.
const SourceTournament = "tournament"

type Consumption struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	ParticipantID uuid.UUID  `db:"participant_id" json:"participant_id"`
	Quantity      int        `db:"quantity" json:"quantity"`
	Source        string     `db:"source" json:"source"`
	AttributionID *uuid.UUID `db:"attribution_id" json:"attribution_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// ConsumptionStore is the drink ledger shared with the rest of the event
// application. Tournament rewards are written as one row per beer.
type ConsumptionStore struct {
	db *sqlx.DB
}

func NewConsumptionStore(db *sqlx.DB) *ConsumptionStore {
	return &ConsumptionStore{db: db}
}

func (s *ConsumptionStore) CreditConsumption(ctx context.Context, tx *sqlx.Tx, playerID uuid.UUID, quantity int, attributionID uuid.UUID) ([]uuid.UUID, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	now := time.Now().UTC()
	rows := make([]Consumption, 0, quantity)
	for i := 0; i < quantity; i++ {
		rows = append(rows, Consumption{
			ID:            uuid.New(),
			ParticipantID: playerID,
			Quantity:      1,
			Source:        SourceTournament,
			AttributionID: &attributionID,
			CreatedAt:     now,
		})
	}

	_, err := tx.NamedExecContext(ctx, `INSERT INTO consumptions (id, participant_id, quantity, source, attribution_id, created_at)
		VALUES (:id, :participant_id, :quantity, :source, :attribution_id, :created_at)`, rows)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (s *ConsumptionStore) RevokeConsumption(ctx context.Context, tx *sqlx.Tx, recordIDs []uuid.UUID) error {
	if len(recordIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM consumptions WHERE id IN (?)", recordIDs)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(query), args...)
	return err
}

func (s *ConsumptionStore) ListByAttribution(ctx context.Context, attributionID uuid.UUID) ([]Consumption, error) {
	var rows []Consumption
	err := s.db.SelectContext(ctx, &rows, "SELECT * FROM consumptions WHERE attribution_id = ? ORDER BY participant_id, created_at", attributionID)
	return rows, err
}

func (s *ConsumptionStore) CountForParticipant(ctx context.Context, participantID uuid.UUID) (int, error) {
	var total int
	err := s.db.GetContext(ctx, &total, "SELECT COALESCE(SUM(quantity), 0) FROM consumptions WHERE participant_id = ?", participantID)
	return total, err
}
