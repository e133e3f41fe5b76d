package store

import (
	"context"
	"time"

	"github.com/AdamBeresnev/beerpong/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CreditStore struct {
	db *sqlx.DB
}

type creditLink struct {
	CreditRecordID uuid.UUID `db:"credit_record_id"`
	ConsumptionID  uuid.UUID `db:"consumption_id"`
}

func NewCreditStore(db *sqlx.DB) *CreditStore {
	return &CreditStore{db: db}
}

func (s *CreditStore) CreateCreditRecordsTx(ctx context.Context, tx *sqlx.Tx, records []bracket.CreditRecord) error {
	if len(records) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO credit_records (id, game_id, player_id, quantity, created_at, settled_at)
		VALUES (:id, :game_id, :player_id, :quantity, :created_at, :settled_at)`, records)
	if err != nil {
		return err
	}

	var links []creditLink
	for _, r := range records {
		for _, cid := range r.ConsumptionIDs {
			links = append(links, creditLink{CreditRecordID: r.ID, ConsumptionID: cid})
		}
	}
	if len(links) == 0 {
		return nil
	}
	_, err = tx.NamedExecContext(ctx, `INSERT INTO credit_record_consumptions (credit_record_id, consumption_id)
		VALUES (:credit_record_id, :consumption_id)`, links)
	return err
}

func (s *CreditStore) ActiveCreditsTx(ctx context.Context, tx *sqlx.Tx, gameID uuid.UUID) ([]bracket.CreditRecord, error) {
	return listCredits(ctx, tx, "SELECT * FROM credit_records WHERE game_id = ? AND settled_at IS NULL ORDER BY created_at, player_id", gameID)
}

// ListGameCredits returns every credit record of a game, settled ones included.
func (s *CreditStore) ListGameCredits(ctx context.Context, gameID uuid.UUID) ([]bracket.CreditRecord, error) {
	return listCredits(ctx, s.db, "SELECT * FROM credit_records WHERE game_id = ? ORDER BY created_at, player_id", gameID)
}

func (s *CreditStore) ListTournamentCredits(ctx context.Context, tournamentID uuid.UUID) ([]bracket.CreditRecord, error) {
	return listCredits(ctx, s.db, `SELECT cr.* FROM credit_records cr
		JOIN games g ON g.id = cr.game_id
		WHERE g.tournament_id = ?
		ORDER BY cr.created_at, cr.player_id`, tournamentID)
}

func listCredits(ctx context.Context, q sqlx.QueryerContext, query string, args ...any) ([]bracket.CreditRecord, error) {
	var records []bracket.CreditRecord
	if err := sqlx.SelectContext(ctx, q, &records, query, args...); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return records, nil
	}

	ids := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	inQuery, inArgs, err := sqlx.In("SELECT * FROM credit_record_consumptions WHERE credit_record_id IN (?) ORDER BY consumption_id", ids)
	if err != nil {
		return nil, err
	}

	var links []creditLink
	if err := sqlx.SelectContext(ctx, q, &links, sqlx.Rebind(sqlx.QUESTION, inQuery), inArgs...); err != nil {
		return nil, err
	}

	byRecord := make(map[uuid.UUID][]uuid.UUID, len(records))
	for _, l := range links {
		byRecord[l.CreditRecordID] = append(byRecord[l.CreditRecordID], l.ConsumptionID)
	}
	for i := range records {
		records[i].ConsumptionIDs = byRecord[records[i].ID]
	}
	return records, nil
}

func (s *CreditStore) DeleteCreditRecordsTx(ctx context.Context, tx *sqlx.Tx, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM credit_records WHERE id IN (?)", ids)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(query), args...)
	return err
}

func (s *CreditStore) SettleCreditRecordsTx(ctx context.Context, tx *sqlx.Tx, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("UPDATE credit_records SET settled_at = ? WHERE id IN (?)", at, ids)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, tx.Rebind(query), args...)
	return err
}
