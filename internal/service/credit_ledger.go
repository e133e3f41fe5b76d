package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/beerpong/internal/bracket"
	"github.com/AdamBeresnev/beerpong/internal/store"
	"github.com/AdamBeresnev/beerpong/internal/utils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ConsumptionLedger is the drink ledger the rewards are booked into. Calls
// take the caller's transaction so a rejected game operation leaves no
// consumption behind.
type ConsumptionLedger interface {
	CreditConsumption(ctx context.Context, tx *sqlx.Tx, playerID uuid.UUID, quantity int, attributionID uuid.UUID) ([]uuid.UUID, error)
	RevokeConsumption(ctx context.Context, tx *sqlx.Tx, recordIDs []uuid.UUID) error
}

type CreditLedger struct {
	store  *store.CreditStore
	ledger ConsumptionLedger
}

func NewCreditLedger(store *store.CreditStore, ledger ConsumptionLedger) *CreditLedger {
	return &CreditLedger{store: store, ledger: ledger}
}

type Settlement struct {
	Policy           bracket.CancellationPolicy `json:"policy"`
	Records          int                        `json:"records"`
	ConsumptionsKept int                        `json:"consumptions_kept"`
	ConsumptionsGone int                        `json:"consumptions_removed"`
	Stale            bool                       `json:"stale"`
}

// Grant books BeersPerPlayer beers for every player of a starting game. A game
// that already carries a grant is left alone.
func (l *CreditLedger) Grant(ctx context.Context, tx *sqlx.Tx, t *bracket.Tournament, g *bracket.Game, players []uuid.UUID, now time.Time) ([]bracket.CreditRecord, error) {
	if g.CreditedAt != nil {
		return nil, nil
	}

	records := make([]bracket.CreditRecord, 0, len(players))
	for _, p := range players {
		ids, err := l.ledger.CreditConsumption(ctx, tx, p, t.BeersPerPlayer, g.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to credit player %s: %w", p, err)
		}
		records = append(records, bracket.CreditRecord{
			ID:             uuid.New(),
			GameID:         g.ID,
			PlayerID:       p,
			Quantity:       t.BeersPerPlayer,
			CreatedAt:      now,
			ConsumptionIDs: ids,
		})
	}

	if err := l.store.CreateCreditRecordsTx(ctx, tx, records); err != nil {
		return nil, fmt.Errorf("failed to store credit records: %w", err)
	}

	g.CreditedAt = utils.Ptr(now)
	return records, nil
}

// Settle applies the tournament's cancellation policy to the active grant of
// a cancelled game and clears the grant marker so a restart grants again.
// Settling outside the time window is logged but not refused.
func (l *CreditLedger) Settle(ctx context.Context, tx *sqlx.Tx, t *bracket.Tournament, g *bracket.Game, now time.Time) (*Settlement, error) {
	if g.CreditedAt == nil {
		return nil, nil
	}

	records, err := l.store.ActiveCreditsTx(ctx, tx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load credit records: %w", err)
	}

	result := &Settlement{
		Policy:  t.CancellationPolicy,
		Records: len(records),
		Stale:   now.Sub(*g.CreditedAt) > t.TimeWindow(),
	}
	if result.Stale {
		slog.Warn("stale settlement",
			"tournament_id", t.ID,
			"game_id", g.ID,
			"credited_at", *g.CreditedAt,
			"window_minutes", t.TimeWindowMinutes,
			"policy", t.CancellationPolicy)
	}

	recordIDs := make([]uuid.UUID, 0, len(records))
	var consumptionIDs []uuid.UUID
	for _, r := range records {
		recordIDs = append(recordIDs, r.ID)
		consumptionIDs = append(consumptionIDs, r.ConsumptionIDs...)
	}

	switch t.CancellationPolicy {
	case bracket.RemoveBeers:
		if err := l.ledger.RevokeConsumption(ctx, tx, consumptionIDs); err != nil {
			return nil, fmt.Errorf("failed to revoke consumptions: %w", err)
		}
		if err := l.store.DeleteCreditRecordsTx(ctx, tx, recordIDs); err != nil {
			return nil, fmt.Errorf("failed to delete credit records: %w", err)
		}
		result.ConsumptionsGone = len(consumptionIDs)
	default:
		if err := l.store.SettleCreditRecordsTx(ctx, tx, recordIDs, now); err != nil {
			return nil, fmt.Errorf("failed to settle credit records: %w", err)
		}
		result.ConsumptionsKept = len(consumptionIDs)
	}

	g.CreditedAt = nil
	return result, nil
}
