package store

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/beerpong/internal/bracket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreditAndRevokeConsumption(t *testing.T) {
	database := setupTestDB(t)
	consumptions := NewConsumptionStore(database)
	ctx := context.Background()

	_, players := seedEvent(t, database, 2)
	gameID := uuid.New()

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	ids, err := consumptions.CreditConsumption(ctx, tx, players[0], 3, gameID)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	_, err = consumptions.CreditConsumption(ctx, tx, players[1], 1, gameID)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	rows, err := consumptions.ListByAttribution(ctx, gameID)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	for _, r := range rows {
		assert.Equal(t, 1, r.Quantity)
		assert.Equal(t, SourceTournament, r.Source)
		assert.Equal(t, gameID, *r.AttributionID)
	}

	total, err := consumptions.CountForParticipant(ctx, players[0])
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	tx, err = database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, consumptions.RevokeConsumption(ctx, tx, ids[:2]))
	require.NoError(t, consumptions.RevokeConsumption(ctx, tx, nil))
	require.NoError(t, tx.Commit())

	total, err = consumptions.CountForParticipant(ctx, players[0])
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestCreditConsumptionRejectsZero(t *testing.T) {
	database := setupTestDB(t)
	consumptions := NewConsumptionStore(database)
	ctx := context.Background()
	_, players := seedEvent(t, database, 1)

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = consumptions.CreditConsumption(ctx, tx, players[0], 0, uuid.New())
	assert.Error(t, err)
}

func TestCreditRecords(t *testing.T) {
	database := setupTestDB(t)
	credits := NewCreditStore(database)
	consumptions := NewConsumptionStore(database)
	tournaments := NewTournamentStore(database)
	ctx := context.Background()

	tournament, teams := seedBracket(t, database)
	games, err := tournaments.GetGames(ctx, tournament.ID)
	require.NoError(t, err)
	game := games[0]
	now := time.Date(2026, 6, 12, 20, 0, 0, 0, time.UTC)

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)

	var records []bracket.CreditRecord
	for _, p := range teams[0].Players() {
		ids, err := consumptions.CreditConsumption(ctx, tx, p, 2, game.ID)
		require.NoError(t, err)
		records = append(records, bracket.CreditRecord{
			ID: uuid.New(), GameID: game.ID, PlayerID: p, Quantity: 2, CreatedAt: now, ConsumptionIDs: ids,
		})
	}
	require.NoError(t, credits.CreateCreditRecordsTx(ctx, tx, records))

	active, err := credits.ActiveCreditsTx(ctx, tx, game.ID)
	require.NoError(t, err)
	require.Len(t, active, 2)
	for _, r := range active {
		assert.Len(t, r.ConsumptionIDs, 2)
		assert.True(t, r.Active())
	}

	// A second active record for the same player is refused
	dup := records[0]
	dup.ID = uuid.New()
	dup.ConsumptionIDs = nil
	assert.Error(t, credits.CreateCreditRecordsTx(ctx, tx, []bracket.CreditRecord{dup}))
	require.NoError(t, tx.Commit())

	tx, err = database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, credits.SettleCreditRecordsTx(ctx, tx, []uuid.UUID{records[0].ID}, now.Add(time.Minute)))
	require.NoError(t, credits.DeleteCreditRecordsTx(ctx, tx, []uuid.UUID{records[1].ID}))
	active, err = credits.ActiveCreditsTx(ctx, tx, game.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	// Settled records no longer block a fresh grant
	dup.ConsumptionIDs = nil
	require.NoError(t, credits.CreateCreditRecordsTx(ctx, tx, []bracket.CreditRecord{dup}))
	require.NoError(t, tx.Commit())

	all, err := credits.ListGameCredits(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)

	byTournament, err := credits.ListTournamentCredits(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, byTournament, 2)

	var settled *bracket.CreditRecord
	for i := range all {
		if !all[i].Active() {
			settled = &all[i]
		}
	}
	require.NotNil(t, settled)
	assert.Equal(t, records[0].ID, settled.ID)
	assert.Len(t, settled.ConsumptionIDs, 2)
}
