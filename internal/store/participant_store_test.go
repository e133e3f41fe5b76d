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

func TestParticipantDirectory(t *testing.T) {
	database := setupTestDB(t)
	participants := NewParticipantStore(database)
	ctx := context.Background()

	eventID, players := seedEvent(t, database, 1)
	outsider := &Participant{ID: uuid.New(), Name: "Walk-in"}
	require.NoError(t, participants.CreateParticipant(ctx, outsider))

	testCases := []struct {
		name  string
		check func() (bool, error)
		want  bool
	}{
		{"known player", func() (bool, error) { return participants.PlayerExists(ctx, players[0]) }, true},
		{"unknown player", func() (bool, error) { return participants.PlayerExists(ctx, uuid.New()) }, false},
		{"known event", func() (bool, error) { return participants.EventExists(ctx, eventID) }, true},
		{"unknown event", func() (bool, error) { return participants.EventExists(ctx, uuid.New()) }, false},
		{"registered participant", func() (bool, error) { return participants.EventHasParticipant(ctx, eventID, players[0]) }, true},
		{"unregistered participant", func() (bool, error) { return participants.EventHasParticipant(ctx, eventID, outsider.ID) }, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.check()
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	// Registering twice is a no-op
	require.NoError(t, participants.AddEventParticipant(ctx, eventID, players[0]))
}

func TestEventTeams(t *testing.T) {
	database := setupTestDB(t)
	teams := NewTeamStore(database)
	ctx := context.Background()

	eventID, players := seedEvent(t, database, 4)
	team := &bracket.EventTeam{
		ID:        uuid.New(),
		EventID:   eventID,
		Name:      "Ping Kings",
		Player1ID: players[0],
		Player2ID: players[1],
		CreatedAt: time.Now().UTC(),
	}

	tx, err := database.BeginTxx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, teams.CreateEventTeamTx(ctx, tx, team))

	found, err := teams.FindEventTeamByPlayersTx(ctx, tx, eventID, players[1], players[0])
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, team.ID, found.ID)

	missing, err := teams.FindEventTeamByPlayersTx(ctx, tx, eventID, players[2], players[3])
	require.NoError(t, err)
	assert.Nil(t, missing)

	fetched, err := teams.GetEventTeamTx(ctx, tx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ping Kings", fetched.Name)

	_, err = teams.GetEventTeamTx(ctx, tx, uuid.New())
	assert.ErrorIs(t, err, bracket.ErrNotFound)
	require.NoError(t, tx.Commit())

	listed, err := teams.ListEventTeams(ctx, eventID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestLockedTeams(t *testing.T) {
	database := setupTestDB(t)
	teams := NewTeamStore(database)
	ctx := context.Background()

	tournament, seeded := seedBracket(t, database)
	p := seeded[2].Players()

	check := func(a, b uuid.UUID) []bracket.TournamentTeam {
		tx, err := database.BeginTxx(ctx, nil)
		require.NoError(t, err)
		defer tx.Rollback()
		locked, err := teams.LockedTeamsTx(ctx, tx, tournament.EventID, a, b)
		require.NoError(t, err)
		return locked
	}

	locked := check(p[1], uuid.New())
	require.Len(t, locked, 1)
	assert.Equal(t, seeded[2].ID, locked[0].ID)

	assert.Empty(t, check(uuid.New(), uuid.New()))

	_, err := database.Exec("UPDATE tournaments SET status = ? WHERE id = ?", bracket.TournamentCompleted, tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, check(p[0], p[1]))
}

func TestActivityLog(t *testing.T) {
	database := setupTestDB(t)
	activity := NewActivityStore(database)
	ctx := context.Background()

	tournamentID := uuid.New()
	at := time.Date(2026, 6, 12, 20, 0, 0, 0, time.UTC)
	detail := "4 beers granted"

	for _, kind := range []string{"tournament.created", "game.started"} {
		require.NoError(t, activity.CreateActivity(ctx, &Activity{
			ID:           uuid.New(),
			Kind:         kind,
			TournamentID: tournamentID,
			StatusAfter:  "in_progress",
			Detail:       &detail,
			OccurredAt:   at,
		}))
	}

	rows, err := activity.ListActivity(ctx, tournamentID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "tournament.created", rows[0].Kind)
	assert.Equal(t, "game.started", rows[1].Kind)
	assert.Nil(t, rows[0].GameID)
	assert.Equal(t, detail, *rows[1].Detail)
}
