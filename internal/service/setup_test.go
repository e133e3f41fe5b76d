package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/AdamBeresnev/beerpong/internal/audit"
	"github.com/AdamBeresnev/beerpong/internal/bracket"
	"github.com/AdamBeresnev/beerpong/internal/db"
	"github.com/AdamBeresnev/beerpong/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 6, 12, 20, 0, 0, 0, time.UTC)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Open("file::memory:")
	require.NoError(t, err, "Failed to connect to in-memory DB")

	require.NoError(t, db.RunMigrations(database.DB), "Failed to apply migrations")

	t.Cleanup(func() { database.Close() })
	return database
}

type failingSink struct{}

func (failingSink) Emit(context.Context, audit.Record) error {
	return errors.New("activity log unavailable")
}

type fixture struct {
	db           *sqlx.DB
	participants *store.ParticipantStore
	consumptions *store.ConsumptionStore
	tournaments  *store.TournamentStore
	activity     *store.ActivityStore
	registry     *TeamRegistry
	ledger       *CreditLedger
	svc          *TournamentService
	eventID      uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithSink(t, nil)
}

func newFixtureWithSink(t *testing.T, sink audit.Sink) *fixture {
	t.Helper()
	database := setupTestDB(t)

	f := &fixture{
		db:           database,
		participants: store.NewParticipantStore(database),
		consumptions: store.NewConsumptionStore(database),
		tournaments:  store.NewTournamentStore(database),
		activity:     store.NewActivityStore(database),
	}
	credits := store.NewCreditStore(database)
	f.registry = NewTeamRegistry(database, store.NewTeamStore(database), f.participants)
	f.ledger = NewCreditLedger(credits, f.consumptions)
	if sink == nil {
		sink = audit.NewStoreSink(f.activity)
	}
	f.svc = NewTournamentService(database, f.tournaments, credits, f.registry, f.ledger, sink)

	ctx := context.Background()
	event := &store.Event{ID: uuid.New(), Name: "Summer Fest"}
	require.NoError(t, f.participants.CreateEvent(ctx, event))
	f.eventID = event.ID
	return f
}

func (f *fixture) addPlayers(t *testing.T, n int) []uuid.UUID {
	t.Helper()
	ctx := context.Background()
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		p := &store.Participant{ID: uuid.New(), Name: fmt.Sprintf("Player %d", i+1)}
		require.NoError(t, f.participants.CreateParticipant(ctx, p))
		require.NoError(t, f.participants.AddEventParticipant(ctx, f.eventID, p.ID))
		ids = append(ids, p.ID)
	}
	return ids
}

func teamInputs(players []uuid.UUID) []TeamInput {
	inputs := make([]TeamInput, 0, len(players)/2)
	for i := 0; i+1 < len(players); i += 2 {
		inputs = append(inputs, TeamInput{
			Name:      fmt.Sprintf("T%d", i/2+1),
			Player1ID: players[i],
			Player2ID: players[i+1],
		})
	}
	return inputs
}

func testConfig(policy bracket.CancellationPolicy, beers int) bracket.Config {
	return bracket.Config{
		BeersPerPlayer:     beers,
		TimeWindowMinutes:  15,
		UndoWindowMinutes:  5,
		CancellationPolicy: policy,
	}
}

type tournamentFixture struct {
	tournament *bracket.Tournament
	teams      []bracket.TournamentTeam
	players    []uuid.UUID
}

func (f *fixture) createTournament(t *testing.T, cfg bracket.Config) *tournamentFixture {
	t.Helper()
	ctx := context.Background()
	players := f.addPlayers(t, 16)

	tournament, err := f.svc.CreateTournament(ctx, f.eventID, "Beer Pong Open", teamInputs(players), cfg)
	require.NoError(t, err)

	teams, err := f.tournaments.GetTeams(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, teams, bracket.TeamCount)

	return &tournamentFixture{tournament: tournament, teams: teams, players: players}
}

func (f *fixture) game(t *testing.T, tournamentID uuid.UUID, round bracket.Round, order int) bracket.Game {
	t.Helper()
	games, err := f.tournaments.GetGames(context.Background(), tournamentID)
	require.NoError(t, err)
	for _, g := range games {
		if g.Round == round && g.Order == order {
			return g
		}
	}
	t.Fatalf("no %s game %d", round, order)
	return bracket.Game{}
}

func (f *fixture) tournament(t *testing.T, id uuid.UUID) *bracket.Tournament {
	t.Helper()
	tournament, err := f.tournaments.GetTournament(context.Background(), id)
	require.NoError(t, err)
	return tournament
}

func (f *fixture) consumptionCount(t *testing.T, gameID uuid.UUID) int {
	t.Helper()
	rows, err := f.consumptions.ListByAttribution(context.Background(), gameID)
	require.NoError(t, err)
	return len(rows)
}

func (f *fixture) play(t *testing.T, gameID, winner uuid.UUID, at time.Time) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.StartGame(ctx, gameID, at)
	require.NoError(t, err)
	_, err = f.svc.CompleteGame(ctx, gameID, winner, at.Add(4*time.Minute))
	require.NoError(t, err)
}
