package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AdamBeresnev/beerpong/internal/bracket"
	"github.com/AdamBeresnev/beerpong/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/errgroup"
)

// Directory answers membership questions about participants and events.
type Directory interface {
	PlayerExists(ctx context.Context, id uuid.UUID) (bool, error)
	EventExists(ctx context.Context, id uuid.UUID) (bool, error)
	EventHasParticipant(ctx context.Context, eventID, playerID uuid.UUID) (bool, error)
}

type TeamRegistry struct {
	db        *sqlx.DB
	store     *store.TeamStore
	directory Directory
}

func NewTeamRegistry(db *sqlx.DB, store *store.TeamStore, directory Directory) *TeamRegistry {
	return &TeamRegistry{db: db, store: store, directory: directory}
}

// PairTeam registers two participants as a team of the event, or returns the
// existing team when the same two already play together.
func (r *TeamRegistry) PairTeam(ctx context.Context, eventID uuid.UUID, name string, player1, player2 uuid.UUID) (*bracket.EventTeam, error) {
	if player1 == player2 {
		return nil, fmt.Errorf("%w: a team needs two different players", bracket.ErrValidation)
	}
	if err := r.ValidateEventPlayers(ctx, eventID, player1, player2); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	team, err := r.PairTeamTx(ctx, tx, eventID, name, player1, player2)
	if err != nil {
		return nil, err
	}
	return team, tx.Commit()
}

// PairTeamTx is PairTeam without the directory checks, for callers that have
// already validated the players and own the transaction.
func (r *TeamRegistry) PairTeamTx(ctx context.Context, tx *sqlx.Tx, eventID uuid.UUID, name string, player1, player2 uuid.UUID) (*bracket.EventTeam, error) {
	if player1 == player2 {
		return nil, fmt.Errorf("%w: a team needs two different players", bracket.ErrValidation)
	}

	locked, err := r.store.LockedTeamsTx(ctx, tx, eventID, player1, player2)
	if err != nil {
		return nil, fmt.Errorf("failed to check active teams: %w", err)
	}
	for _, t := range locked {
		sameTeam := (t.Player1ID == player1 && t.Player2ID == player2) || (t.Player1ID == player2 && t.Player2ID == player1)
		if !sameTeam {
			return nil, fmt.Errorf("%w: a player of %q is already on team %q in an unfinished tournament",
				bracket.ErrValidation, name, t.Name)
		}
	}

	existing, err := r.store.FindEventTeamByPlayersTx(ctx, tx, eventID, player1, player2)
	if err != nil {
		return nil, fmt.Errorf("failed to look up event team: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	team := &bracket.EventTeam{
		ID:        uuid.New(),
		EventID:   eventID,
		Name:      strings.TrimSpace(name),
		Player1ID: player1,
		Player2ID: player2,
		CreatedAt: time.Now().UTC(),
	}
	if team.Name == "" {
		team.Name = "Team " + team.ID.String()[:8]
	}
	if err := r.store.CreateEventTeamTx(ctx, tx, team); err != nil {
		return nil, fmt.Errorf("failed to create event team: %w", err)
	}
	return team, nil
}

// BindTournamentTeam copies an event team into a tournament at the given seed position.
func (r *TeamRegistry) BindTournamentTeam(tournament *bracket.Tournament, eventTeam *bracket.EventTeam, seed int) (*bracket.TournamentTeam, error) {
	if eventTeam.EventID != tournament.EventID {
		return nil, fmt.Errorf("%w: team %q is not registered for event %s", bracket.ErrNotFound, eventTeam.Name, tournament.EventID)
	}

	eventTeamID := eventTeam.ID
	return &bracket.TournamentTeam{
		ID:           uuid.New(),
		TournamentID: tournament.ID,
		EventTeamID:  &eventTeamID,
		Name:         eventTeam.Name,
		Seed:         seed,
		Player1ID:    eventTeam.Player1ID,
		Player2ID:    eventTeam.Player2ID,
	}, nil
}

// ValidateEventPlayers checks that the event exists and every player is a
// known participant of it. Players are checked concurrently.
func (r *TeamRegistry) ValidateEventPlayers(ctx context.Context, eventID uuid.UUID, players ...uuid.UUID) error {
	ok, err := r.directory.EventExists(ctx, eventID)
	if err != nil {
		return fmt.Errorf("failed to look up event: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: event %s", bracket.ErrNotFound, eventID)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, p := range players {
		p := p
		g.Go(func() error {
			exists, err := r.directory.PlayerExists(gctx, p)
			if err != nil {
				return fmt.Errorf("failed to look up player %s: %w", p, err)
			}
			if !exists {
				return fmt.Errorf("%w: player %s does not exist", bracket.ErrValidation, p)
			}

			member, err := r.directory.EventHasParticipant(gctx, eventID, p)
			if err != nil {
				return fmt.Errorf("failed to check event membership of %s: %w", p, err)
			}
			if !member {
				return fmt.Errorf("%w: player %s is not a participant of event %s", bracket.ErrValidation, p, eventID)
			}
			return nil
		})
	}
	return g.Wait()
}

func (r *TeamRegistry) ListEventTeams(ctx context.Context, eventID uuid.UUID) ([]bracket.EventTeam, error) {
	return r.store.ListEventTeams(ctx, eventID)
}
