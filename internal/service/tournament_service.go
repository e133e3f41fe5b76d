package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AdamBeresnev/beerpong/internal/audit"
	"github.com/AdamBeresnev/beerpong/internal/bracket"
	"github.com/AdamBeresnev/beerpong/internal/store"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"
)

// TournamentService is the single entry point for tournament mutations. All
// of them run under the tournament's lock and inside one transaction.
type TournamentService struct {
	db       *sqlx.DB
	store    *store.TournamentStore
	credits  *store.CreditStore
	registry *TeamRegistry
	ledger   *CreditLedger
	sink     audit.Sink
	locks    *keyedMutex
}

func NewTournamentService(db *sqlx.DB, store *store.TournamentStore, credits *store.CreditStore, registry *TeamRegistry, ledger *CreditLedger, sink audit.Sink) *TournamentService {
	return &TournamentService{
		db:       db,
		store:    store,
		credits:  credits,
		registry: registry,
		ledger:   ledger,
		sink:     sink,
		locks:    newKeyedMutex(),
	}
}

type TeamInput struct {
	Name      string    `json:"name"`
	Player1ID uuid.UUID `json:"player_1_id"`
	Player2ID uuid.UUID `json:"player_2_id"`
}

type TournamentData struct {
	Tournament *bracket.Tournament      `json:"tournament"`
	Teams      []bracket.TournamentTeam `json:"-"`
	Games      []bracket.Game           `json:"-"`
	Bracket    bracket.BracketView      `json:"bracket"`
	Credits    []bracket.CreditRecord   `json:"credits"`
}

func (s *TournamentService) GetTournamentData(ctx context.Context, id uuid.UUID) (*TournamentData, error) {
	tournament, err := s.store.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	teams, err := s.store.GetTeams(ctx, id)
	if err != nil {
		return nil, err
	}

	games, err := s.store.GetGames(ctx, id)
	if err != nil {
		return nil, err
	}

	credits, err := s.credits.ListTournamentCredits(ctx, id)
	if err != nil {
		return nil, err
	}

	return &TournamentData{
		Tournament: tournament,
		Teams:      teams,
		Games:      games,
		Bracket:    bracket.GroupByRound(teams, games),
		Credits:    credits,
	}, nil
}

func (s *TournamentService) ListGameCredits(ctx context.Context, gameID uuid.UUID) ([]bracket.CreditRecord, error) {
	if _, err := s.store.GetGame(ctx, gameID); err != nil {
		return nil, err
	}
	return s.credits.ListGameCredits(ctx, gameID)
}

// CreateTournament pairs the eight teams, seeds them in input order and
// stores the tournament in draft with its seven games.
func (s *TournamentService) CreateTournament(ctx context.Context, eventID uuid.UUID, name string, inputs []TeamInput, cfg bracket.Config) (*bracket.Tournament, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: tournament name is required", bracket.ErrValidation)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(inputs) != bracket.TeamCount {
		return nil, fmt.Errorf("%w: a tournament needs exactly %d teams, got %d", bracket.ErrValidation, bracket.TeamCount, len(inputs))
	}

	players := make([]uuid.UUID, 0, len(inputs)*2)
	seen := make(map[uuid.UUID]bool, len(inputs)*2)
	for i, in := range inputs {
		if in.Player1ID == in.Player2ID {
			return nil, fmt.Errorf("%w: team %d pairs a player with themselves", bracket.ErrValidation, i+1)
		}
		for _, p := range []uuid.UUID{in.Player1ID, in.Player2ID} {
			if seen[p] {
				return nil, fmt.Errorf("%w: player %s is on more than one team", bracket.ErrValidation, p)
			}
			seen[p] = true
			players = append(players, p)
		}
	}

	if err := s.registry.ValidateEventPlayers(ctx, eventID, players...); err != nil {
		return nil, err
	}

	tournament := &bracket.Tournament{
		ID:        uuid.New(),
		EventID:   eventID,
		Name:      name,
		Slug:      slug.Make(name),
		Status:    bracket.TournamentDraft,
		Config:    cfg,
		CreatedAt: time.Now().UTC(),
	}

	unlock := s.locks.Lock(tournament.ID)
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	teams := make([]bracket.TournamentTeam, 0, len(inputs))
	for i, in := range inputs {
		eventTeam, err := s.registry.PairTeamTx(ctx, tx, eventID, in.Name, in.Player1ID, in.Player2ID)
		if err != nil {
			return nil, err
		}
		team, err := s.registry.BindTournamentTeam(tournament, eventTeam, i)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *team)
	}

	b, err := bracket.BuildBracket(tournament, teams)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateTournament(ctx, tx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	if err := s.store.CreateTeams(ctx, tx, teams); err != nil {
		return nil, fmt.Errorf("failed to create teams: %w", err)
	}

	// Downstream games first so next_game_id always resolves
	games := make([]*bracket.Game, 0, len(b.Games))
	for i := len(b.Games) - 1; i >= 0; i-- {
		games = append(games, b.Games[i])
	}
	if err := s.store.CreateGames(ctx, tx, games); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	audit.Publish(ctx, s.sink, audit.Record{
		Kind:         audit.TournamentCreated,
		TournamentID: tournament.ID,
		StatusAfter:  string(tournament.Status),
		Detail:       fmt.Sprintf("%s (%s)", tournament.Name, tournament.Slug),
		At:           tournament.CreatedAt,
	})

	return tournament, nil
}

// withBracket runs fn against the game's bracket under the tournament lock,
// then writes back every modified game and the tournament row. Nothing is
// written when fn fails.
func (s *TournamentService) withBracket(ctx context.Context, gameID uuid.UUID, fn func(tx *sqlx.Tx, b *bracket.Bracket) error) error {
	tournamentID, err := s.store.GetGameTournamentID(ctx, gameID)
	if err != nil {
		return err
	}

	unlock := s.locks.Lock(tournamentID)
	defer unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	b, err := s.store.LoadBracketTx(ctx, tx, tournamentID)
	if err != nil {
		return s.report(tournamentID, gameID, err)
	}

	if err := fn(tx, b); err != nil {
		return s.report(tournamentID, gameID, err)
	}

	for _, g := range b.Dirty() {
		if err := s.store.UpdateGameTx(ctx, tx, g); err != nil {
			return fmt.Errorf("failed to update game %s: %w", g.Label(), err)
		}
	}
	if err := s.store.UpdateTournamentTx(ctx, tx, b.Tournament); err != nil {
		return fmt.Errorf("failed to update tournament: %w", err)
	}

	return tx.Commit()
}

func (s *TournamentService) report(tournamentID, gameID uuid.UUID, err error) error {
	if errors.Is(err, bracket.ErrInvariant) {
		slog.Error("bracket invariant violated", "tournament_id", tournamentID, "game_id", gameID, "error", err)
	}
	return err
}
