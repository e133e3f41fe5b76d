package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamBeresnev/beerpong/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type TournamentStore struct {
	db *sqlx.DB
}

func NewTournamentStore(db *sqlx.DB) *TournamentStore {
	return &TournamentStore{db: db}
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", bracket.ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}

func (s *TournamentStore) CreateTournament(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournaments (id, event_id, name, slug, status, beers_per_player, time_window_minutes, undo_window_minutes, cancellation_policy, created_at)
        VALUES (:id, :event_id, :name, :slug, :status, :beers_per_player, :time_window_minutes, :undo_window_minutes, :cancellation_policy, :created_at)`, tournament)
	return err
}

func (s *TournamentStore) CreateTeams(ctx context.Context, tx *sqlx.Tx, teams []bracket.TournamentTeam) error {
	if len(teams) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO tournament_teams (id, tournament_id, event_team_id, name, seed, player_1_id, player_2_id)
            VALUES (:id, :tournament_id, :event_team_id, :name, :seed, :player_1_id, :player_2_id)`, teams)
	return err
}

// CreateGames inserts games in the given order; downstream games must come first.
func (s *TournamentStore) CreateGames(ctx context.Context, tx *sqlx.Tx, games []*bracket.Game) error {
	for _, g := range games {
		_, err := tx.NamedExecContext(ctx, `INSERT INTO games (id, tournament_id, round, game_order, team_1_id, team_2_id, status, next_game_id, next_slot)
			VALUES (:id, :tournament_id, :round, :game_order, :team_1_id, :team_2_id, :status, :next_game_id, :next_slot)`, g)
		if err != nil {
			return fmt.Errorf("failed to insert game %s: %w", g.Label(), err)
		}
	}
	return nil
}

func (s *TournamentStore) UpdateTournamentTx(ctx context.Context, tx *sqlx.Tx, tournament *bracket.Tournament) error {
	_, err := tx.NamedExecContext(ctx, `UPDATE tournaments SET
		status = :status,
		started_at = :started_at,
		completed_at = :completed_at
		WHERE id = :id`, tournament)
	return err
}

func (s *TournamentStore) UpdateGameTx(ctx context.Context, tx *sqlx.Tx, game *bracket.Game) error {
	_, err := tx.NamedExecContext(ctx, `UPDATE games SET
		team_1_id = :team_1_id,
		team_2_id = :team_2_id,
		status = :status,
		winner_id = :winner_id,
		started_at = :started_at,
		ended_at = :ended_at,
		credited_at = :credited_at,
		duration_seconds = :duration_seconds
		WHERE id = :id`, game)
	return err
}

func (s *TournamentStore) GetTournament(ctx context.Context, id uuid.UUID) (*bracket.Tournament, error) {
	return getTournament(ctx, s.db, id)
}

func (s *TournamentStore) GetTournamentTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*bracket.Tournament, error) {
	return getTournament(ctx, tx, id)
}

func getTournament(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*bracket.Tournament, error) {
	var tournament bracket.Tournament
	err := sqlx.GetContext(ctx, q, &tournament, "SELECT * FROM tournaments WHERE id = ?", id)
	if err != nil {
		return nil, notFound(err, "tournament %s", id)
	}
	return &tournament, nil
}

func (s *TournamentStore) GetTournamentsByEvent(ctx context.Context, eventID uuid.UUID) ([]bracket.Tournament, error) {
	var tournaments []bracket.Tournament
	err := s.db.SelectContext(ctx, &tournaments, "SELECT * FROM tournaments WHERE event_id = ? ORDER BY created_at DESC", eventID)
	return tournaments, err
}

func (s *TournamentStore) GetTeams(ctx context.Context, tournamentID uuid.UUID) ([]bracket.TournamentTeam, error) {
	return getTeams(ctx, s.db, tournamentID)
}

func (s *TournamentStore) GetTeamsTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) ([]bracket.TournamentTeam, error) {
	return getTeams(ctx, tx, tournamentID)
}

func getTeams(ctx context.Context, q sqlx.QueryerContext, tournamentID uuid.UUID) ([]bracket.TournamentTeam, error) {
	var teams []bracket.TournamentTeam
	err := sqlx.SelectContext(ctx, q, &teams, "SELECT * FROM tournament_teams WHERE tournament_id = ? ORDER BY seed ASC", tournamentID)
	return teams, err
}

func (s *TournamentStore) GetGames(ctx context.Context, tournamentID uuid.UUID) ([]bracket.Game, error) {
	var games []bracket.Game
	err := s.db.SelectContext(ctx, &games, "SELECT * FROM games WHERE tournament_id = ?", tournamentID)
	return games, err
}

func (s *TournamentStore) GetGame(ctx context.Context, id uuid.UUID) (*bracket.Game, error) {
	var game bracket.Game
	err := s.db.GetContext(ctx, &game, "SELECT * FROM games WHERE id = ?", id)
	if err != nil {
		return nil, notFound(err, "game %s", id)
	}
	return &game, nil
}

// GetGameTournamentID resolves the owning tournament of a game. The column
// never changes after creation, so it is safe to read before taking the
// tournament lock.
func (s *TournamentStore) GetGameTournamentID(ctx context.Context, gameID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.GetContext(ctx, &id, "SELECT tournament_id FROM games WHERE id = ?", gameID)
	if err != nil {
		return uuid.Nil, notFound(err, "game %s", gameID)
	}
	return id, nil
}

// LoadBracketTx reads a tournament and its games as a Bracket inside tx.
func (s *TournamentStore) LoadBracketTx(ctx context.Context, tx *sqlx.Tx, tournamentID uuid.UUID) (*bracket.Bracket, error) {
	tournament, err := s.GetTournamentTx(ctx, tx, tournamentID)
	if err != nil {
		return nil, err
	}

	var games []*bracket.Game
	if err := tx.SelectContext(ctx, &games, "SELECT * FROM games WHERE tournament_id = ?", tournamentID); err != nil {
		return nil, fmt.Errorf("failed to get games: %w", err)
	}

	return bracket.NewBracket(tournament, games)
}
