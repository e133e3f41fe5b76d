package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AdamBeresnev/beerpong/internal/audit"
	"github.com/AdamBeresnev/beerpong/internal/bracket"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type GameResult struct {
	Tournament *bracket.Tournament    `json:"tournament"`
	Game       *bracket.Game          `json:"game"`
	Downstream *bracket.Game          `json:"downstream,omitempty"`
	Credits    []bracket.CreditRecord `json:"credits,omitempty"`
	Settlement *Settlement            `json:"settlement,omitempty"`
}

// StartGame starts a game and grants its beers.
func (s *TournamentService) StartGame(ctx context.Context, gameID uuid.UUID, now time.Time) (*GameResult, error) {
	var result GameResult
	var tournamentBefore bracket.TournamentStatus

	err := s.withBracket(ctx, gameID, func(tx *sqlx.Tx, b *bracket.Bracket) error {
		tournamentBefore = b.Tournament.Status

		g, err := b.Start(gameID, now)
		if err != nil {
			return err
		}

		players, err := s.gamePlayersTx(ctx, tx, g)
		if err != nil {
			return err
		}

		credits, err := s.ledger.Grant(ctx, tx, b.Tournament, g, players, now)
		if err != nil {
			return err
		}

		result = GameResult{Tournament: b.Tournament, Game: g, Credits: credits}
		return nil
	})
	if err != nil {
		return nil, err
	}

	detail := fmt.Sprintf("%d beers granted", len(result.Credits)*result.Tournament.BeersPerPlayer)
	if tournamentBefore != result.Tournament.Status {
		detail += fmt.Sprintf("; tournament %s -> %s", tournamentBefore, result.Tournament.Status)
	}
	s.publishGame(ctx, audit.GameStarted, result.Game, bracket.GamePending, detail, now)

	return &result, nil
}

// CompleteGame records the winner and moves them into the next round.
func (s *TournamentService) CompleteGame(ctx context.Context, gameID, winnerTeamID uuid.UUID, now time.Time) (*GameResult, error) {
	var result GameResult

	err := s.withBracket(ctx, gameID, func(tx *sqlx.Tx, b *bracket.Bracket) error {
		g, next, err := b.Complete(gameID, winnerTeamID, now)
		if err != nil {
			return err
		}
		result = GameResult{Tournament: b.Tournament, Game: g, Downstream: next}
		return nil
	})
	if err != nil {
		return nil, err
	}

	detail := fmt.Sprintf("winner %s", winnerTeamID)
	if result.Downstream != nil {
		detail += " advances to " + result.Downstream.Label()
	} else {
		detail += " wins the tournament"
	}
	s.publishGame(ctx, audit.GameCompleted, result.Game, bracket.GameInProgress, detail, now)

	return &result, nil
}

// CancelGame reverts a running game, or undoes a finished one, and settles
// the beers granted when it started.
func (s *TournamentService) CancelGame(ctx context.Context, gameID uuid.UUID, now time.Time) (*GameResult, error) {
	var result GameResult
	var before bracket.GameStatus

	err := s.withBracket(ctx, gameID, func(tx *sqlx.Tx, b *bracket.Bracket) error {
		g, status, err := b.Cancel(gameID, now)
		if err != nil {
			return err
		}
		before = status

		settlement, err := s.ledger.Settle(ctx, tx, b.Tournament, g, now)
		if err != nil {
			return err
		}

		result = GameResult{Tournament: b.Tournament, Game: g, Settlement: settlement}
		return nil
	})
	if err != nil {
		return nil, err
	}

	detail := "no beers to settle"
	if st := result.Settlement; st != nil {
		detail = fmt.Sprintf("%s: %d kept, %d removed", st.Policy, st.ConsumptionsKept, st.ConsumptionsGone)
		if st.Stale {
			detail += " (stale)"
		}
	}
	s.publishGame(ctx, audit.GameCancelled, result.Game, before, detail, now)

	return &result, nil
}

func (s *TournamentService) gamePlayersTx(ctx context.Context, tx *sqlx.Tx, g *bracket.Game) ([]uuid.UUID, error) {
	teams, err := s.store.GetTeamsTx(ctx, tx, g.TournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}

	var players []uuid.UUID
	for _, t := range teams {
		if g.HasTeam(t.ID) {
			p := t.Players()
			players = append(players, p[0], p[1])
		}
	}
	if len(players) != 4 {
		return nil, fmt.Errorf("%w: %s resolves to %d players", bracket.ErrInvariant, g.Label(), len(players))
	}
	return players, nil
}

func (s *TournamentService) publishGame(ctx context.Context, kind audit.Kind, g *bracket.Game, before bracket.GameStatus, detail string, at time.Time) {
	gameID := g.ID
	audit.Publish(ctx, s.sink, audit.Record{
		Kind:         kind,
		TournamentID: g.TournamentID,
		GameID:       &gameID,
		StatusBefore: string(before),
		StatusAfter:  string(g.Status),
		Detail:       detail,
		At:           at,
	})
}
