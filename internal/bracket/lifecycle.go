package bracket

import (
	"fmt"
	"time"

	"github.com/AdamBeresnev/beerpong/internal/utils"
	"github.com/google/uuid"
)

func (b *Bracket) lookup(gameID uuid.UUID) (*Game, error) {
	g := b.byID[gameID]
	if g == nil {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	return g, nil
}

// Start moves a pending game with both teams assigned to in progress. The
// first start of a tournament also activates it.
func (b *Bracket) Start(gameID uuid.UUID, now time.Time) (*Game, error) {
	g, err := b.lookup(gameID)
	if err != nil {
		return nil, err
	}
	if g.Status != GamePending {
		return nil, fmt.Errorf("%w: cannot start %s while it is %s", ErrState, g.Label(), g.Status)
	}
	if !g.Ready() {
		return nil, fmt.Errorf("%w: %s is still waiting for a team", ErrNotReady, g.Label())
	}

	g.Status = GameInProgress
	g.StartedAt = utils.Ptr(now)
	b.touch(g)

	if b.Tournament.Status == TournamentDraft {
		b.Tournament.Status = TournamentActive
		b.Tournament.StartedAt = utils.Ptr(now)
	}
	return g, nil
}

// Complete records the winner of an in-progress game and advances it. It
// returns the game and the downstream game that received the winner, which
// is nil for the final.
func (b *Bracket) Complete(gameID, winnerID uuid.UUID, now time.Time) (*Game, *Game, error) {
	g, err := b.lookup(gameID)
	if err != nil {
		return nil, nil, err
	}
	if g.Status != GameInProgress {
		return nil, nil, fmt.Errorf("%w: cannot complete %s while it is %s", ErrState, g.Label(), g.Status)
	}
	if !g.HasTeam(winnerID) {
		return nil, nil, fmt.Errorf("%w: team %s is not playing in %s", ErrValidation, winnerID, g.Label())
	}
	if _, err := b.checkAdvance(g, winnerID); err != nil {
		return nil, nil, err
	}

	g.Status = GameCompleted
	g.WinnerID = utils.Ptr(winnerID)
	g.EndedAt = utils.Ptr(now)
	g.DurationSeconds = utils.Ptr(elapsedSeconds(g.StartedAt, now))
	b.touch(g)

	next, err := b.Advance(g)
	if err != nil {
		return nil, nil, err
	}

	if g.Round == Final {
		b.Tournament.Status = TournamentCompleted
		b.Tournament.CompletedAt = utils.Ptr(now)
	}
	return g, next, nil
}

// Cancel reverts an in-progress game, or undoes a completed one inside the
// undo window, back to pending. It returns the status the game had before.
func (b *Bracket) Cancel(gameID uuid.UUID, now time.Time) (*Game, GameStatus, error) {
	g, err := b.lookup(gameID)
	if err != nil {
		return nil, "", err
	}
	before := g.Status

	switch g.Status {
	case GameInProgress:
		g.Status = GamePending
		g.StartedAt = nil

	case GameCompleted:
		if g.EndedAt != nil && now.Sub(*g.EndedAt) > b.Tournament.UndoWindow() {
			return nil, "", fmt.Errorf("%w: %s ended %s ago, undo is allowed for %d minutes",
				ErrUndoExpired, g.Label(), now.Sub(*g.EndedAt).Truncate(time.Second), b.Tournament.UndoWindowMinutes)
		}
		if _, err := b.checkRetract(g); err != nil {
			return nil, "", err
		}
		if _, err := b.Retract(g); err != nil {
			return nil, "", err
		}

		g.Status = GamePending
		g.WinnerID = nil
		g.StartedAt = nil
		g.EndedAt = nil
		g.DurationSeconds = nil

		if g.Round == Final && b.Tournament.Status == TournamentCompleted {
			b.Tournament.Status = TournamentActive
			b.Tournament.CompletedAt = nil
		}

	default:
		return nil, "", fmt.Errorf("%w: cannot cancel %s while it is %s", ErrState, g.Label(), g.Status)
	}
	b.touch(g)

	if b.Tournament.Status == TournamentActive && !b.hasPlayedGames() {
		b.Tournament.Status = TournamentDraft
		b.Tournament.StartedAt = nil
	}
	return g, before, nil
}

func (b *Bracket) hasPlayedGames() bool {
	for _, g := range b.Games {
		if g.Status == GameInProgress || g.Status == GameCompleted {
			return true
		}
	}
	return false
}

func elapsedSeconds(start *time.Time, now time.Time) int64 {
	if start == nil || now.Before(*start) {
		return 0
	}
	return int64(now.Sub(*start) / time.Second)
}
