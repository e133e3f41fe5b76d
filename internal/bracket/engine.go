package bracket

import (
	"fmt"
	"sort"

	"github.com/AdamBeresnev/beerpong/internal/utils"
	"github.com/google/uuid"
)

// TeamCount is the number of teams in every bracket.
const TeamCount = 8

var layout = []struct {
	round Round
	games int
}{
	{Quarterfinal, 4},
	{Semifinal, 2},
	{Final, 1},
}

// Bracket is the game graph of one tournament. Every game except the final
// points at the game that consumes its winner, so advancement never has to
// search for the next game.
type Bracket struct {
	Tournament *Tournament
	Games      []*Game

	byID  map[uuid.UUID]*Game
	dirty map[uuid.UUID]bool
}

// NewBracket wraps games loaded from storage, checking the 4/2/1 round shape.
func NewBracket(t *Tournament, games []*Game) (*Bracket, error) {
	b := &Bracket{
		Tournament: t,
		Games:      games,
		byID:       make(map[uuid.UUID]*Game, len(games)),
		dirty:      make(map[uuid.UUID]bool),
	}

	counts := make(map[Round]int)
	for _, g := range games {
		if g.TournamentID != t.ID {
			return nil, fmt.Errorf("%w: game %s belongs to tournament %s", ErrInvariant, g.ID, g.TournamentID)
		}
		b.byID[g.ID] = g
		counts[g.Round]++
	}
	for _, l := range layout {
		if counts[l.round] != l.games {
			return nil, fmt.Errorf("%w: expected %d %s games, found %d", ErrInvariant, l.games, l.round, counts[l.round])
		}
	}

	sort.SliceStable(b.Games, func(i, j int) bool {
		if b.Games[i].Round != b.Games[j].Round {
			return b.Games[i].Round.Rank() < b.Games[j].Round.Rank()
		}
		return b.Games[i].Order < b.Games[j].Order
	})

	return b, nil
}

// BuildBracket creates the seven games of a new tournament. Teams are paired
// in input order: (0,1), (2,3), (4,5), (6,7). Semifinal 1 takes the winners
// of quarterfinals 1 and 2, semifinal 2 those of 3 and 4, the final those of
// both semifinals.
func BuildBracket(t *Tournament, teams []TournamentTeam) (*Bracket, error) {
	if len(teams) != TeamCount {
		return nil, fmt.Errorf("%w: a bracket needs exactly %d teams, got %d", ErrValidation, TeamCount, len(teams))
	}

	seenTeams := make(map[uuid.UUID]bool, len(teams))
	seenPlayers := make(map[uuid.UUID]bool, len(teams)*2)
	for _, team := range teams {
		if seenTeams[team.ID] {
			return nil, fmt.Errorf("%w: team %s appears more than once", ErrValidation, team.ID)
		}
		seenTeams[team.ID] = true

		if team.Player1ID == team.Player2ID {
			return nil, fmt.Errorf("%w: team %q pairs a player with themselves", ErrValidation, team.Name)
		}
		for _, p := range team.Players() {
			if seenPlayers[p] {
				return nil, fmt.Errorf("%w: player %s is on more than one team", ErrValidation, p)
			}
			seenPlayers[p] = true
		}
	}

	var games []*Game
	nextRoundGameIDs := make(map[int]uuid.UUID)

	// Built from the final backwards so each game already knows its parent
	for r := len(layout) - 1; r >= 0; r-- {
		currentRoundGameIDs := make(map[int]uuid.UUID)

		for i := 0; i < layout[r].games; i++ {
			order := i + 1
			g := &Game{
				ID:           uuid.New(),
				TournamentID: t.ID,
				Round:        layout[r].round,
				Order:        order,
				Status:       GamePending,
			}

			if r < len(layout)-1 {
				parentID := nextRoundGameIDs[(order+1)/2]
				g.NextGameID = &parentID

				if order%2 != 0 {
					g.NextSlot = utils.Ptr(1)
				} else {
					g.NextSlot = utils.Ptr(2)
				}
			}

			if layout[r].round == Quarterfinal {
				g.Team1ID = utils.Ptr(teams[2*i].ID)
				g.Team2ID = utils.Ptr(teams[2*i+1].ID)
			}

			games = append(games, g)
			currentRoundGameIDs[order] = g.ID
		}
		nextRoundGameIDs = currentRoundGameIDs
	}

	return NewBracket(t, games)
}

func (b *Bracket) Game(id uuid.UUID) *Game {
	return b.byID[id]
}

// Final returns the last game of the bracket.
func (b *Bracket) Final() *Game {
	for _, g := range b.Games {
		if g.Round == Final {
			return g
		}
	}
	return nil
}

// Dirty returns the games modified since the bracket was loaded, in bracket order.
func (b *Bracket) Dirty() []*Game {
	var out []*Game
	for _, g := range b.Games {
		if b.dirty[g.ID] {
			out = append(out, g)
		}
	}
	return out
}

func (b *Bracket) touch(g *Game) {
	b.dirty[g.ID] = true
}

func (b *Bracket) downstream(g *Game) (*Game, error) {
	if g.NextGameID == nil {
		return nil, nil
	}
	next := b.byID[*g.NextGameID]
	if next == nil || g.NextSlot == nil {
		return nil, fmt.Errorf("%w: %s points at a missing downstream game", ErrInvariant, g.Label())
	}
	return next, nil
}

func (b *Bracket) checkAdvance(g *Game, winnerID uuid.UUID) (*Game, error) {
	next, err := b.downstream(g)
	if err != nil || next == nil {
		return nil, err
	}
	if occupant := *next.slot(*g.NextSlot); occupant != nil && *occupant != winnerID {
		return nil, fmt.Errorf("%w: slot %d of %s already holds team %s", ErrInvariant, *g.NextSlot, next.Label(), *occupant)
	}
	return next, nil
}

// Advance moves the winner of a completed game into its downstream slot and
// returns the downstream game, or nil when the completed game is the final.
func (b *Bracket) Advance(completed *Game) (*Game, error) {
	if completed.Status != GameCompleted || completed.WinnerID == nil {
		return nil, fmt.Errorf("%w: %s has no winner to advance", ErrState, completed.Label())
	}

	next, err := b.checkAdvance(completed, *completed.WinnerID)
	if err != nil || next == nil {
		return nil, err
	}

	*next.slot(*completed.NextSlot) = utils.Ptr(*completed.WinnerID)
	b.touch(next)
	return next, nil
}

func (b *Bracket) checkRetract(g *Game) (*Game, error) {
	next, err := b.downstream(g)
	if err != nil || next == nil {
		return nil, err
	}
	if next.Status != GamePending {
		return nil, fmt.Errorf("%w: %s has already started", ErrConflict, next.Label())
	}
	return next, nil
}

// Retract undoes Advance. It refuses when the downstream game is no longer
// pending, since its participants are already fixed.
func (b *Bracket) Retract(completed *Game) (*Game, error) {
	if completed.WinnerID == nil {
		return nil, fmt.Errorf("%w: %s has no winner to retract", ErrState, completed.Label())
	}

	next, err := b.checkRetract(completed)
	if err != nil || next == nil {
		return nil, err
	}

	slot := next.slot(*completed.NextSlot)
	if *slot != nil && **slot == *completed.WinnerID {
		*slot = nil
		b.touch(next)
	}
	return next, nil
}
