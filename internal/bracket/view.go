package bracket

import (
	"sort"

	"github.com/google/uuid"
)

type RoundView struct {
	Round Round  `json:"round"`
	Games []Game `json:"games"`
}

type BracketView struct {
	Rounds  []RoundView                  `json:"rounds"`
	TeamMap map[uuid.UUID]TournamentTeam `json:"teams"`
}

// GroupByRound arranges games into rounds, each sorted by order, for the read model.
func GroupByRound(teams []TournamentTeam, games []Game) BracketView {
	teamMap := make(map[uuid.UUID]TournamentTeam)
	for _, t := range teams {
		teamMap[t.ID] = t
	}

	rounds := make(map[Round][]Game)
	var roundOrder []Round
	for _, g := range games {
		if _, exists := rounds[g.Round]; !exists {
			roundOrder = append(roundOrder, g.Round)
		}
		rounds[g.Round] = append(rounds[g.Round], g)
	}

	sort.Slice(roundOrder, func(i, j int) bool {
		return roundOrder[i].Rank() < roundOrder[j].Rank()
	})

	view := BracketView{TeamMap: teamMap}
	for _, r := range roundOrder {
		rg := rounds[r]
		sort.Slice(rg, func(i, j int) bool {
			return rg[i].Order < rg[j].Order
		})
		view.Rounds = append(view.Rounds, RoundView{Round: r, Games: rg})
	}
	return view
}
