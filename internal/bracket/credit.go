package bracket

import (
	"time"

	"github.com/google/uuid"
)

// CreditRecord links the beers granted to one player for one game start to
// the consumption records that represent them.
type CreditRecord struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	GameID    uuid.UUID  `db:"game_id" json:"game_id"`
	PlayerID  uuid.UUID  `db:"player_id" json:"player_id"`
	Quantity  int        `db:"quantity" json:"quantity"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	SettledAt *time.Time `db:"settled_at" json:"settled_at,omitempty"`

	ConsumptionIDs []uuid.UUID `db:"-" json:"consumption_ids"`
}

func (c *CreditRecord) Active() bool {
	return c.SettledAt == nil
}
