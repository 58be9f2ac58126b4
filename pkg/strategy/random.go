package strategy

import (
	"math/rand"
	"time"

	gametypes "github.com/ch1nq/arcadio-go/pkg/game/types"
)

var randomActions = []gametypes.GameAction{
	gametypes.GameActionLeft,
	gametypes.GameActionRight,
	gametypes.GameActionForward,
}

// RandomStrategy picks a uniformly random action every tick.
type RandomStrategy struct {
	rng *rand.Rand
}

type NewRandomStrategyOptions struct {
	// Seed seeds the random source. Zero means a time-based seed.
	Seed int64
}

func NewRandomStrategy(opts NewRandomStrategyOptions) *RandomStrategy {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomStrategy{
		rng: rand.New(rand.NewSource(seed)),
	}
}

func (s *RandomStrategy) TakeAction(state *gametypes.GameState, playerID gametypes.PlayerID) (gametypes.GameAction, bool) {
	return randomActions[s.rng.Intn(len(randomActions))], true
}
