package strategy

import (
	gametypes "github.com/ch1nq/arcadio-go/pkg/game/types"
)

// Strategy decides which action a player takes for the current tick.
type Strategy interface {
	// TakeAction returns the action for the current tick. The second
	// return is false when the strategy has no action this tick, in
	// which case the player keeps its previous heading.
	// Implementations must not mutate the state.
	TakeAction(state *gametypes.GameState, playerID gametypes.PlayerID) (gametypes.GameAction, bool)
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc func(state *gametypes.GameState, playerID gametypes.PlayerID) (gametypes.GameAction, bool)

func (f StrategyFunc) TakeAction(state *gametypes.GameState, playerID gametypes.PlayerID) (gametypes.GameAction, bool) {
	return f(state, playerID)
}

// NewForwardStrategy returns a strategy that always keeps going straight.
func NewForwardStrategy() Strategy {
	return StrategyFunc(func(state *gametypes.GameState, playerID gametypes.PlayerID) (gametypes.GameAction, bool) {
		return gametypes.GameActionForward, true
	})
}
