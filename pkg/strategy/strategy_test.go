package strategy

import (
	"testing"

	gametypes "github.com/ch1nq/arcadio-go/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardStrategy(t *testing.T) {
	s := NewForwardStrategy()
	state := gametypes.NewGameState()

	for i := 0; i < 3; i++ {
		action, ok := s.TakeAction(state, 1)
		require.True(t, ok)
		assert.Equal(t, gametypes.GameActionForward, action)
	}
}

func TestRandomStrategy(t *testing.T) {
	s := NewRandomStrategy(NewRandomStrategyOptions{Seed: 42})
	state := gametypes.NewGameState()

	seen := map[gametypes.GameAction]bool{}
	for i := 0; i < 100; i++ {
		action, ok := s.TakeAction(state, 1)
		require.True(t, ok)
		require.True(t, action.Valid(), "unexpected action %q", action)
		seen[action] = true
	}
	assert.Len(t, seen, 3, "expected all actions to show up")
}
