package strategy

import (
	"testing"
	"time"

	gametypes "github.com/ch1nq/arcadio-go/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlowStrategyRunner(t *testing.T) {
	release := make(chan struct{})
	inner := StrategyFunc(func(state *gametypes.GameState, playerID gametypes.PlayerID) (gametypes.GameAction, bool) {
		<-release
		return gametypes.GameActionLeft, true
	})
	runner := NewSlowStrategyRunner(NewSlowStrategyRunnerOptions{Inner: inner})
	state := gametypes.NewGameState()

	// The first tick starts the computation and yields no action.
	_, ok := runner.TakeAction(state, 1)
	require.False(t, ok)

	// Ticks keep passing without an action while the computation runs.
	for i := 0; i < 3; i++ {
		_, ok = runner.TakeAction(state, 1)
		require.False(t, ok)
	}

	close(release)

	// Once the computation finishes, its result comes back on a poll.
	var action gametypes.GameAction
	require.Eventually(t, func() bool {
		a, ok := runner.TakeAction(state, 1)
		if ok {
			action = a
		}
		return ok
	}, time.Second, time.Millisecond)
	assert.Equal(t, gametypes.GameActionLeft, action)

	// The runner is idle again: the next tick starts a fresh
	// computation and yields no action.
	_, ok = runner.TakeAction(state, 1)
	require.False(t, ok)
}

func TestSlowStrategyRunner_SnapshotsState(t *testing.T) {
	release := make(chan struct{})
	var seenTimestep int64
	inner := StrategyFunc(func(state *gametypes.GameState, playerID gametypes.PlayerID) (gametypes.GameAction, bool) {
		<-release
		seenTimestep = state.Timestep
		return gametypes.GameActionForward, true
	})
	runner := NewSlowStrategyRunner(NewSlowStrategyRunnerOptions{Inner: inner})

	state := gametypes.NewGameState()
	state.Timestep = 5

	_, ok := runner.TakeAction(state, 1)
	require.False(t, ok)

	// The run loop keeps merging while the computation is in flight.
	state.Timestep = 99
	close(release)

	require.Eventually(t, func() bool {
		_, ok := runner.TakeAction(state, 1)
		return ok
	}, time.Second, time.Millisecond)
	assert.Equal(t, int64(5), seenTimestep)
}
