package strategy

import (
	gametypes "github.com/ch1nq/arcadio-go/pkg/game/types"
)

// SlowStrategyRunner wraps a strategy whose decisions can take longer
// than a server tick. At most one computation is in flight at a time:
// while one runs, ticks pass with no action, and the result of a
// finished computation is returned on the next tick, after which the
// runner is idle again and will start a new computation.
//
// The runner belongs to a single run loop; it is not safe for use from
// multiple goroutines.
type SlowStrategyRunner struct {
	inner Strategy
	job   *strategyJob
}

// strategyJob is one in-flight decision. The worker goroutine writes
// the result and closes done exactly once; the runner reads the result
// only after done is closed.
type strategyJob struct {
	done   chan struct{}
	action gametypes.GameAction
	ok     bool
}

type NewSlowStrategyRunnerOptions struct {
	Inner Strategy
}

func NewSlowStrategyRunner(opts NewSlowStrategyRunnerOptions) *SlowStrategyRunner {
	return &SlowStrategyRunner{
		inner: opts.Inner,
	}
}

// TakeAction polls the in-flight computation without blocking. With no
// computation running, it starts one on a snapshot of the state and
// reports no action for this tick. There is no cancellation: a
// computation that never finishes parks the runner in its pending state
// and every later tick is skipped.
func (r *SlowStrategyRunner) TakeAction(state *gametypes.GameState, playerID gametypes.PlayerID) (gametypes.GameAction, bool) {
	if r.job == nil {
		job := &strategyJob{done: make(chan struct{})}
		r.job = job
		// The run loop keeps merging diffs into the live state while
		// the worker runs, so the worker gets its own copy.
		snapshot := state.Copy()
		go func() {
			job.action, job.ok = r.inner.TakeAction(snapshot, playerID)
			close(job.done)
		}()
		return "", false
	}

	select {
	case <-r.job.done:
		action, ok := r.job.action, r.job.ok
		r.job = nil
		return action, ok
	default:
		return "", false
	}
}
