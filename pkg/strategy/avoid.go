package strategy

import (
	"math"

	"github.com/ch1nq/arcadio-go/pkg/collisions"
	"github.com/ch1nq/arcadio-go/pkg/game/constants"
	gametypes "github.com/ch1nq/arcadio-go/pkg/game/types"
)

// defaultProbeTicks is how many ticks ahead each candidate heading is
// simulated.
const defaultProbeTicks = 15

// AvoidStrategy steers away from trails and the arena border. Each tick
// it rebuilds a collision space from every player's trail and simulates
// the next few ticks for each candidate action, picking the one that
// stays clear the longest. Forward wins ties so the path stays smooth.
type AvoidStrategy struct {
	probeTicks int
}

type NewAvoidStrategyOptions struct {
	// ProbeTicks is how many ticks ahead each candidate action is
	// simulated. Zero means the default.
	ProbeTicks int
}

func NewAvoidStrategy(opts NewAvoidStrategyOptions) *AvoidStrategy {
	probeTicks := opts.ProbeTicks
	if probeTicks <= 0 {
		probeTicks = defaultProbeTicks
	}
	return &AvoidStrategy{
		probeTicks: probeTicks,
	}
}

func (s *AvoidStrategy) TakeAction(state *gametypes.GameState, playerID gametypes.PlayerID) (gametypes.GameAction, bool) {
	me, ok := state.Players[playerID]
	if !ok || !me.IsAlive {
		return "", false
	}

	pos, heading := effectiveHead(me)
	space := collisions.NewTrailSpace(state, playerID, constants.SelfCollisionGrace)

	candidates := []gametypes.GameAction{
		gametypes.GameActionForward,
		gametypes.GameActionLeft,
		gametypes.GameActionRight,
	}
	best := gametypes.GameActionForward
	bestScore := -1
	for _, candidate := range candidates {
		score := s.probeHeading(space, pos, heading, turnFor(candidate, me.TurningSpeed), me.Speed, me.Size)
		if candidate == gametypes.GameActionForward && score == s.probeTicks {
			// Straight ahead is clear for the whole horizon.
			return gametypes.GameActionForward, true
		}
		if score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best, true
}

// turnFor returns the per-tick heading change for an action. Left turns
// are negative, matching the server's steering.
func turnFor(action gametypes.GameAction, turningSpeed float64) float64 {
	switch action {
	case gametypes.GameActionLeft:
		return -turningSpeed
	case gametypes.GameActionRight:
		return turningSpeed
	default:
		return 0
	}
}

// effectiveHead returns the player's freshest known position and
// heading. Only the trail grows after the initial snapshot, so the
// snapshot head goes stale immediately; the newest trail blobs are the
// real signal.
func effectiveHead(player *gametypes.Player) (gametypes.Position, gametypes.Angle) {
	n := len(player.Body)
	if n == 0 {
		return player.Head.Position, player.Direction
	}
	last := player.Body[n-1].Position
	if n == 1 || last == player.Body[n-2].Position {
		return last, player.Direction
	}
	prev := player.Body[n-2].Position
	return last, gametypes.Angle{Radians: math.Atan2(last.Y-prev.Y, last.X-prev.X)}
}

// probeHeading simulates ticks along a candidate heading and returns
// how many of them stay clear.
func (s *AvoidStrategy) probeHeading(space *collisions.TrailSpace, pos gametypes.Position, heading gametypes.Angle, turn, speed, size float64) int {
	for tick := 0; tick < s.probeTicks; tick++ {
		heading = heading.Turned(turn)
		pos = pos.Step(heading, speed)
		if space.Blocked(pos, size) {
			return tick
		}
	}
	return s.probeTicks
}
