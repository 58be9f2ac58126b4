package types

type GameState struct {
	// Timestep is the server tick the state was last synchronized to
	Timestep int64 `json:"timestep"`
	// Players maps player IDs to player states
	Players map[PlayerID]*Player `json:"players"`
}

func NewGameState() *GameState {
	return &GameState{
		Timestep: 0,
		Players:  make(map[PlayerID]*Player),
	}
}

// MergeDiff applies an incremental update to the state in place.
//
// The timestep is overwritten with the diff's timestep unconditionally;
// ordering is trusted to the transport. For each player in the diff, the
// blobs of the diff body are appended to the player's body in order. A
// diff entry for a player that is not in the state, or an entry without a
// body, is skipped entirely. No other player field is applied here: the
// server only transmits new trail segments per tick, and the remaining
// attributes going stale is part of the wire contract.
func (g *GameState) MergeDiff(diff *GameStateDiff) {
	g.Timestep = diff.Timestep
	for id, playerDiff := range diff.Players {
		player, ok := g.Players[id]
		if !ok || playerDiff.Body == nil {
			continue
		}
		player.Body = append(player.Body, playerDiff.Body...)
	}
}

// Copy returns a deep copy of the game state.
func (g *GameState) Copy() *GameState {
	newGameState := &GameState{
		Timestep: g.Timestep,
		Players:  make(map[PlayerID]*Player),
	}
	for id, player := range g.Players {
		newGameState.Players[id] = player.Copy()
	}
	return newGameState
}

// AlivePlayers returns the number of players still alive.
func (g *GameState) AlivePlayers() int {
	alive := 0
	for _, player := range g.Players {
		if player.IsAlive {
			alive++
		}
	}
	return alive
}

// PlayerDiff carries the changed fields of one player for one tick.
// Nil fields are unchanged, not reset.
type PlayerDiff struct {
	IsAlive *bool `json:"is_alive"`
	Head    *Blob `json:"head"`
	// Body holds the trail segments added since the last tick. Nil
	// means absent, which skips the player during a merge.
	Body          []Blob      `json:"body"`
	Direction     *Angle      `json:"direction"`
	Speed         *float64    `json:"speed"`
	TurningSpeed  *float64    `json:"turning_speed"`
	Size          *float64    `json:"size"`
	Action        *GameAction `json:"action"`
	SkipFrequency *int64      `json:"skip_frequency"`
	SkipDuration  *int64      `json:"skip_duration"`
}

type GameStateDiff struct {
	Timestep int64                    `json:"timestep"`
	Players  map[PlayerID]*PlayerDiff `json:"players"`
}
