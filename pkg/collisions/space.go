package collisions

import (
	"github.com/ch1nq/arcadio-go/pkg/game/constants"
	gametypes "github.com/ch1nq/arcadio-go/pkg/game/types"
	"github.com/solarlune/resolv"
)

const cellSize = 16

// TrailSpace indexes everything that kills a player's head: every
// trail blob in the game plus the arena border.
type TrailSpace struct {
	space  *resolv.Space
	trails []*resolv.Object
}

// NewTrailSpace builds a collision space from the state. The newest
// ignoreLatest blobs of the self player's trail are left out, matching
// the grace the server grants for self collisions.
func NewTrailSpace(state *gametypes.GameState, self gametypes.PlayerID, ignoreLatest int) *TrailSpace {
	space := resolv.NewSpace(int(constants.ArenaWidth), int(constants.ArenaHeight), cellSize, cellSize)
	var trails []*resolv.Object
	for id, player := range state.Players {
		body := player.Body
		if id == self {
			if len(body) <= ignoreLatest {
				continue
			}
			body = body[:len(body)-ignoreLatest]
		}
		for i := range body {
			blob := &body[i]
			obj := resolv.NewObject(blob.Position.X-blob.Size, blob.Position.Y-blob.Size, blob.Size*2, blob.Size*2)
			obj.Data = blob
			space.Add(obj)
			trails = append(trails, obj)
		}
	}
	return &TrailSpace{
		space:  space,
		trails: trails,
	}
}

// Blocked reports whether a head of the given size at pos is dead: out
// of the arena or touching a trail. The server kills on the head's
// center leaving the arena, not its edge.
func (s *TrailSpace) Blocked(pos gametypes.Position, size float64) bool {
	if pos.X < 0 || pos.X > constants.ArenaWidth || pos.Y < 0 || pos.Y > constants.ArenaHeight {
		return true
	}

	probe := resolv.NewObject(pos.X-size, pos.Y-size, size*2, size*2)
	s.space.Add(probe)
	defer s.space.Remove(probe)
	for _, trail := range s.trails {
		if !probe.SharesCells(trail) {
			continue
		}
		// Cells are coarse; confirm with the actual distance.
		blob := trail.Data.(*gametypes.Blob)
		if pos.DistanceTo(blob.Position) < size+blob.Size {
			return true
		}
	}
	return false
}
