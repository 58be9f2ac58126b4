package types

import "math"

// PlayerID identifies a player within one game session.
type PlayerID int64

// BlobID identifies a blob within one game session.
type BlobID int64

type GameAction string

const (
	GameActionLeft    GameAction = "Left"
	GameActionRight   GameAction = "Right"
	GameActionForward GameAction = "Forward"
)

// Valid reports whether the action is one of the wire actions.
func (a GameAction) Valid() bool {
	switch a {
	case GameActionLeft, GameActionRight, GameActionForward:
		return true
	default:
		return false
	}
}

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Step returns the position moved distance units along the heading.
func (p Position) Step(heading Angle, distance float64) Position {
	return Position{
		X: p.X + math.Cos(heading.Radians)*distance,
		Y: p.Y + math.Sin(heading.Radians)*distance,
	}
}

// DistanceTo returns the euclidean distance to the other position.
func (p Position) DistanceTo(other Position) float64 {
	return math.Hypot(other.X-p.X, other.Y-p.Y)
}

// Angle is a heading in radians.
type Angle struct {
	Radians float64 `json:"radians"`
}

// Turned returns the angle rotated by delta radians.
func (a Angle) Turned(delta float64) Angle {
	return Angle{Radians: a.Radians + delta}
}

// Blob is one segment of a player's trail or head. Blobs are owned
// exclusively by the player that contains them.
type Blob struct {
	ID       BlobID   `json:"id"`
	Size     float64  `json:"size"`
	Position Position `json:"position"`
}

type Player struct {
	IsAlive bool `json:"is_alive"`
	// Head is the blob the player steers.
	Head Blob `json:"head"`
	// Body is the player's trail, oldest to newest. The order is
	// significant and must be preserved.
	Body          []Blob     `json:"body"`
	Direction     Angle      `json:"direction"`
	Speed         float64    `json:"speed"`
	TurningSpeed  float64    `json:"turning_speed"`
	Size          float64    `json:"size"`
	Action        GameAction `json:"action"`
	SkipFrequency int64      `json:"skip_frequency"`
	SkipDuration  int64      `json:"skip_duration"`
}

// Copy returns a copy of the player with its own body slice.
func (p *Player) Copy() *Player {
	newPlayer := *p
	newPlayer.Body = append([]Blob(nil), p.Body...)
	return &newPlayer
}
