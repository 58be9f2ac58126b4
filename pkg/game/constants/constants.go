package constants

const (

	// ArenaWidth is the width of the server's arena
	ArenaWidth float64 = 1000.0
	// ArenaHeight is the height of the server's arena
	ArenaHeight float64 = 1000.0

	// The wire protocol carries neither the arena size nor the
	// collision rules, so clients that need them mirror the server.

	// SelfCollisionGrace is how many of a player's newest trail blobs
	// the server ignores when checking self collisions
	SelfCollisionGrace int = 10
)
