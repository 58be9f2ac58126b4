package models

// Match is the stored record of one finished game from one bot's point
// of view.
type Match struct {
	// ID is the bot session UUID the match was played under.
	ID       string `json:"id"`
	Host     string `json:"host"`
	Strategy string `json:"strategy"`
	PlayerID int64  `json:"player_id"`
	// WinnerID is nil when the game ended in a draw.
	WinnerID   *int64 `json:"winner_id,omitempty"`
	Won        bool   `json:"won"`
	Timestep   int64  `json:"timestep"`
	Players    int    `json:"players"`
	StartedAt  int64  `json:"started_at"`
	DurationMs int64  `json:"duration_ms"`
}

// StrategyStats aggregates match outcomes per strategy.
type StrategyStats struct {
	Strategy string `json:"strategy"`
	Matches  int64  `json:"matches"`
	Wins     int64  `json:"wins"`
}
