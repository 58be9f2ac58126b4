package fleet

import (
	"context"
	"fmt"
	"sync"

	"github.com/ch1nq/arcadio-go/pkg/log"
	"github.com/ch1nq/arcadio-go/pkg/strategy"
	"github.com/remeh/sizedwaitgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultMaxConnectsPerSecond = 10
	DefaultMaxConcurrentDials   = 8
)

// Manager runs a fleet of bot sessions against one game server. Each
// bot plays games in a loop, one fresh session per game, with dials
// paced by a limiter shared across the fleet.
type Manager struct {
	host           string
	port           int
	numBots        int
	strategyName   string
	newStrategy    func() strategy.Strategy
	requestUpdates bool
	reconnect      bool
	replayDir      string
	saveMatchChan  chan<- SaveMatchRequest
	limiter        *rate.Limiter
	dials          sizedwaitgroup.SizedWaitGroup

	mu       sync.RWMutex
	sessions []*sessionInfo
}

type NewManagerOptions struct {
	// Host and Port locate the game server.
	Host string
	Port int
	// NumBots is the number of concurrent bot sessions.
	NumBots int
	// StrategyName labels the strategy in logs, status and saved matches.
	StrategyName string
	// NewStrategy builds one strategy instance per session. Strategies
	// carry per-game state, so sessions never share an instance.
	NewStrategy func() strategy.Strategy
	// RequestUpdates makes bots pull updates instead of having them
	// pushed.
	RequestUpdates bool
	// Reconnect makes bots start a new session when a game ends or the
	// connection drops.
	Reconnect bool
	// ReplayDir enables journal recording into the directory when set.
	ReplayDir string
	// SaveMatchChan receives one request per finished game when set.
	SaveMatchChan chan<- SaveMatchRequest
	// MaxConnectsPerSecond paces dials across the whole fleet.
	MaxConnectsPerSecond float64
	// MaxConcurrentDials bounds dials that are in flight at once.
	MaxConcurrentDials int
}

func NewManager(opts NewManagerOptions) *Manager {
	if opts.NumBots <= 0 {
		opts.NumBots = 1
	}
	if opts.NewStrategy == nil {
		opts.NewStrategy = strategy.NewForwardStrategy
	}
	if opts.StrategyName == "" {
		opts.StrategyName = "forward"
	}
	if opts.MaxConnectsPerSecond <= 0 {
		opts.MaxConnectsPerSecond = DefaultMaxConnectsPerSecond
	}
	if opts.MaxConcurrentDials <= 0 {
		opts.MaxConcurrentDials = DefaultMaxConcurrentDials
	}

	sessions := make([]*sessionInfo, opts.NumBots)
	for i := range sessions {
		sessions[i] = &sessionInfo{
			botID: i,
			state: SessionStateIdle,
		}
	}

	return &Manager{
		host:           opts.Host,
		port:           opts.Port,
		numBots:        opts.NumBots,
		strategyName:   opts.StrategyName,
		newStrategy:    opts.NewStrategy,
		requestUpdates: opts.RequestUpdates,
		reconnect:      opts.Reconnect,
		replayDir:      opts.ReplayDir,
		saveMatchChan:  opts.SaveMatchChan,
		limiter:        rate.NewLimiter(rate.Limit(opts.MaxConnectsPerSecond), 1),
		dials:          sizedwaitgroup.New(opts.MaxConcurrentDials),
		sessions:       sessions,
	}
}

// Start runs all bots and blocks until they stop. Bots stop when the
// context is cancelled, or after their first game when reconnecting is
// disabled.
func (m *Manager) Start(ctx context.Context) {
	log.Info("Starting %d bots against %s:%d with strategy %s", m.numBots, m.host, m.port, m.strategyName)
	wg := sync.WaitGroup{}
	for i := 0; i < m.numBots; i++ {
		wg.Add(1)
		go func(botID int) {
			defer wg.Done()
			m.runBot(ctx, botID)
		}(i)
	}
	wg.Wait()
	log.Info("All bots stopped")
}

// Status is a point-in-time snapshot of the fleet.
type Status struct {
	Host     string          `json:"host"`
	Strategy string          `json:"strategy"`
	NumBots  int             `json:"num_bots"`
	Games    int64           `json:"games"`
	Wins     int64           `json:"wins"`
	Sessions []SessionStatus `json:"sessions"`
}

// SessionStatus describes one bot. Timestep and LastWinner come from
// its most recently finished game; LastWinner is nil after a draw.
type SessionStatus struct {
	BotID      int    `json:"bot_id"`
	Session    string `json:"session,omitempty"`
	State      string `json:"state"`
	Games      int64  `json:"games"`
	Wins       int64  `json:"wins"`
	Timestep   int64  `json:"timestep"`
	LastWinner *int64 `json:"last_winner,omitempty"`
}

const (
	SessionStateIdle       = "idle"
	SessionStateConnecting = "connecting"
	SessionStatePlaying    = "playing"
	SessionStateStopped    = "stopped"
)

func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := Status{
		Host:     fmt.Sprintf("%s:%d", m.host, m.port),
		Strategy: m.strategyName,
		NumBots:  m.numBots,
		Sessions: make([]SessionStatus, 0, len(m.sessions)),
	}
	for _, s := range m.sessions {
		status.Games += s.games
		status.Wins += s.wins
		status.Sessions = append(status.Sessions, SessionStatus{
			BotID:      s.botID,
			Session:    s.session,
			State:      s.state,
			Games:      s.games,
			Wins:       s.wins,
			Timestep:   s.timestep,
			LastWinner: s.lastWinner,
		})
	}
	return status
}
