package fleet

import (
	"context"
	"fmt"
	"time"

	"github.com/ch1nq/arcadio-go/pkg/client"
	"github.com/ch1nq/arcadio-go/pkg/log"
	"github.com/ch1nq/arcadio-go/pkg/replay"
	"github.com/ch1nq/arcadio-go/pkg/repositories/models"
	"github.com/google/uuid"
	"github.com/hako/durafmt"
)

// sessionInfo is the mutable status of one bot, guarded by the
// manager's lock. timestep and lastWinner describe the most recently
// finished game.
type sessionInfo struct {
	botID      int
	session    string
	state      string
	games      int64
	wins       int64
	timestep   int64
	lastWinner *int64
}

func (m *Manager) setSession(botID int, session, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[botID].session = session
	m.sessions[botID].state = state
}

func (m *Manager) setState(botID int, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[botID].state = state
}

func (m *Manager) recordResult(botID int, result *client.GameResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.sessions[botID]
	s.games++
	if result.Won {
		s.wins++
	}
	s.timestep = result.Timestep
	s.lastWinner = nil
	if result.Winner != nil {
		winnerID := int64(*result.Winner)
		s.lastWinner = &winnerID
	}
}

// runBot plays games until the context is cancelled. Failures are
// logged and the next session starts once the limiter allows it, so a
// restarting server just shows up as a burst of reconnects.
func (m *Manager) runBot(ctx context.Context, botID int) {
	for {
		if err := m.limiter.Wait(ctx); err != nil {
			m.setState(botID, SessionStateStopped)
			return
		}

		sessionID := uuid.New().String()
		if err := m.playGame(ctx, botID, sessionID); err != nil {
			if ctx.Err() == nil {
				log.Error("Bot %d session %s: %v", botID, sessionID, err)
			}
		}

		if !m.reconnect || ctx.Err() != nil {
			m.setState(botID, SessionStateStopped)
			return
		}
	}
}

func (m *Manager) playGame(ctx context.Context, botID int, sessionID string) error {
	m.setSession(botID, sessionID, SessionStateConnecting)

	var recorder *replay.Recorder
	if m.replayDir != "" {
		r, err := replay.NewFileRecorder(m.replayDir, sessionID)
		if err != nil {
			return err
		}
		recorder = r
		defer func() {
			if err := recorder.Close(); err != nil {
				log.Warn("Failed to close journal for session %s: %v", sessionID, err)
			}
		}()
	}

	var result *client.GameResult
	opts := client.NewGameClientOptions{
		Strategy:       m.newStrategy(),
		RequestUpdates: m.requestUpdates,
		OnGameOver: func(r client.GameResult) {
			result = &r
		},
	}
	if recorder != nil {
		opts.Recorder = recorder
	}
	gameClient := client.NewGameClient(opts)

	if err := m.dials.AddWithContext(ctx); err != nil {
		return err
	}
	started := time.Now()
	connected, err := gameClient.Connect(ctx, m.host, m.port)
	m.dials.Done()
	if err != nil {
		return err
	}

	m.setState(botID, SessionStatePlaying)
	if err := connected.Run(ctx); err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("game ended without a result")
	}

	duration := time.Since(started)
	m.recordResult(botID, result)
	log.Info("Bot %d played %s as player %d for %s (won: %t)",
		botID, sessionID, result.PlayerID, durafmt.Parse(duration.Round(time.Millisecond)).LimitFirstN(2), result.Won)

	if m.saveMatchChan != nil {
		match := &models.Match{
			ID:         sessionID,
			Host:       fmt.Sprintf("%s:%d", m.host, m.port),
			Strategy:   m.strategyName,
			PlayerID:   int64(result.PlayerID),
			Won:        result.Won,
			Timestep:   result.Timestep,
			Players:    result.Players,
			StartedAt:  started.UnixMilli(),
			DurationMs: duration.Milliseconds(),
		}
		if result.Winner != nil {
			winnerID := int64(*result.Winner)
			match.WinnerID = &winnerID
		}
		select {
		case m.saveMatchChan <- SaveMatchRequest{Match: match}:
		case <-ctx.Done():
		}
	}
	return nil
}
