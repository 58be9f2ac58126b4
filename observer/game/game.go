package game

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/ch1nq/arcadio-go/observer/fonts"
	"github.com/ch1nq/arcadio-go/observer/network"
	"github.com/ch1nq/arcadio-go/pkg/game/constants"
	gametypes "github.com/ch1nq/arcadio-go/pkg/game/types"
	"github.com/ch1nq/arcadio-go/pkg/log"
	"github.com/ch1nq/arcadio-go/pkg/messages"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

const (
	// ScreenWidth and ScreenHeight match the server's arena, so blob
	// positions map to screen pixels directly.
	ScreenWidth  = int(constants.ArenaWidth)
	ScreenHeight = int(constants.ArenaHeight)
)

type GameMode int

const (
	GameModeConnecting GameMode = iota
	GameModeWatching
	GameModeOver
	GameModeNetworkError
)

func (m GameMode) String() string {
	switch m {
	case GameModeConnecting:
		return "Connecting"
	case GameModeWatching:
		return "Watching"
	case GameModeOver:
		return "Over"
	case GameModeNetworkError:
		return "NetworkError"
	}
	return "Unknown"
}

var backgroundColor = color.RGBA{16, 16, 24, 255}

// playerPalette colors players by id. Ids beyond the palette wrap around.
var playerPalette = []color.RGBA{
	{230, 70, 70, 255},
	{70, 160, 230, 255},
	{90, 200, 90, 255},
	{240, 200, 70, 255},
	{200, 90, 220, 255},
	{70, 220, 210, 255},
	{240, 140, 60, 255},
	{240, 240, 240, 255},
}

func playerColor(id gametypes.PlayerID) color.RGBA {
	idx := int(id) % len(playerPalette)
	if idx < 0 {
		idx += len(playerPalette)
	}
	return playerPalette[idx]
}

// Game implements ebiten.Game interface, which has Update, Draw and Layout methods.
type Game struct {
	// networkManager is the network manager.
	networkManager *network.NetworkManager
	// gameState is the watched game state, nil until the initial state arrives.
	gameState *gametypes.GameState
	// winner is set when the game ends. Nil means a draw.
	winner *gametypes.PlayerID
	// mode is the current game mode.
	mode GameMode
	// touchIDs is the last touch identifiers.
	touchIDs []ebiten.TouchID
}

func NewGame(networkManager *network.NetworkManager) ebiten.Game {
	return &Game{
		networkManager: networkManager,
		mode:           GameModeConnecting,
	}
}

// isKeyJustPressed returns a boolean value indicating whether the generic input is just pressed.
// This is used to handle both keyboard and touch inputs.
func (g *Game) isKeyJustPressed() bool {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		return true
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return true
	}
	g.touchIDs = inpututil.AppendJustPressedTouchIDs(g.touchIDs[:0])
	return len(g.touchIDs) > 0
}

func (g *Game) Update() error {
	switch g.mode {
	case GameModeConnecting:
		if err := g.networkManager.Start(); err != nil {
			log.Error("Failed to start network manager: %v", err)
			g.mode = GameModeNetworkError
			break
		}
		g.mode = GameModeWatching
	case GameModeWatching:
		if err := g.processServerEvents(); err != nil {
			return err
		}
		if g.mode != GameModeWatching {
			break
		}
		if err := g.validateNetworkManager(); err != nil {
			log.Error("Network manager error: %v", err)
			g.networkManager.Stop()
			g.mode = GameModeNetworkError
		}
	case GameModeOver:
		if g.isKeyJustPressed() {
			g.reset()
		}
	case GameModeNetworkError:
		if g.isKeyJustPressed() {
			g.reset()
		}
	}

	return nil
}

func (g *Game) processServerEvents() error {
	serverEvents, err := g.networkManager.ServerMessageQueue().ReadAllMessages()
	if err != nil {
		return fmt.Errorf("failed to read server events: %v", err)
	}

	for _, item := range serverEvents {
		event, ok := item.(messages.ServerEvent)
		if !ok {
			log.Error("Failed to cast queue item to a server event")
			continue
		}

		switch e := event.(type) {
		case messages.InitialState:
			log.Info("Watching a game with %d players at timestep %d", len(e.State.Players), e.State.Timestep)
			g.gameState = e.State
		case messages.UpdateState:
			if g.gameState == nil {
				log.Warn("Dropping an update that arrived before the initial state")
				continue
			}
			g.gameState.MergeDiff(e.Diff)
		case messages.GameOver:
			g.winner = e.Winner
			g.mode = GameModeOver
			if g.winner != nil {
				log.Info("Game over at timestep %d: player %d wins", g.timestep(), *g.winner)
			} else {
				log.Info("Game over at timestep %d: draw", g.timestep())
			}
		default:
			log.Debug("Ignoring %s event", event.Type())
		}
	}

	return nil
}

func (g *Game) validateNetworkManager() error {
	select {
	case err := <-g.networkManager.ErrChan():
		return err
	default:
		return nil
	}
}

// reset disconnects and goes back to connecting, ready for the next game.
func (g *Game) reset() {
	if err := g.networkManager.Stop(); err != nil {
		log.Error("Failed to stop network manager: %v", err)
	}
	g.gameState = nil
	g.winner = nil
	g.mode = GameModeConnecting
}

func (g *Game) timestep() int64 {
	if g.gameState == nil {
		return 0
	}
	return g.gameState.Timestep
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	if g.gameState != nil {
		g.drawGameState(screen)
	}

	switch g.mode {
	case GameModeConnecting:
		g.drawBanner(screen, "CONNECTING...")
	case GameModeOver:
		if g.winner != nil {
			g.drawBanner(screen, fmt.Sprintf("PLAYER %d WINS", *g.winner))
		} else {
			g.drawBanner(screen, "DRAW")
		}
	case GameModeNetworkError:
		g.drawBanner(screen, "CONNECTION LOST")
	}
}

func (g *Game) drawGameState(screen *ebiten.Image) {
	ids := make([]gametypes.PlayerID, 0, len(g.gameState.Players))
	for id := range g.gameState.Players {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		player := g.gameState.Players[id]
		clr := playerColor(id)
		for _, blob := range player.Body {
			vector.DrawFilledCircle(screen, float32(blob.Position.X), float32(blob.Position.Y), float32(blob.Size), clr, true)
		}
		// The server only appends trail blobs after the initial state,
		// so the newest blob stands in for the head.
		if player.IsAlive && len(player.Body) > 0 {
			head := player.Body[len(player.Body)-1]
			vector.DrawFilledCircle(screen, float32(head.Position.X), float32(head.Position.Y), float32(head.Size)/2, color.White, true)
		}
	}

	ebitenutil.DebugPrint(screen, fmt.Sprintf("timestep %d | %d/%d alive | FPS %0.2f",
		g.gameState.Timestep, g.gameState.AlivePlayers(), len(g.gameState.Players), ebiten.ActualFPS()))

	for i, id := range ids {
		player := g.gameState.Players[id]
		status := "alive"
		if !player.IsAlive {
			status = "dead"
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(16, float64(48+i*24))
		op.ColorScale.ScaleWithColor(playerColor(id))
		text.DrawWithOptions(screen, fmt.Sprintf("player %d: %s", id, status), fonts.HUDFont, op)
	}
}

func (g *Game) drawBanner(screen *ebiten.Image, t string) {
	bounds, _ := font.BoundString(fonts.BannerFont, t)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(ScreenWidth)/2-float64(bounds.Max.X>>6)/2, float64(ScreenHeight)/2-float64(bounds.Max.Y>>6)/2)
	op.ColorScale.ScaleWithColor(color.White)
	text.DrawWithOptions(screen, t, fonts.BannerFont, op)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return ScreenWidth, ScreenHeight
}
