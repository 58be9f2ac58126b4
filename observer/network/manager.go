package network

import (
	"context"
	"fmt"
	"sync"

	"github.com/ch1nq/arcadio-go/pkg/log"
	"github.com/ch1nq/arcadio-go/pkg/messages"
	gamenetwork "github.com/ch1nq/arcadio-go/pkg/network"
	"github.com/ch1nq/arcadio-go/pkg/queue"
)

// NetworkManager maintains the observer's connection to the game server
// and feeds decoded server events into a queue for the render loop to
// drain. Start and Stop are called from ebiten's update loop, which has
// no context of its own.
type NetworkManager struct {
	host               string
	port               int
	serverMessageQueue queue.Queue
	conn               gamenetwork.Connection
	errChan            chan error
	cancelClientCtx    context.CancelFunc
	clientWaitGroup    *sync.WaitGroup
}

// NewNetworkManager creates a new network manager.
func NewNetworkManager(host string, port int, messageQueue queue.Queue) *NetworkManager {
	return &NetworkManager{
		host:               host,
		port:               port,
		serverMessageQueue: messageQueue,
		errChan:            make(chan error, 1),
		clientWaitGroup:    &sync.WaitGroup{},
	}
}

// Start joins the server as an observer and starts receiving events in
// the background. Receive failures surface on ErrChan.
func (m *NetworkManager) Start() error {
	ctx, cancel := context.WithCancel(context.Background())

	conn, err := gamenetwork.Dial(ctx, m.host, m.port, gamenetwork.ClientTypeObserver)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to connect to the game server: %v", err)
	}
	m.conn = conn
	m.cancelClientCtx = cancel

	m.clientWaitGroup.Add(1)
	go func(ctx context.Context) {
		defer m.clientWaitGroup.Done()
		if err := m.receiveEvents(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			select {
			case m.errChan <- err:
			default:
			}
		}
	}(ctx)

	log.Info("Watching the game at %s:%d", m.host, m.port)

	return nil
}

func (m *NetworkManager) receiveEvents(ctx context.Context) error {
	for {
		b, err := m.conn.ReadMessage(ctx)
		if err != nil {
			return err
		}
		event, err := messages.DecodeServerEvent(b)
		if err != nil {
			return err
		}
		if err := m.serverMessageQueue.Enqueue(event); err != nil {
			log.Warn("Dropping %s event: %v", event.Type(), err)
		}
	}
}

// Stop stops the network manager and clears the server message queue.
func (m *NetworkManager) Stop() error {
	if m.cancelClientCtx == nil {
		log.Warn("Network manager already stopped")
		return nil
	}
	m.cancelClientCtx()
	m.conn.Close()

	log.Debug("Waiting for the receiver to stop")
	m.clientWaitGroup.Wait()
	if err := m.serverMessageQueue.ClearQueue(); err != nil {
		return fmt.Errorf("failed to clear server message queue: %v", err)
	}

	m.conn = nil
	m.cancelClientCtx = nil

	log.Info("Network manager stopped")

	return nil
}

func (m *NetworkManager) ServerMessageQueue() queue.Queue {
	return m.serverMessageQueue
}

func (m *NetworkManager) ErrChan() <-chan error {
	return m.errChan
}
