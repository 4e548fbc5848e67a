package ethereum

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// HeadSubscriberConfig configures the new-head subscription client.
type HeadSubscriberConfig struct {
	// ReconnectDelay is initial delay before a reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultHeadSubscriberConfig returns default subscription configuration.
func DefaultHeadSubscriberConfig() HeadSubscriberConfig {
	return HeadSubscriberConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// HeadSubscriber maintains an eth_subscribe("newHeads") stream over a
// WebSocket endpoint. It is used to wake receipt polling as soon as a new
// block arrives instead of waiting out the full poll interval; losing a
// notification is harmless because polling continues on its timer anyway.
type HeadSubscriber struct {
	endpoint string
	config   HeadSubscriberConfig

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	heads chan struct{}
	done  chan struct{}
	wg    sync.WaitGroup
}

// NewHeadSubscriber connects to the endpoint, subscribes to new heads, and
// starts the read loop.
func NewHeadSubscriber(ctx context.Context, endpoint string, config *HeadSubscriberConfig) (*HeadSubscriber, error) {
	cfg := DefaultHeadSubscriberConfig()
	if config != nil {
		cfg = *config
	}

	s := &HeadSubscriber{
		endpoint: endpoint,
		config:   cfg,
		heads:    make(chan struct{}, 1),
		done:     make(chan struct{}),
	}

	if err := s.connect(ctx); err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go s.readLoop()

	return s, nil
}

// Heads returns the notification channel. It carries at most one pending
// signal; coalescing is fine since a signal only means "worth polling now".
func (s *HeadSubscriber) Heads() <-chan struct{} {
	return s.heads
}

// connect dials the endpoint and sends the subscribe request.
func (s *HeadSubscriber) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      s.requestID.Add(1),
		Method:  "eth_subscribe",
		Params:  []interface{}{"newHeads"},
	}

	conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := conn.WriteJSON(req); err != nil {
		conn.Close()
		return fmt.Errorf("write subscribe: %w", err)
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()
	return nil
}

// wsMessage covers both subscription confirmations and notifications.
type wsMessage struct {
	ID     uint64          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

// readLoop reads messages and signals on every new-head notification,
// reconnecting with backoff when the connection drops.
func (s *HeadSubscriber) readLoop() {
	defer s.wg.Done()

	delay := s.config.ReconnectDelay

	for !s.closed.Load() {
		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if conn == nil {
			select {
			case <-s.done:
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > s.config.MaxReconnectDelay {
				delay = s.config.MaxReconnectDelay
			}
			if err := s.connect(context.Background()); err != nil {
				continue
			}
			delay = s.config.ReconnectDelay
			continue
		}

		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			conn.Close()
			s.connMu.Lock()
			s.conn = nil
			s.connMu.Unlock()
			continue
		}

		if msg.Method != "eth_subscription" {
			continue
		}

		// Coalesce: drop the signal if one is already pending.
		select {
		case s.heads <- struct{}{}:
		default:
		}
	}
}

// Close shuts down the subscription and the read loop.
func (s *HeadSubscriber) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	close(s.done)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
		s.conn = nil
	}
	s.connMu.Unlock()

	s.wg.Wait()
	return nil
}
