package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/PaulSilali/Paul-Silali-Football-Probability-Engine-sub002/internal/models"
)

// OddsTick is a live price update for one fixture.
type OddsTick struct {
	FixtureID  uuid.UUID
	Odds       models.MarketOdds
	ReceivedAt time.Time
}

// TickHandler is called for each odds tick received from the stream.
type TickHandler func(tick OddsTick) error

// ReconnectConfig controls reconnection behavior after a dropped connection.
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration.
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// StreamClient consumes live odds ticks over WebSocket so pipeline inputs
// stay current between full feed polls.
type StreamClient struct {
	streamURL       string
	apiKey          string
	mu              sync.RWMutex
	conn            *websocket.Conn
	isConnected     bool
	handlers        []TickHandler
	reconnectConfig ReconnectConfig
	lastMessageTime time.Time
	logger          *logrus.Logger
}

// streamMessage is the provider's stream envelope.
type streamMessage struct {
	Op        string  `json:"op"`
	FixtureID string  `json:"fixture_id,omitempty"`
	HomeOdds  *string `json:"home_odds,omitempty"`
	DrawOdds  *string `json:"draw_odds,omitempty"`
	AwayOdds  *string `json:"away_odds,omitempty"`
	Heartbeat bool    `json:"heartbeat,omitempty"`
}

// NewStreamClient creates a new live odds stream client.
func NewStreamClient(streamURL, apiKey string, logger *logrus.Logger) *StreamClient {
	if logger == nil {
		logger = logrus.New()
	}
	return &StreamClient{
		streamURL:       streamURL,
		apiKey:          apiKey,
		handlers:        make([]TickHandler, 0),
		reconnectConfig: DefaultReconnectConfig(),
		logger:          logger,
	}
}

// Connect establishes the WebSocket connection and starts the read loop.
func (s *StreamClient) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isConnected {
		return fmt.Errorf("already connected")
	}

	s.logger.WithField("url", s.streamURL).Info("Connecting to odds stream")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.streamURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to odds stream: %w", err)
	}

	s.conn = conn
	s.isConnected = true
	s.lastMessageTime = time.Now()

	go s.readMessages()

	return nil
}

// ConnectWithRetry connects with exponential backoff until the retry budget
// is spent or the context is done.
func (s *StreamClient) ConnectWithRetry(ctx context.Context) error {
	backoff := s.reconnectConfig.InitialBackoff
	var lastErr error

	for attempt := 0; attempt <= s.reconnectConfig.MaxRetries; attempt++ {
		if err := s.Connect(ctx); err == nil {
			if attempt > 0 {
				s.logger.WithField("attempt", attempt).Info("Odds stream reconnected")
			}
			return nil
		} else {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * s.reconnectConfig.BackoffMultiplier)
		if backoff > s.reconnectConfig.MaxBackoff {
			backoff = s.reconnectConfig.MaxBackoff
		}
	}

	return fmt.Errorf("odds stream connection failed after %d attempts: %w",
		s.reconnectConfig.MaxRetries+1, lastErr)
}

// Authenticate sends the credential handshake.
func (s *StreamClient) Authenticate(ctx context.Context) error {
	return s.sendMessage(map[string]interface{}{
		"op":      "auth",
		"api_key": s.apiKey,
	})
}

// Subscribe subscribes to odds ticks for the given fixtures.
func (s *StreamClient) Subscribe(ctx context.Context, fixtureIDs []uuid.UUID) error {
	ids := make([]string, len(fixtureIDs))
	for i, id := range fixtureIDs {
		ids[i] = id.String()
	}

	s.logger.WithField("fixtures", len(ids)).Info("Subscribing to odds stream")
	return s.sendMessage(map[string]interface{}{
		"op":          "subscribe",
		"fixture_ids": ids,
		"heartbeat":   true,
	})
}

// AddHandler registers a tick handler.
func (s *StreamClient) AddHandler(handler TickHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

func (s *StreamClient) readMessages() {
	defer s.Close()

	for {
		var msg streamMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			s.logger.WithError(err).Warn("Odds stream read error")
			s.mu.Lock()
			s.isConnected = false
			s.mu.Unlock()
			return
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		s.mu.Unlock()

		if msg.Heartbeat || msg.Op != "odds" {
			continue
		}

		tick, err := msg.toTick()
		if err != nil {
			s.logger.WithError(err).WithField("fixture_id", msg.FixtureID).Debug("Dropping malformed odds tick")
			continue
		}

		s.mu.RLock()
		handlers := s.handlers
		s.mu.RUnlock()

		for _, handler := range handlers {
			if err := handler(tick); err != nil {
				s.logger.WithError(err).Warn("Odds tick handler error")
			}
		}
	}
}

func (m streamMessage) toTick() (OddsTick, error) {
	id, err := uuid.Parse(m.FixtureID)
	if err != nil {
		return OddsTick{}, fmt.Errorf("bad fixture id %q: %w", m.FixtureID, err)
	}
	if m.HomeOdds == nil || m.DrawOdds == nil || m.AwayOdds == nil {
		return OddsTick{}, fmt.Errorf("%w: incomplete tick", ErrMalformedOdds)
	}

	parse := func(s string) (float64, error) {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrMalformedOdds, s)
		}
		f, _ := d.Float64()
		return f, nil
	}

	home, err := parse(*m.HomeOdds)
	if err != nil {
		return OddsTick{}, err
	}
	draw, err := parse(*m.DrawOdds)
	if err != nil {
		return OddsTick{}, err
	}
	away, err := parse(*m.AwayOdds)
	if err != nil {
		return OddsTick{}, err
	}

	odds := models.MarketOdds{Home: home, Draw: draw, Away: away}
	if !odds.Valid() {
		return OddsTick{}, fmt.Errorf("%w: prices must exceed 1.0", ErrMalformedOdds)
	}

	return OddsTick{FixtureID: id, Odds: odds, ReceivedAt: time.Now()}, nil
}

func (s *StreamClient) sendMessage(msg interface{}) error {
	s.mu.RLock()
	if !s.isConnected || s.conn == nil {
		s.mu.RUnlock()
		return fmt.Errorf("not connected")
	}
	conn := s.conn
	s.mu.RUnlock()

	return conn.WriteJSON(msg)
}

// IsConnected reports whether the stream is connected.
func (s *StreamClient) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// LastMessageTime returns when the last message arrived.
func (s *StreamClient) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessageTime
}

// Close closes the stream connection.
func (s *StreamClient) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	s.isConnected = false
	return s.conn.Close()
}
