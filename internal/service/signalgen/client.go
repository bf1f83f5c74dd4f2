package signalgen

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"aiwealth/internal/domain/models"
	drepo "aiwealth/internal/domain/repository"

	"github.com/gorilla/websocket"
)

// Client implements a ReportStream backed by the signal-generation
// backend's WebSocket feed.
type Client struct {
	apiKey         string
	websocketURL   string
	envs           []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	conn      *websocket.Conn
	connected bool
}

// New creates a new signal-generation ReportStream.
func New(apiKey, websocketURL string, envs []string, reconnectDelay, pingInterval time.Duration) drepo.ReportStream {
	return &Client{
		apiKey:         apiKey,
		websocketURL:   websocketURL,
		envs:           envs,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
	}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", c.websocketURL, c.apiKey)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("signalgen connect: %w", err)
	}
	c.conn = conn
	c.connected = true
	log.Printf("signalgen: connected")
	return nil
}

// Subscribe subscribes to report frames for the configured environments.
func (c *Client) Subscribe(ctx context.Context) error {
	if c.conn == nil || !c.connected {
		return fmt.Errorf("signalgen not connected")
	}
	for _, env := range c.envs {
		msg := map[string]string{"type": "subscribe", "channel": "reports", "env": env}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", env, err)
		}
		log.Printf("signalgen: subscribed %s", env)
	}
	return nil
}

type sgMessage struct {
	Type     string          `json:"type"`
	RunDate  string          `json:"run_date"`
	Env      string          `json:"env"`
	Received int64           `json:"received"` // ms
	Payload  json.RawMessage `json:"payload"`
}

// Read streams Report events and errors.
func (c *Client) Read(ctx context.Context) (<-chan *models.Report, <-chan error) {
	reports := make(chan *models.Report, 256)
	errs := make(chan error, 1)

	// ping loop
	go func() {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if c.conn != nil {
					_ = c.conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	// read loop
	go func() {
		defer close(reports)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				if c.conn == nil {
					errs <- fmt.Errorf("signalgen conn nil")
					return
				}
				_, b, err := c.conn.ReadMessage()
				if err != nil {
					errs <- fmt.Errorf("signalgen read: %w", err)
					return
				}
				var m sgMessage
				if err := json.Unmarshal(b, &m); err != nil {
					// ignore non-report frames
					continue
				}
				if m.Type != "report" || len(m.Payload) == 0 {
					continue
				}
				report := &models.Report{
					RunDate:  m.RunDate,
					Env:      string(drepo.NormalizeEnv(m.Env)),
					Received: m.Received / 1000,
					Payload:  []byte(m.Payload),
				}
				select {
				case reports <- report:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return reports, errs
}

// Reconnect closes and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	time.Sleep(c.reconnectDelay)
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.connected = false
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool { return c.connected }
