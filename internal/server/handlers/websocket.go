// internal/server/handlers/websocket.go

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"

	"marketlens/internal/adapter/events"
	"marketlens/internal/domain/market"
)

// Subscriber is the part of a NATS connection the stream needs
type Subscriber interface {
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
}

// MarqueeSnapshot provides the marquee sent when a client connects
type MarqueeSnapshot interface {
	FetchMarquee(ctx context.Context) []market.MarqueeQuote
}

// WebSocketClient represents a connected WebSocket client
type WebSocketClient struct {
	conn              *websocket.Conn
	send              chan []byte
	done              chan struct{}
	once              sync.Once
	logger            *slog.Logger
	natsSubscriptions []*nats.Subscription
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4096,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// MarqueeWebSocketHandler streams market events to the dashboard. The client
// gets a marquee snapshot on connect and then every event published under
// subject. sub may be nil, in which case only the snapshot is sent.
func MarqueeWebSocketHandler(sub Subscriber, subject string, snapshot MarqueeSnapshot, log *slog.Logger) http.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("failed to upgrade to WebSocket", "error", err)
			return
		}

		client := &WebSocketClient{
			conn:   conn,
			send:   make(chan []byte, 64),
			done:   make(chan struct{}),
			logger: log,
		}

		// subscriptions are set before the pumps start so closeConnection
		// never races with them
		if sub != nil {
			s, err := sub.Subscribe(subject, func(msg *nats.Msg) {
				client.enqueue(msg.Data)
			})
			if err != nil {
				log.Warn("failed to subscribe to market events", "subject", subject, "error", err)
				conn.Close()
				return
			}
			client.natsSubscriptions = append(client.natsSubscriptions, s)
		}

		go client.writePump()
		go client.readPump()

		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()
		client.sendSnapshot(snapshot.FetchMarquee(ctx))

		log.Debug("new WebSocket connection", "remote", r.RemoteAddr)
	}
}

// enqueue drops the message when the client is slow or gone
func (c *WebSocketClient) enqueue(data []byte) {
	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.logger.Debug("dropping market event for slow client")
	}
}

func (c *WebSocketClient) sendSnapshot(quotes []market.MarqueeQuote) {
	data, err := json.Marshal(quotes)
	if err != nil {
		return
	}

	msg, err := json.Marshal(events.Envelope{
		Type: events.TypeMarquee,
		Time: time.Now().UTC(),
		Data: data,
	})
	if err != nil {
		return
	}
	c.enqueue(msg)
}

// readPump discards client messages and detects disconnects
func (c *WebSocketClient) readPump() {
	config := DefaultWebSocketConfig()

	defer c.closeConnection()

	c.conn.SetReadLimit(config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(config.PongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("WebSocket error", "error", err)
			}
			return
		}
	}
}

// writePump pumps queued events to the WebSocket connection
func (c *WebSocketClient) writePump() {
	config := DefaultWebSocketConfig()
	ticker := time.NewTicker(config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection unsubscribes from NATS and closes the connection once
func (c *WebSocketClient) closeConnection() {
	c.once.Do(func() {
		close(c.done)

		for _, sub := range c.natsSubscriptions {
			sub.Unsubscribe()
		}

		c.conn.Close()
		c.logger.Debug("WebSocket connection closed")
	})
}
