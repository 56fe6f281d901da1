// internal/adapter/events/nats.go

package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"marketlens/internal/config"
	"marketlens/internal/domain/market"
)

// Event types carried in the envelope
const (
	TypeSectorReport = "sector.report"
	TypeMarquee      = "marquee"
)

// Conn is the part of a NATS connection the publisher needs
type Conn interface {
	Publish(subject string, data []byte) error
}

// Envelope wraps every published payload
type Envelope struct {
	ID   string          `json:"id"`
	Type string          `json:"type"`
	Time time.Time       `json:"time"`
	Data json.RawMessage `json:"data"`
}

// Publisher publishes market snapshots to NATS subjects under a prefix
type Publisher struct {
	conn   Conn
	prefix string
}

// NewPublisher creates a new publisher. An empty prefix defaults to "market".
func NewPublisher(conn Conn, prefix string) *Publisher {
	if prefix == "" {
		prefix = "market"
	}
	return &Publisher{
		conn:   conn,
		prefix: prefix,
	}
}

// SectorSubject returns the subject sector reports for category are published on
func (p *Publisher) SectorSubject(category string) string {
	return fmt.Sprintf("%s.sector.%s", p.prefix, category)
}

// MarqueeSubject returns the subject marquee snapshots are published on
func (p *Publisher) MarqueeSubject() string {
	return p.prefix + ".marquee"
}

// AllSubjects returns a wildcard matching every subject of the publisher
func (p *Publisher) AllSubjects() string {
	return p.prefix + ".>"
}

// PublishSectorReport publishes a sector report
func (p *Publisher) PublishSectorReport(report market.SectorReport) error {
	return p.publish(p.SectorSubject(report.Category), TypeSectorReport, report)
}

// PublishMarquee publishes a marquee snapshot
func (p *Publisher) PublishMarquee(quotes []market.MarqueeQuote) error {
	return p.publish(p.MarqueeSubject(), TypeMarquee, quotes)
}

func (p *Publisher) publish(subject, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling %s payload: %w", eventType, err)
	}

	msg, err := json.Marshal(Envelope{
		ID:   uuid.NewString(),
		Type: eventType,
		Time: time.Now().UTC(),
		Data: data,
	})
	if err != nil {
		return fmt.Errorf("error marshaling %s envelope: %w", eventType, err)
	}

	if err := p.conn.Publish(subject, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// Connect opens a NATS connection with reconnect logging
func Connect(cfg config.NATSConfig, log *slog.Logger) (*nats.Conn, error) {
	if log == nil {
		log = slog.Default()
	}

	options := []nats.Option{
		nats.Name("marketlens"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
