// Package events publishes mind map lifecycle notifications.
//
// Events are fire-and-forget. A failed publish is reported to the caller but
// never undoes the operation that produced it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// Event types.
const (
	TypeMindMapCreated = "mindmap.created"
	TypeSessionOpened  = "session.opened"
	TypeSessionClosed  = "session.closed"
)

// DefaultSubjectPrefix is prepended to the event type to form the subject.
const DefaultSubjectPrefix = "mindmapd"

// Event is one notification.
type Event struct {
	Type      string    `json:"type"`
	MindMapID string    `json:"mindmap_id"`
	SessionID string    `json:"session_id,omitempty"`
	Title     string    `json:"title,omitempty"`
	Time      time.Time `json:"time"`
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Config configures event publishing. An empty NATSURL disables it.
type Config struct {
	NATSURL       string `koanf:"nats_url"`
	SubjectPrefix string `koanf:"subject_prefix"`
}

// New returns a NATS publisher when a URL is configured and a no-op
// publisher otherwise.
func New(cfg Config, logger *zap.Logger) (Publisher, error) {
	if cfg.NATSURL == "" {
		return Nop{}, nil
	}
	nc, err := nats.Connect(cfg.NATSURL,
		nats.Name("mindmapd"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATSURL, err)
	}
	if logger != nil {
		logger.Info("connected to NATS", zap.String("url", cfg.NATSURL))
	}
	return NewNATS(nc, cfg.SubjectPrefix), nil
}

// NATS publishes JSON events on "<prefix>.<type>".
type NATS struct {
	nc     *nats.Conn
	prefix string
}

// NewNATS wraps an established connection. The publisher owns nc.
func NewNATS(nc *nats.Conn, prefix string) *NATS {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATS{nc: nc, prefix: prefix}
}

// Subject returns the subject an event type is published on.
func (p *NATS) Subject(eventType string) string {
	return p.prefix + "." + eventType
}

func (p *NATS) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.nc.Publish(p.Subject(e.Type), data); err != nil {
		return fmt.Errorf("publish %s event: %w", e.Type, err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATS) Close() error {
	return p.nc.Drain()
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

var (
	_ Publisher = (*NATS)(nil)
	_ Publisher = Nop{}
)
