package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/airportdist/internal/core/domain"
)

const (
	// StreamName is the JetStream stream holding airport dataset events.
	StreamName = "AIRPORT_EVENTS"

	subjectIngested = "airports.ingested."
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := &nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{"airports.>"},
		Retention: nats.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishAirportsIngested announces a finished ingest on
// airports.ingested.<source token>.
func (p *Publisher) PublishAirportsIngested(ctx context.Context, report *domain.IngestReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	msg := nats.NewMsg(IngestedSubject(report.Source))
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, report.BatchID)
	_, err = p.js.PublishMsg(msg, nats.Context(ctx))
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// IngestedSubject builds a subject token from a source name. NATS tokens
// cannot contain '.', '*', '>' or whitespace.
func IngestedSubject(source string) string {
	token := strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r', '/', '\\':
			return '_'
		}
		return r
	}, source)
	if token == "" {
		token = "unknown"
	}
	return subjectIngested + token
}
