package export

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// publishTimeout bounds the flush after each publish.
const publishTimeout = 5 * time.Second

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	PublishMsg(msg *nats.Msg) error
	FlushTimeout(timeout time.Duration) error
	Drain() error
}

// Publisher sends JSON reports to a NATS subject.
type Publisher struct {
	conn    Conn
	subject string
	logger  *slog.Logger
}

// NewPublisher creates a publisher on an existing connection.
func NewPublisher(conn Conn, subject string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{conn: conn, subject: subject, logger: logger}
}

// Connect dials the NATS server at url and returns a publisher for subject.
func Connect(url, subject string, logger *slog.Logger) (*Publisher, error) {
	if url == "" {
		return nil, errors.New("nats url is required")
	}
	if subject == "" {
		return nil, errors.New("nats subject is required")
	}
	conn, err := nats.Connect(url,
		nats.Name("reqtrace"),
		nats.Timeout(publishTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return NewPublisher(conn, subject, logger), nil
}

// Publish sends the report with the run id as its Nats-Msg-Id header.
func (p *Publisher) Publish(r *Report) error {
	data, err := r.Marshal()
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, r.RunID)
	msg.Header.Set("Content-Type", "application/json")

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	if err := p.conn.FlushTimeout(publishTimeout); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}

	p.logger.Info("Report published",
		"subject", p.subject,
		"run_id", r.RunID,
		"bytes", len(data))
	return nil
}

// Close drains the connection.
func (p *Publisher) Close() error {
	return p.conn.Drain()
}
