// Package publish streams table records to external sinks.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
)

// Static errors for err113 compliance.
var (
	ErrNATSConfigRequired = errors.New("NATS configuration required")
	ErrSubjectRequired    = errors.New("subject is required")
	ErrPublisherClosed    = errors.New("publisher closed")
)

// Publisher delivers encoded records to a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Close() error
}

// Flusher is implemented by publishers that buffer messages.
type Flusher interface {
	Flush(ctx context.Context) error
}

// NATSConfig configures the NATS publisher.
type NATSConfig struct {
	// URL is a NATS server URL or a comma separated list of them.
	URL string

	// Name identifies the connection on the server.
	Name string

	// Timeout bounds the initial connection attempt.
	Timeout time.Duration

	// Token authenticates against the server when set.
	Token string
}

// NATSPublisher publishes records as NATS core messages.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the configured server.
func NewNATSPublisher(config *NATSConfig) (*NATSPublisher, error) {
	if config == nil || config.URL == "" {
		return nil, ErrNATSConfigRequired
	}

	opts := []nats.Option{nats.Name(config.Name)}
	if config.Timeout > 0 {
		opts = append(opts, nats.Timeout(config.Timeout))
	}

	if config.Token != "" {
		opts = append(opts, nats.Token(config.Token))
	}

	conn, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn}, nil
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	err = p.conn.Publish(subject, data)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}

	return nil
}

// Flush waits until the server has processed every published message.
func (p *NATSPublisher) Flush(ctx context.Context) error {
	err := p.conn.FlushWithContext(ctx)
	if err != nil {
		return fmt.Errorf("flushing NATS connection: %w", err)
	}

	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() error {
	err := p.conn.Drain()
	if err != nil {
		p.conn.Close()

		return fmt.Errorf("draining NATS connection: %w", err)
	}

	return nil
}

// WriterPublisher writes each message as one line to w.
type WriterPublisher struct {
	mu     sync.Mutex
	w      io.Writer
	closed bool
}

// NewWriterPublisher creates a publisher writing newline delimited messages.
func NewWriterPublisher(w io.Writer) *WriterPublisher {
	return &WriterPublisher{w: w}
}

// Publish implements Publisher. The subject is not written.
func (p *WriterPublisher) Publish(ctx context.Context, _ string, data []byte) error {
	err := ctx.Err()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPublisherClosed
	}

	_, err = p.w.Write(append(append([]byte(nil), data...), '\n'))
	if err != nil {
		return fmt.Errorf("writing record: %w", err)
	}

	return nil
}

// Close implements Publisher.
func (p *WriterPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true

	return nil
}

// Export publishes every record to subject as JSON and returns how many were
// published. It stops at the first failure or when ctx is done.
func Export[T any](ctx context.Context, publisher Publisher, subject string, records iter.Seq[T]) (int, error) {
	if subject == "" {
		return 0, ErrSubjectRequired
	}

	count := 0

	for record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return count, fmt.Errorf("encoding record %d: %w", count, err)
		}

		err = publisher.Publish(ctx, subject, data)
		if err != nil {
			return count, err
		}

		count++
	}

	if flusher, ok := publisher.(Flusher); ok {
		err := flusher.Flush(ctx)
		if err != nil {
			return count, err
		}
	}

	return count, nil
}
