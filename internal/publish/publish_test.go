package publish_test

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/glide-client/internal/publish"
)

var errBroker = errors.New("broker unavailable")

type message struct {
	subject string
	data    string
}

type fakePublisher struct {
	messages []message
	failAt   int
	flushed  bool
}

func (p *fakePublisher) Publish(_ context.Context, subject string, data []byte) error {
	if p.failAt > 0 && len(p.messages)+1 == p.failAt {
		return errBroker
	}

	p.messages = append(p.messages, message{subject: subject, data: string(data)})

	return nil
}

func (p *fakePublisher) Flush(context.Context) error {
	p.flushed = true

	return nil
}

func (p *fakePublisher) Close() error {
	return nil
}

type row struct {
	SysID  string `json:"sys_id"`
	Number string `json:"number"`
}

func rows() []row {
	return []row{{SysID: "a", Number: "INC1"}, {SysID: "b", Number: "INC2"}, {SysID: "c", Number: "INC3"}}
}

func TestExport(t *testing.T) {
	t.Parallel()

	t.Run("publishes every record and flushes", func(t *testing.T) {
		t.Parallel()

		publisher := &fakePublisher{}

		count, err := publish.Export(context.Background(), publisher, "glide.incident", slices.Values(rows()))
		require.NoError(t, err)
		assert.Equal(t, 3, count)
		assert.True(t, publisher.flushed)

		require.Len(t, publisher.messages, 3)
		assert.Equal(t, "glide.incident", publisher.messages[0].subject)
		assert.JSONEq(t, `{"sys_id":"a","number":"INC1"}`, publisher.messages[0].data)
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		t.Parallel()

		publisher := &fakePublisher{failAt: 2}

		count, err := publish.Export(context.Background(), publisher, "glide.incident", slices.Values(rows()))
		require.ErrorIs(t, err, errBroker)
		assert.Equal(t, 1, count)
		assert.False(t, publisher.flushed)
	})

	t.Run("requires a subject", func(t *testing.T) {
		t.Parallel()

		_, err := publish.Export(context.Background(), &fakePublisher{}, "", slices.Values(rows()))
		require.ErrorIs(t, err, publish.ErrSubjectRequired)
	})
}

func TestWriterPublisher(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	publisher := publish.NewWriterPublisher(&buf)

	count, err := publish.Export(context.Background(), publisher, "-", slices.Values(rows()[:2]))
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "{\"sys_id\":\"a\",\"number\":\"INC1\"}\n{\"sys_id\":\"b\",\"number\":\"INC2\"}\n", buf.String())

	require.NoError(t, publisher.Close())
	require.ErrorIs(t, publisher.Publish(context.Background(), "-", []byte("{}")), publish.ErrPublisherClosed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, publish.NewWriterPublisher(&buf).Publish(ctx, "-", []byte("{}")), context.Canceled)
}

func TestNewNATSPublisher(t *testing.T) {
	t.Parallel()

	t.Run("requires a config", func(t *testing.T) {
		t.Parallel()

		_, err := publish.NewNATSPublisher(nil)
		require.ErrorIs(t, err, publish.ErrNATSConfigRequired)

		_, err = publish.NewNATSPublisher(&publish.NATSConfig{})
		require.ErrorIs(t, err, publish.ErrNATSConfigRequired)
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()

		_, err := publish.NewNATSPublisher(&publish.NATSConfig{
			URL:     "nats://127.0.0.1:1",
			Name:    "glide-test",
			Timeout: 200 * time.Millisecond,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connecting to NATS")
	})
}
