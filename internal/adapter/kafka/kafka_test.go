package kafka

import (
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/heat-load-validator/internal/config"
	"github.com/couchcryptid/heat-load-validator/internal/domain"
)

func TestMapMessageToRawEvent(t *testing.T) {
	now := time.Now()
	msg := kafkago.Message{
		Key:       []byte("case-17"),
		Value:     []byte(`{"records":[]}`),
		Topic:     "heat-analysis-results",
		Partition: 2,
		Offset:    42,
		Time:      now,
		Headers: []kafkago.Header{
			{Key: "schema", Value: []byte("balance_point_graph")},
		},
	}

	raw := mapMessageToRawEvent(msg)

	assert.Equal(t, []byte("case-17"), raw.Key)
	assert.JSONEq(t, `{"records":[]}`, string(raw.Value))
	assert.Equal(t, "heat-analysis-results", raw.Topic)
	assert.Equal(t, 2, raw.Partition)
	assert.Equal(t, int64(42), raw.Offset)
	assert.Equal(t, now, raw.Timestamp)
	assert.Equal(t, "balance_point_graph", raw.Headers["schema"])
	assert.Nil(t, raw.Commit)
}

func newTestWriter(t *testing.T) *Writer {
	t.Helper()
	w := NewWriter(&config.Config{
		KafkaBrokers:   []string{"localhost:9092"},
		KafkaSinkTopic: "validated-usage-data",
		KafkaDLQTopic:  "usage-data-rejections",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestWriter_RoutesAccepted(t *testing.T) {
	w := newTestWriter(t)

	msg, err := w.toMessage(domain.OutputEvent{
		Key:   []byte("case-1"),
		Value: []byte(`{}`),
		Headers: map[string]string{
			domain.HeaderValidatedAt: "2024-03-04T09:30:00Z",
			domain.HeaderSchema:      "usage_data",
		},
		Outcome: domain.OutcomeAccepted,
		Schema:  domain.SchemaUsageData,
	})
	require.NoError(t, err)

	assert.Equal(t, "validated-usage-data", msg.Topic)
	assert.Equal(t, []byte("case-1"), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "schema", msg.Headers[0].Key)
	assert.Equal(t, []byte("usage_data"), msg.Headers[0].Value)
	assert.Equal(t, "validated_at", msg.Headers[1].Key)
}

func TestWriter_RoutesRejected(t *testing.T) {
	w := newTestWriter(t)

	msg, err := w.toMessage(domain.OutputEvent{
		Value:   []byte(`{"kind":"contract_violation"}`),
		Headers: map[string]string{domain.HeaderErrorKind: "contract_violation"},
		Outcome: domain.OutcomeRejected,
	})
	require.NoError(t, err)
	assert.Equal(t, "usage-data-rejections", msg.Topic)
}

func TestWriter_UnknownOutcome(t *testing.T) {
	w := newTestWriter(t)

	_, err := w.toMessage(domain.OutputEvent{Outcome: "lost"})
	assert.Error(t, err)
}
