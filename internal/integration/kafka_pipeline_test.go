//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/heat-load-validator/internal/adapter/kafka"
	"github.com/couchcryptid/heat-load-validator/internal/config"
	"github.com/couchcryptid/heat-load-validator/internal/domain"
	"github.com/couchcryptid/heat-load-validator/internal/observability"
	"github.com/couchcryptid/heat-load-validator/internal/pipeline"
)

const (
	testSourceTopic = "test-source"
	testSinkTopic   = "test-sink"
	testDLQTopic    = "test-dlq"
)

type sinkMessage struct {
	Key     string
	Value   []byte
	Headers map[string]string
}

func readMessages(ctx context.Context, t *testing.T, broker, topic string, n int) []sinkMessage {
	t.Helper()

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       topic,
		GroupID:     fmt.Sprintf("test-consumer-%s-%d", topic, time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	out := make([]sinkMessage, 0, n)
	for len(out) < n {
		msg, err := consumer.ReadMessage(readCtx)
		require.NoError(t, err, "read from %s", topic)

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		out = append(out, sinkMessage{Key: string(msg.Key), Value: msg.Value, Headers: headers})
	}
	return out
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaDLQTopic:      testDLQTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
		DefaultSchema:      domain.SchemaUsageData,
	}
}

// TestPipelineRoutesByOutcome runs Reader, SchemaValidator and Writer against a
// real broker and checks that valid documents reach the sink while invalid
// ones reach the rejection topic.
func TestPipelineRoutesByOutcome(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	for _, topic := range []string{testSourceTopic, testSinkTopic, testDLQTopic} {
		createTopic(t, broker, topic)
	}

	cfg := testConfig(broker, "test-pipeline")

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("case-good"), Value: loadFixture(t, "usage_data.json")},
		kafkago.Message{
			Key:     []byte("acct-7"),
			Value:   loadFixture(t, "natural_gas_usage.json"),
			Headers: []kafkago.Header{{Key: domain.HeaderSchema, Value: []byte(domain.SchemaNaturalGasUsage)}},
		},
		kafkago.Message{Key: []byte("case-bad"), Value: loadFixture(t, "usage_data_bad.json")},
	))

	metrics := observability.NewMetricsForTesting()
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	validator := pipeline.NewValidator(cfg.DefaultSchema, discardLogger(), metrics)
	p := pipeline.New(reader, validator, writer, discardLogger(), metrics, 10)

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- p.Run(runCtx) }()

	accepted := readMessages(ctx, t, broker, testSinkTopic, 2)
	rejected := readMessages(ctx, t, broker, testDLQTopic, 1)

	stop()
	require.NoError(t, <-done)

	bySchema := map[string]sinkMessage{}
	for _, m := range accepted {
		bySchema[m.Headers[domain.HeaderSchema]] = m
		_, err := time.Parse(time.RFC3339, m.Headers[domain.HeaderValidatedAt])
		assert.NoError(t, err, "validated_at should be RFC3339")
	}

	usage, ok := bySchema["usage_data"]
	require.True(t, ok, "usage_data message missing from sink")
	assert.Equal(t, "case-good", usage.Key)
	_, err := domain.ValidateUsageData(usage.Value)
	assert.NoError(t, err, "sink payload should re-validate")

	gas, ok := bySchema["natural_gas_usage"]
	require.True(t, ok, "natural_gas_usage message missing from sink")
	assert.Equal(t, "1", gas.Headers[domain.HeaderWarnings])

	require.Len(t, rejected, 1)
	assert.Equal(t, "case-bad", rejected[0].Key)
	assert.Equal(t, "contract_violation", rejected[0].Headers[domain.HeaderErrorKind])

	var report domain.Rejection
	require.NoError(t, json.Unmarshal(rejected[0].Value, &report))
	assert.Equal(t, domain.SchemaUsageData, report.Schema)
	assert.Len(t, report.Errors, 2)
}

// TestReaderCommitResumesGroup verifies that a committed offset is not
// redelivered to a new reader in the same consumer group.
func TestReaderCommitResumesGroup(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testSourceTopic)

	cfg := testConfig(broker, "test-commit")

	producer := &kafkago.Writer{Addr: kafkago.TCP(broker), Topic: testSourceTopic}
	t.Cleanup(func() { _ = producer.Close() })
	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("first"), Value: []byte(`{}`)},
		kafkago.Message{Key: []byte("second"), Value: []byte(`{}`)},
	))

	first := kafka.NewReader(cfg, discardLogger())
	batch, err := first.ExtractBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, []byte("first"), batch[0].Key)
	require.NotNil(t, batch[0].Commit)
	require.NoError(t, batch[0].Commit(ctx))
	require.NoError(t, first.Close())

	second := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = second.Close() })
	batch, err = second.ExtractBatch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, []byte("second"), batch[0].Key)
}
