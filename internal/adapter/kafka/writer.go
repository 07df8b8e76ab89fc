package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/heat-load-validator/internal/config"
	"github.com/couchcryptid/heat-load-validator/internal/domain"
)

// Writer produces validated documents to the sink topic and rejection reports
// to the DLQ topic. It implements pipeline.BatchLoader.
type Writer struct {
	writer    *kafkago.Writer
	sinkTopic string
	dlqTopic  string
	logger    *slog.Logger
}

// NewWriter creates a Kafka producer. The topic is set per message.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: false,
	}
	return &Writer{
		writer:    w,
		sinkTopic: cfg.KafkaSinkTopic,
		dlqTopic:  cfg.KafkaDLQTopic,
		logger:    logger,
	}
}

// LoadBatch publishes the batch in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, events []domain.OutputEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	rejected := 0
	for i, event := range events {
		msg, err := w.toMessage(event)
		if err != nil {
			return err
		}
		if msg.Topic == w.dlqTopic {
			rejected++
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d messages: %w", len(msgs), err)
	}
	w.logger.Debug("batch loaded", "accepted", len(msgs)-rejected, "rejected", rejected)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func (w *Writer) topicFor(event domain.OutputEvent) (string, error) {
	switch event.Outcome {
	case domain.OutcomeAccepted:
		return w.sinkTopic, nil
	case domain.OutcomeRejected:
		return w.dlqTopic, nil
	default:
		return "", fmt.Errorf("route message with outcome %q", event.Outcome)
	}
}

// toMessage maps an OutputEvent onto its destination topic. Headers are sorted
// by key so the wire order is stable.
func (w *Writer) toMessage(event domain.OutputEvent) (kafkago.Message, error) {
	topic, err := w.topicFor(event)
	if err != nil {
		return kafkago.Message{}, err
	}
	keys := make([]string, 0, len(event.Headers))
	for k := range event.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	headers := make([]kafkago.Header, len(keys))
	for i, k := range keys {
		headers[i] = kafkago.Header{Key: k, Value: []byte(event.Headers[k])}
	}
	return kafkago.Message{
		Topic:   topic,
		Key:     event.Key,
		Value:   event.Value,
		Headers: headers,
	}, nil
}
