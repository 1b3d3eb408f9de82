package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaBus publishes events to a Kafka topic and consumes them through a
// consumer group. Messages are keyed by reported user so that events about
// one account stay ordered within a partition.
type KafkaBus struct {
	topic       string
	writer      messageWriter
	reader      messageReader
	taskTimeout time.Duration

	mu      sync.Mutex
	closed  bool
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewKafkaBus creates a bus on topic for the given brokers and group.
//
// Parameters:
//   - brokers: Kafka bootstrap addresses
//   - topic: Topic carrying report.submitted events
//   - groupID: Consumer group shared by all API instances
//   - taskTimeout: Upper bound for one handler call
//
// Returns:
//   - The bus, not yet consuming until Start is called
//   - An error if brokers, topic or group are missing
func NewKafkaBus(brokers []string, topic, groupID string, taskTimeout time.Duration) (*KafkaBus, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka bus requires at least one broker")
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka bus requires a topic")
	}
	if groupID == "" {
		return nil, fmt.Errorf("kafka bus requires a group id")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.Hash{},
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	})

	return newKafkaBus(topic, writer, reader, taskTimeout), nil
}

func newKafkaBus(topic string, writer messageWriter, reader messageReader, taskTimeout time.Duration) *KafkaBus {
	return &KafkaBus{
		topic:       topic,
		writer:      writer,
		reader:      reader,
		taskTimeout: taskTimeout,
		done:        make(chan struct{}),
	}
}

// Publish writes event to the topic.
func (b *KafkaBus) Publish(ctx context.Context, event *models.ReportSubmittedEvent) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrBusClosed
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.EventPublishTimeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.ReportedUserID, 10)),
		Value: payload,
		Time:  time.Now().UTC(),
	}
	msg.Headers = []kafka.Header{{Key: "event_type", Value: []byte(constants.EventReportSubmitted)}}

	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", constants.EventReportSubmitted, err)
	}
	return nil
}

// Start launches the consumer loop.
func (b *KafkaBus) Start(handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started || b.closed {
		return
	}
	b.started = true

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	go b.consume(ctx, handler)

	log.Info().Str("topic", b.topic).Msg("Kafka event consumer started")
}

func (b *KafkaBus) consume(ctx context.Context, handler Handler) {
	defer close(b.done)

	for {
		msg, err := b.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			log.Error().Err(err).Str("topic", b.topic).Msg("Failed to read event")
			select {
			case <-ctx.Done():
				return
			case <-time.After(constants.KafkaPollTimeout):
			}
			continue
		}

		event := &models.ReportSubmittedEvent{}
		if err := json.Unmarshal(msg.Value, event); err != nil {
			log.Error().
				Err(err).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("Discarding malformed event")
			continue
		}

		b.dispatch(handler, event)
	}
}

func (b *KafkaBus) dispatch(handler Handler, event *models.ReportSubmittedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), b.taskTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			utils.LogPanic(r, debug.Stack())
		}
	}()

	handler(ctx, event)
}

// Close stops the consumer loop, then closes the reader and the writer.
func (b *KafkaBus) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	started := b.started
	if b.cancel != nil {
		b.cancel()
	}
	b.mu.Unlock()

	if started {
		select {
		case <-b.done:
		case <-ctx.Done():
			log.Warn().Msg("Kafka consumer did not stop before shutdown deadline")
		}
	}

	var errs []error
	if err := b.reader.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close kafka reader: %w", err))
	}
	if err := b.writer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close kafka writer: %w", err))
	}
	return errors.Join(errs...)
}
