// Package events carries report submission events from the report store to
// the auto-ban evaluator. The memory driver runs them on an in-process
// worker pool; the kafka driver sends them through a topic consumed by a
// consumer group, so evaluation can run on any replica.
package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yasinhessnawi1/collapse-backend/internal/config"
	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/models"
)

var (
	// ErrBusClosed is returned when publishing to a closed bus.
	ErrBusClosed = errors.New("event bus is closed")

	// ErrQueueFull is returned when the in-process queue has no free slot.
	ErrQueueFull = errors.New("event queue is full")
)

// Handler processes one report submission event. Handlers own their errors;
// the bus only recovers panics.
type Handler func(ctx context.Context, event *models.ReportSubmittedEvent)

// Bus publishes report submission events and delivers them to a handler.
type Bus interface {
	// Publish enqueues event without waiting for it to be handled.
	Publish(ctx context.Context, event *models.ReportSubmittedEvent) error

	// Start begins delivering events to handler. It must be called once.
	Start(handler Handler)

	// Close stops accepting events and waits for in-flight handlers until
	// ctx expires.
	Close(ctx context.Context) error
}

// NewReportSubmittedEvent builds the event announcing report.
func NewReportSubmittedEvent(report *models.Report) *models.ReportSubmittedEvent {
	return &models.ReportSubmittedEvent{
		EventID:        uuid.NewString(),
		ReportID:       report.ID,
		ReportedUserID: report.ReportedUserID,
		ReporterID:     report.ReporterID,
		Reason:         report.Reason,
		OccurredAt:     time.Now().UTC(),
	}
}

// NewBus creates the bus selected by the events configuration.
func NewBus(cfg *config.AppConfig) (Bus, error) {
	switch cfg.Events.Driver {
	case "", "memory":
		return NewMemoryBus(cfg.Moderation.EvaluatorWorkers, cfg.Moderation.QueueSize, constants.EvaluationTimeout), nil
	case "kafka":
		return NewKafkaBus(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic, cfg.Events.KafkaGroupID, constants.EvaluationTimeout)
	default:
		return nil, fmt.Errorf("unknown events driver: %s", cfg.Events.Driver)
	}
}
