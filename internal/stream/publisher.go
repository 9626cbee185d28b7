package stream

import (
	"context"
	"encoding/json"
	"time"

	"wisefido-vitals/internal/domain"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Event types written to the stream.
const (
	TypeVitalSignsUpdate = "vital_signs_update"
	TypeNewVitalsRecord  = "new_vitals_record"
)

const queueSize = 256

type event struct {
	kind    string
	payload []byte
}

// Publisher writes snapshot and record events to a Redis Stream for
// downstream consumers. Publishing is fire-and-forget: events are queued
// and written by a worker goroutine, and when the queue is full the event
// is dropped rather than stalling the ingest path.
type Publisher struct {
	client *redis.Client
	stream string
	events chan event
	logger *zap.Logger
}

func NewPublisher(client *redis.Client, stream string, logger *zap.Logger) *Publisher {
	return &Publisher{
		client: client,
		stream: stream,
		events: make(chan event, queueSize),
		logger: logger,
	}
}

// Run drains the queue until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) {
	p.logger.Info("stream publisher started", zap.String("stream", p.stream))
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("stream publisher stopped")
			return
		case ev := <-p.events:
			if err := p.client.XAdd(ctx, &redis.XAddArgs{
				Stream: p.stream,
				Values: map[string]interface{}{
					"type":      ev.kind,
					"data":      string(ev.payload),
					"timestamp": time.Now().Unix(),
				},
			}).Err(); err != nil {
				p.logger.Warn("failed to publish to stream",
					zap.String("stream", p.stream),
					zap.String("type", ev.kind),
					zap.Error(err),
				)
			}
		}
	}
}

// PublishSnapshot implements vitals.SnapshotSink.
func (p *Publisher) PublishSnapshot(snapshot domain.VitalSnapshot) {
	p.enqueue(TypeVitalSignsUpdate, snapshot)
}

// PublishRecord queues a newly persisted medical record.
func (p *Publisher) PublishRecord(record domain.MedicalRecord) {
	p.enqueue(TypeNewVitalsRecord, record)
}

func (p *Publisher) enqueue(kind string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		p.logger.Error("failed to marshal stream event", zap.String("type", kind), zap.Error(err))
		return
	}
	select {
	case p.events <- event{kind: kind, payload: payload}:
	default:
		p.logger.Warn("stream queue full, dropping event", zap.String("type", kind))
	}
}
