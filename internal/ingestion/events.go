package ingestion

import (
	"context"
	"time"

	"github.com/your-org/blobingest/pkg/kafka"
)

const EventTypeUploadStored = "upload.stored"

// UploadStoredEvent is emitted after a file part has been written.
type UploadStoredEvent struct {
	ID          string    `json:"id"`
	IngestionID string    `json:"ingestion_id"`
	Container   string    `json:"container"`
	ObjectName  string    `json:"object_name"`
	FormField   string    `json:"form_field,omitempty"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	StoredAt    time.Time `json:"stored_at"`
}

// EventPublisher delivers upload events.
type EventPublisher interface {
	PublishUploadStored(ctx context.Context, event UploadStoredEvent) error
	Close(ctx context.Context) error
}

// KafkaPublisher publishes upload events to a Kafka topic keyed by object.
type KafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(producer *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) PublishUploadStored(ctx context.Context, event UploadStoredEvent) error {
	headers := map[string]string{
		"event_id":   event.ID,
		"event_type": EventTypeUploadStored,
	}
	return p.producer.PublishJSON(ctx, event.Container+"/"+event.ObjectName, event, headers)
}

func (p *KafkaPublisher) Close(ctx context.Context) error {
	return p.producer.Close(ctx)
}
