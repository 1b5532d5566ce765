package ingestion

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/your-org/blobingest/pkg/formdata"
	"github.com/your-org/blobingest/pkg/metrics"
	"github.com/your-org/blobingest/pkg/storage/objectstore"
	"github.com/your-org/blobingest/pkg/tracing"
)

const (
	DefaultContainer   = "uploads"
	defaultContentType = "application/octet-stream"
)

// Service streams multipart uploads into the object store.
type Service struct {
	store     objectstore.Client
	container string
	publisher EventPublisher
	policy    FailurePolicy
	metrics   *metrics.Metrics
	logger    *zap.Logger
	tracer    trace.Tracer
}

type Params struct {
	Store     objectstore.Client
	Container string
	// Publisher is optional.
	Publisher EventPublisher
	Policy    FailurePolicy
	// Metrics is optional.
	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// StoredObject describes one file written during an ingestion.
type StoredObject struct {
	Container   string `json:"container"`
	Name        string `json:"name"`
	FormField   string `json:"form_field,omitempty"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
}

// FailedObject is a file that could not be written under ContinueOnError.
type FailedObject struct {
	Name string
	Err  error
}

// Outcome is what happened to a single request. It is returned together with
// the error so callers can see which objects were already stored.
type Outcome struct {
	IngestionID string
	Stored      []StoredObject
	Failed      []FailedObject
	Skipped     int
}

// NewService constructs an ingestion Service.
func NewService(p Params) *Service {
	s := &Service{
		store:     p.Store,
		container: p.Container,
		publisher: p.Publisher,
		policy:    p.Policy,
		metrics:   p.Metrics,
		logger:    p.Logger,
		tracer:    tracing.Tracer(),
	}
	if s.container == "" {
		s.container = DefaultContainer
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Ingest reads a multipart/form-data body and writes every file part to the
// configured container, in body order. Non-file parts are skipped. A failed
// request returns *Error; objects stored before the failure are kept.
func (s *Service) Ingest(ctx context.Context, contentType string, body io.Reader) (*Outcome, error) {
	out := &Outcome{IngestionID: uuid.NewString()}

	ctx, span := s.tracer.Start(ctx, "ingestion.Ingest", trace.WithAttributes(
		attribute.String("ingestion.id", out.IngestionID),
		attribute.String("storage.container", s.container),
	))
	defer span.End()

	log := s.logger.With(zap.String("ingestion_id", out.IngestionID))

	err := s.ingest(ctx, log, contentType, body, out)

	span.SetAttributes(
		attribute.Int("ingestion.stored", len(out.Stored)),
		attribute.Int("ingestion.skipped", out.Skipped),
	)

	var ierr *Error
	if errors.As(err, &ierr) {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(ierr.Reason))
		s.metrics.ObserveUpload(ierr.Kind.String())

		fields := []zap.Field{
			zap.String("reason", string(ierr.Reason)),
			zap.Int("stored", len(out.Stored)),
			zap.Error(err),
		}
		if ierr.Kind == KindBadRequest {
			log.Warn("rejected upload", fields...)
		} else {
			log.Error("upload failed", fields...)
		}
		return out, err
	}

	s.metrics.ObserveUpload("success")
	log.Info("upload completed",
		zap.Int("stored", len(out.Stored)),
		zap.Int("skipped", out.Skipped),
	)
	return out, nil
}

func (s *Service) ingest(ctx context.Context, log *zap.Logger, contentType string, body io.Reader, out *Outcome) error {
	boundary, err := formdata.ResolveBoundary(contentType)
	if err != nil {
		return newBadRequest(err)
	}

	if err := s.store.EnsureContainer(ctx, s.container); err != nil {
		return newStorageFailure("", err)
	}

	var firstFailure *Error
	stream := formdata.NewPartStream(body, boundary)
	for {
		part, err := stream.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return newBadRequest(err)
		}

		field := formdata.Classify(part)
		s.metrics.ObservePart(field.Kind.String())
		if field.Kind != formdata.FileField {
			out.Skipped++
			log.Debug("ignore part, empty filename",
				zap.Int("part", part.Index()),
				zap.String("form", field.FormName),
			)
			continue
		}

		stored, err := s.putPart(ctx, part, field)
		if err != nil {
			// A framing error hit while the store read the body is a client error.
			if perr := part.Err(); perr != nil {
				return newBadRequest(perr)
			}
			failure := newStorageFailure(field.FileName, err)
			if s.policy == FailFast || ctx.Err() != nil {
				return failure
			}
			log.Warn("could not store file, continuing",
				zap.String("object", field.FileName),
				zap.Error(err),
			)
			out.Failed = append(out.Failed, FailedObject{Name: field.FileName, Err: err})
			if firstFailure == nil {
				firstFailure = failure
			}
			continue
		}

		out.Stored = append(out.Stored, stored)
		s.metrics.AddStoredBytes(stored.Size)
		log.Info("object stored",
			zap.String("container", stored.Container),
			zap.String("object", stored.Name),
			zap.Int64("size_bytes", stored.Size),
		)
		s.publish(ctx, log, out.IngestionID, stored)
	}

	if firstFailure != nil {
		return firstFailure
	}
	return nil
}

func (s *Service) putPart(ctx context.Context, part *formdata.Part, field formdata.Classification) (StoredObject, error) {
	ctx, span := s.tracer.Start(ctx, "ingestion.PutObject", trace.WithAttributes(
		attribute.String("storage.container", s.container),
		attribute.String("storage.object", field.FileName),
		attribute.Int("multipart.part", part.Index()),
	))
	defer span.End()

	contentType := part.ContentType()
	if contentType == "" {
		contentType = defaultContentType
	}

	size, err := s.store.PutObject(ctx, s.container, field.FileName, part, objectstore.PutOptions{
		ContentType: contentType,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "put object")
		return StoredObject{}, err
	}
	span.SetAttributes(attribute.Int64("storage.size_bytes", size))

	return StoredObject{
		Container:   s.container,
		Name:        field.FileName,
		FormField:   field.FormName,
		ContentType: contentType,
		Size:        size,
	}, nil
}

// publish never fails the upload; the object is already stored.
func (s *Service) publish(ctx context.Context, log *zap.Logger, ingestionID string, obj StoredObject) {
	if s.publisher == nil {
		return
	}

	event := UploadStoredEvent{
		ID:          uuid.NewString(),
		IngestionID: ingestionID,
		Container:   obj.Container,
		ObjectName:  obj.Name,
		FormField:   obj.FormField,
		ContentType: obj.ContentType,
		SizeBytes:   obj.Size,
		StoredAt:    time.Now().UTC(),
	}
	if err := s.publisher.PublishUploadStored(ctx, event); err != nil {
		s.metrics.ObservePublishFailure()
		log.Warn("publish upload event failed",
			zap.String("object", obj.Name),
			zap.Error(err),
		)
	}
}

// Close releases underlying resources.
func (s *Service) Close(ctx context.Context) error {
	var errs []error
	if s.publisher != nil {
		errs = append(errs, s.publisher.Close(ctx))
	}
	errs = append(errs, s.store.Close())
	return errors.Join(errs...)
}
