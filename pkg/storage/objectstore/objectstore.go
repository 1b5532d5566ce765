package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var ErrContainerNotFound = errors.New("container not found")

// Config contains the information required to talk to an object store.
type Config struct {
	Provider  string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
	// PartSize bounds the memory used per streamed upload of unknown length.
	PartSize int64
}

// PutOptions describe the object being written.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string
}

// Client represents the capabilities the ingestion service expects.
type Client interface {
	// EnsureContainer creates the container unless it already exists. It is
	// safe to call concurrently and repeatedly.
	EnsureContainer(ctx context.Context, container string) error
	// PutObject streams body into container/name, replacing any existing
	// object. If reading body fails no object is written. It returns the
	// number of bytes stored.
	PutObject(ctx context.Context, container, name string, body io.Reader, opts PutOptions) (int64, error)
	Close() error
}

// New creates an object store client based on the given configuration.
func New(ctx context.Context, cfg Config) (Client, error) {
	switch cfg.Provider {
	case "minio":
		return newMinioClient(cfg)
	case "s3":
		return newS3Client(ctx, cfg)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported object store provider: %s", cfg.Provider)
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
