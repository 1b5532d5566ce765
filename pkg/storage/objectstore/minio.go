package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const defaultPartSize = 16 << 20

type minioClient struct {
	client   *minio.Client
	region   string
	partSize uint64
}

func newMinioClient(cfg Config) (Client, error) {
	endpoint, secure, err := minioEndpoint(cfg.Endpoint, cfg.UseSSL)
	if err != nil {
		return nil, err
	}

	cl, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	partSize := uint64(defaultPartSize)
	if cfg.PartSize > 0 {
		partSize = uint64(cfg.PartSize)
	}

	return &minioClient{client: cl, region: cfg.Region, partSize: partSize}, nil
}

// minioEndpoint accepts both host:port and URL forms.
func minioEndpoint(raw string, useSSL bool) (string, bool, error) {
	if !strings.Contains(raw, "://") {
		return raw, useSSL, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false, fmt.Errorf("parse storage endpoint: %w", err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("storage endpoint %q has no host", raw)
	}
	return u.Host, useSSL || u.Scheme == "https", nil
}

func (m *minioClient) EnsureContainer(ctx context.Context, container string) error {
	exists, err := m.client.BucketExists(ctx, container)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", container, err)
	}
	if exists {
		return nil
	}

	err = m.client.MakeBucket(ctx, container, minio.MakeBucketOptions{Region: m.region})
	if err != nil && !minioBucketOwned(err) {
		return fmt.Errorf("make bucket %s: %w", container, err)
	}
	return nil
}

// minioBucketOwned reports a lost create race against ourselves. A bucket
// name taken by another account is not usable and stays an error.
func minioBucketOwned(err error) bool {
	return minio.ToErrorResponse(err).Code == "BucketAlreadyOwnedByYou"
}

func (m *minioClient) PutObject(ctx context.Context, container, name string, body io.Reader, opts PutOptions) (int64, error) {
	info, err := m.client.PutObject(ctx, container, name, body, -1, minio.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: opts.Metadata,
		PartSize:     m.partSize,
	})
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}

func (m *minioClient) Close() error {
	return nil
}
