package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type s3Client struct {
	client   *s3.Client
	uploader *manager.Uploader
	region   string
}

// newS3Client honors the default AWS credential chain unless static keys are
// configured.
func newS3Client(ctx context.Context, cfg Config) (Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = defaultPartSize
		if cfg.PartSize > 0 {
			u.PartSize = cfg.PartSize
		}
	})

	return &s3Client{client: client, uploader: uploader, region: awsCfg.Region}, nil
}

func (c *s3Client) EnsureContainer(ctx context.Context, container string) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(container)}
	if c.region != "" && c.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(c.region),
		}
	}

	_, err := c.client.CreateBucket(ctx, input)
	if err != nil && !s3BucketOwned(err) {
		return fmt.Errorf("create bucket %s: %w", container, err)
	}
	return nil
}

// s3BucketOwned is true only when the bucket already belongs to these
// credentials. BucketAlreadyExists means another account holds the name.
func s3BucketOwned(err error) bool {
	var owned *types.BucketAlreadyOwnedByYou
	return errors.As(err, &owned)
}

func (c *s3Client) PutObject(ctx context.Context, container, name string, body io.Reader, opts PutOptions) (int64, error) {
	counter := &countingReader{r: body}
	input := &s3.PutObjectInput{
		Bucket:   aws.String(container),
		Key:      aws.String(name),
		Body:     counter,
		Metadata: opts.Metadata,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}

	if _, err := c.uploader.Upload(ctx, input); err != nil {
		return 0, err
	}
	return counter.n, nil
}

func (c *s3Client) Close() error {
	return nil
}
