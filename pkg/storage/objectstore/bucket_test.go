package objectstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/require"
)

func TestMinioBucketOwned(t *testing.T) {
	for _, tc := range []struct {
		name  string
		err   error
		owned bool
	}{
		{name: "owned by us", err: minio.ErrorResponse{Code: "BucketAlreadyOwnedByYou"}, owned: true},
		{name: "taken by another account", err: minio.ErrorResponse{Code: "BucketAlreadyExists"}},
		{name: "access denied", err: minio.ErrorResponse{Code: "AccessDenied"}},
		{name: "transport error", err: errors.New("connection refused")},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.owned, minioBucketOwned(tc.err))
		})
	}
}

func TestS3BucketOwned(t *testing.T) {
	for _, tc := range []struct {
		name  string
		err   error
		owned bool
	}{
		{name: "owned by us", err: &types.BucketAlreadyOwnedByYou{}, owned: true},
		{name: "owned by us wrapped", err: fmt.Errorf("operation error S3: CreateBucket: %w", &types.BucketAlreadyOwnedByYou{}), owned: true},
		{name: "taken by another account", err: &types.BucketAlreadyExists{}},
		{name: "taken wrapped", err: fmt.Errorf("operation error S3: CreateBucket: %w", &types.BucketAlreadyExists{})},
		{name: "transport error", err: errors.New("connection refused")},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.owned, s3BucketOwned(tc.err))
		})
	}
}
