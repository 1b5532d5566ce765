package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseResourceAttributes(t *testing.T) {
	require.Empty(t, ParseResourceAttributes(""))
	require.Equal(t, map[string]string{
		"service.namespace": "blobingest",
		"team":              "storage",
	}, ParseResourceAttributes(" service.namespace=blobingest, bogus ,team = storage,=x"))
}

func TestInitWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "test"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	require.NotNil(t, Tracer())
}
