package kafka

import (
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestCompressionFromString(t *testing.T) {
	require.Equal(t, kafkago.Gzip, CompressionFromString("GZIP"))
	require.Equal(t, kafkago.Lz4, CompressionFromString("lz4"))
	require.Equal(t, kafkago.Zstd, CompressionFromString("zstd"))
	require.Equal(t, kafkago.Snappy, CompressionFromString("unknown"))
}

func TestNewMessage(t *testing.T) {
	msg, err := newMessage("k", map[string]string{"a": "b"}, map[string]string{"event_type": "upload.stored"})
	require.NoError(t, err)
	require.Equal(t, []byte("k"), msg.Key)
	require.JSONEq(t, `{"a":"b"}`, string(msg.Value))
	require.Len(t, msg.Headers, 1)
	require.Equal(t, "event_type", msg.Headers[0].Key)

	_, err = newMessage("k", make(chan int), nil)
	require.Error(t, err)
}
