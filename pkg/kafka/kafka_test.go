package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSetsTypeHeader(t *testing.T) {
	msg, err := encode(Event{Key: "recommend", Type: "recommend", Value: map[string]int{"k": 3}})
	require.NoError(t, err)
	assert.Equal(t, []byte("recommend"), msg.Key)
	assert.JSONEq(t, `{"k":3}`, string(msg.Value))
	assert.Equal(t, "recommend", headerValue(msg.Headers, TypeHeader))

	msg, err = encode(Event{Value: 1})
	require.NoError(t, err)
	assert.Empty(t, msg.Headers)
}

func TestEncodeRejectsUnencodable(t *testing.T) {
	_, err := encode(Event{Type: "bad", Value: make(chan int)})
	assert.Error(t, err)
}

func TestHeaderValueMissing(t *testing.T) {
	assert.Equal(t, "", headerValue([]kafka.Header{{Key: "other", Value: []byte("x")}}, TypeHeader))
}

func TestDecodeJSON(t *testing.T) {
	type event struct {
		Query string `json:"query"`
	}
	ev, err := DecodeJSON[event]([]byte(`{"query":"heat"}`))
	require.NoError(t, err)
	assert.Equal(t, "heat", ev.Query)

	_, err = DecodeJSON[event]([]byte(`{`))
	assert.Error(t, err)
}

func TestPingNoBrokers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Error(t, Ping(ctx, nil))
}
