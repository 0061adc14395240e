package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

func TestEncodeEventsRoundTrip(t *testing.T) {
	msgs, err := encodeEvents([]Event{
		{Key: "anagram", Value: sample{Kind: "anagram", Count: 2}},
		{Key: "rot", Value: sample{Kind: "rot", Count: 1}},
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "anagram", string(msgs[0].Key))

	got, err := DecodeJSON[sample](msgs[1].Value)
	require.NoError(t, err)
	assert.Equal(t, sample{Kind: "rot", Count: 1}, got)
}

func TestEncodeEventsRejectsUnencodable(t *testing.T) {
	_, err := encodeEvents([]Event{{Key: "bad", Value: make(chan int)}})
	assert.Error(t, err)
}

func TestDecodeJSONError(t *testing.T) {
	_, err := DecodeJSON[sample]([]byte("{"))
	assert.ErrorContains(t, err, "decoding kafka message")
}
