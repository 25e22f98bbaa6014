package common

import (
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAMQPPacket(t *testing.T) {
	sent := AMQPPacket{RunID: "run-7", Result: sampleResult()}

	body, err := EncodeAMQPPacket(sent)
	require.NoError(t, err)

	got, err := ParseAMQPPacket(&amqp.Delivery{Body: body})
	require.NoError(t, err)
	assert.Equal(t, sent, got)
}

func TestParseAMQPPacketGarbage(t *testing.T) {
	_, err := ParseAMQPPacket(&amqp.Delivery{Body: []byte("definitely not gob")})
	assert.Error(t, err)
}
