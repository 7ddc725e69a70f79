package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKafkaPublisher_NoBrokers(t *testing.T) {
	t.Parallel()

	p := NewKafkaPublisher(nil, "user_events")
	_, ok := p.(Nop)
	require.True(t, ok)

	assert.NoError(t, p.Publish(context.Background(), "k", Event{Type: UserLoggedIn, UserID: uuid.New()}))
	assert.NoError(t, p.Close())

	_, ok = NewKafkaPublisher([]string{"localhost:9092"}, "").(Nop)
	assert.True(t, ok)
}

func TestNewKafkaPublisher_WithBrokers(t *testing.T) {
	t.Parallel()

	p := NewKafkaPublisher([]string{"localhost:9092"}, "user_events")
	kp, ok := p.(*KafkaPublisher)
	require.True(t, ok)
	assert.Equal(t, "user_events", kp.writer.Topic)
	assert.NoError(t, kp.Close())

	var nilPub *KafkaPublisher
	assert.NoError(t, nilPub.Close())
}
