package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_RoundTrip(t *testing.T) {
	bus := NewBus("test.events", nil)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, bus.Publish(ctx, New(QuotaUpdated, "u-1", map[string]interface{}{"remaining": 3}, at)))

	select {
	case msg := <-messages:
		e, err := Decode(msg)
		require.NoError(t, err)
		msg.Ack()

		assert.Equal(t, QuotaUpdated, e.Type)
		assert.Equal(t, "u-1", e.UserID)
		assert.Equal(t, float64(3), e.Data["remaining"])
		assert.True(t, at.Equal(e.OccurredAt))
		assert.Equal(t, QuotaUpdated, msg.Metadata.Get("type"))
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestBus_PublishWithoutSubscriber(t *testing.T) {
	bus := NewBus("test.events", nil)
	defer bus.Close()

	assert.NoError(t, bus.Publish(context.Background(), New(UserDeleted, "u-2", nil, time.Now())))
}
