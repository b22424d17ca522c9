package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesAllSubscribers(t *testing.T) {
	h := NewHub()
	_, a, cancelA := h.Subscribe()
	defer cancelA()
	_, b, cancelB := h.Subscribe()
	defer cancelB()

	require.NoError(t, h.Publish(context.Background(), Message{Type: TypeSummary, Content: "Q3 looks good"}))

	for _, ch := range []<-chan Message{a, b} {
		select {
		case msg := <-ch:
			assert.Equal(t, Message{Type: TypeSummary, Content: "Q3 looks good"}, msg)
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}
	}
}

func TestHub_CancelPrunesSubscriber(t *testing.T) {
	h := NewHub()
	_, ch, cancel := h.Subscribe()
	assert.Equal(t, 1, h.Count())

	cancel()
	cancel()
	assert.Equal(t, 0, h.Count())

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.Broadcast(Message{Type: TypeSummary}))
}

func TestHub_FullQueueDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	_, _, cancel := h.Subscribe()
	defer cancel()

	for i := 0; i < DefaultBuffer; i++ {
		assert.Equal(t, 1, h.Broadcast(Message{Type: TypeSummary}))
	}
	assert.Equal(t, 0, h.Broadcast(Message{Type: TypeSummary}))
}

func TestHub_Close(t *testing.T) {
	h := NewHub()
	_, ch, cancel := h.Subscribe()
	h.Close()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, h.Count())
}

func TestMessageCodec(t *testing.T) {
	data, err := encodeMessage(Message{Type: TypeSummary, Content: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"summary","content":"hi"}`, data)

	msg, err := decodeMessage(data)
	require.NoError(t, err)
	assert.Equal(t, "hi", msg.Content)

	_, err = decodeMessage(`{"content":"no type"}`)
	assert.Error(t, err)
	_, err = decodeMessage(`not json`)
	assert.Error(t, err)
}

func TestNewRedisRelay_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisRelay(ctx, "127.0.0.1:1", "", NewHub())
	assert.Error(t, err)

	_, err = NewRedisRelay(ctx, "", "", NewHub())
	assert.Error(t, err)
}

func unreachableRelay(hub *Hub) *RedisRelay {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	return newRelay(client, "chaindash:test", hub)
}

func TestRedisRelay_DeliversLocallyWhenRedisIsDown(t *testing.T) {
	hub := NewHub()
	relay := unreachableRelay(hub)
	defer relay.Close()

	_, ch, cancel := hub.Subscribe()
	defer cancel()

	ctx, done := context.WithTimeout(context.Background(), 2*time.Second)
	defer done()

	assert.Error(t, relay.Run(ctx))
	assert.False(t, relay.forwarding.Load())

	require.NoError(t, relay.Publish(ctx, Message{Type: TypeSummary, Content: "still delivered"}))

	select {
	case msg := <-ch:
		assert.Equal(t, "still delivered", msg.Content)
	case <-time.After(time.Second):
		t.Fatal("local subscriber did not receive the summary")
	}
}
