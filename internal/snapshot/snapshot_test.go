package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestValue_CurrentAndPublish(t *testing.T) {
	t.Parallel()

	v := New(1)
	assert.Equal(t, 1, v.Current())

	v.Publish(2)
	assert.Equal(t, 2, v.Current())
}

func TestValue_SubscribeReceivesCurrentThenUpdates(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	v := New([]string{"a"})
	ch := v.Subscribe(ctx)

	assert.Equal(t, []string{"a"}, receive(t, ch))

	v.Publish([]string{"a", "b"})
	assert.Equal(t, []string{"a", "b"}, receive(t, ch))
}

func TestValue_SlowSubscriberSeesLatestOnly(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	v := New(0)
	ch := v.Subscribe(ctx)

	for i := 1; i <= 10; i++ {
		v.Publish(i)
	}

	assert.Equal(t, 10, receive(t, ch))
	select {
	case got := <-ch:
		t.Fatalf("unexpected extra value %d", got)
	default:
	}
}

func TestValue_SubscriptionEndsWithContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	v := New("x")
	ch := v.Subscribe(ctx)
	_ = receive(t, ch)
	require.Equal(t, 1, v.Subscribers())

	cancel()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, v.Subscribers())

	assert.NotPanics(t, func() { v.Publish("y") })
}

func TestMap(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	v := New([]int{1, 2})
	lengths := Map(ctx, v.Subscribe(ctx), func(s []int) int { return len(s) })

	assert.Equal(t, 2, receive(t, lengths))

	v.Publish([]int{1, 2, 3})
	assert.Equal(t, 3, receive(t, lengths))
}
