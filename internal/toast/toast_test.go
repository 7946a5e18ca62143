package toast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBusFillsDefaults(t *testing.T) {
	bus := NewBus(0)
	ch, unsubscribe := bus.Subscribe(4)
	defer unsubscribe()

	Success(bus, "Posted")

	got := <-ch
	require.NotEmpty(t, got.ID)
	require.Equal(t, "Posted", got.Text)
	require.Equal(t, SeveritySuccess, got.Severity)
	require.Equal(t, DefaultDuration, got.Duration)
	require.False(t, got.CreatedAt.IsZero())
}

func TestBusDropsBlankText(t *testing.T) {
	bus := NewBus(time.Second)
	ch, unsubscribe := bus.Subscribe(1)
	defer unsubscribe()

	Error(bus, "   ")

	select {
	case got := <-ch:
		t.Fatalf("unexpected toast %+v", got)
	default:
	}
}

func TestBusPublishDoesNotBlockOnFullSubscriber(t *testing.T) {
	bus := NewBus(time.Second)
	slow, unsubscribeSlow := bus.Subscribe(1)
	defer unsubscribeSlow()
	fast, unsubscribeFast := bus.Subscribe(8)
	defer unsubscribeFast()

	for _, text := range []string{"one", "two", "three"} {
		Info(bus, text)
	}

	require.Len(t, slow, 1)
	require.Len(t, fast, 3)
	require.Equal(t, "one", (<-slow).Text)
}

func TestUnsubscribeClosesChannelOnce(t *testing.T) {
	bus := NewBus(time.Second)
	ch, unsubscribe := bus.Subscribe(1)
	unsubscribe()
	unsubscribe()

	_, open := <-ch
	require.False(t, open)

	Info(bus, "nobody listening")
}

func TestQueueNewestFirstAndBounded(t *testing.T) {
	q := NewQueue(2)
	q.Add(Toast{ID: "a"})
	q.Add(Toast{ID: "b"})
	q.Add(Toast{ID: "c"})

	items := q.Items()
	require.Len(t, items, 2)
	require.Equal(t, "c", items[0].ID)
	require.Equal(t, "b", items[1].ID)
}

func TestQueueDismissAndExpire(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	q := NewQueue(0)
	q.Add(Toast{ID: "short", CreatedAt: start, Duration: time.Second})
	q.Add(Toast{ID: "long", CreatedAt: start, Duration: DefaultDuration})
	q.Add(Toast{ID: "manual", CreatedAt: start, Duration: DefaultDuration})

	require.True(t, q.Dismiss("manual"))
	require.False(t, q.Dismiss("manual"))

	q.Expire(start.Add(time.Second))
	require.Equal(t, 1, q.Len())
	require.Equal(t, "long", q.Items()[0].ID)

	q.Expire(start.Add(DefaultDuration))
	require.Zero(t, q.Len())
}
