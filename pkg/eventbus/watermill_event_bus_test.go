package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getdivulga/divulga/pkg/channels/gochannel"
	"github.com/getdivulga/divulga/pkg/events"
)

func newTestBus(t *testing.T) EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub)
	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan *events.FiringSucceeded, 1)

	err := bus.Handle(events.FiringSucceededEvent, func(ctx context.Context, event any) error {
		firing, ok := event.(*events.FiringSucceeded)
		require.True(t, ok)
		received <- firing

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(t.Context()))

	firing := events.FiringSucceeded{
		BaseEvent:      events.NewBaseEvent(events.FiringSucceededEvent, "schedule-1"),
		GroupID:        "group-1",
		FiredAt:        time.Date(2026, 1, 1, 9, 30, 0, 0, time.UTC),
		PlatformPostID: "post-9",
	}

	require.NoError(t, bus.Publish(t.Context(), "schedule-1", firing))

	select {
	case got := <-received:
		assert.Equal(t, "schedule-1", got.ScheduleID)
		assert.Equal(t, "group-1", got.GroupID)
		assert.Equal(t, "post-9", got.PlatformPostID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_IgnoresUnhandledTypes(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan any, 2)

	err := bus.Handle(events.SchedulePausedEvent, func(ctx context.Context, event any) error {
		received <- event

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(t.Context()))

	// No handler registered for this type; the bus acks and moves on.
	other := events.ScheduleResumed{BaseEvent: events.NewBaseEvent(events.ScheduleResumedEvent, "schedule-1")}
	require.NoError(t, bus.Publish(t.Context(), "schedule-1", other))

	paused := events.SchedulePaused{BaseEvent: events.NewBaseEvent(events.SchedulePausedEvent, "schedule-1")}
	require.NoError(t, bus.Publish(t.Context(), "schedule-1", paused))

	select {
	case got := <-received:
		_, ok := got.(*events.SchedulePaused)
		assert.True(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	assert.Empty(t, received)
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
