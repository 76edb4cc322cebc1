package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []Event
	d.Subscribe(EventCartUpdated, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})
	d.Subscribe(EventContentInvalidated, func(context.Context, Event) error {
		t.Fatal("unexpected delivery")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), NewEvent(EventCartUpdated, "v1", CartUpdatedPayload{Count: 2})))
	require.Len(t, got, 1)
	assert.Equal(t, "v1", got[0].VisitorID)
	assert.NotEmpty(t, got[0].ID)
	assert.Equal(t, 2, got[0].Payload.(CartUpdatedPayload).Count)
}

func TestDispatcherKeepsGoingAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	calls := 0
	d.Subscribe(EventOrderPlaced, func(context.Context, Event) error {
		calls++
		return boom
	})
	d.Subscribe(EventOrderPlaced, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventOrderPlaced, "", nil))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}
