package eventbus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishDeliversInSubscriptionOrder(t *testing.T) {
	t.Parallel()

	bus := New(nil)
	var order []string
	bus.Subscribe(AccountFlagged, func(ctx context.Context, payload FlaggedPayload) error {
		order = append(order, "first")
		return nil
	})
	bus.Subscribe(AccountFlagged, func(ctx context.Context, payload FlaggedPayload) error {
		order = append(order, "second")
		return nil
	})

	bus.Publish(context.Background(), AccountFlagged, FlaggedPayload{Handle: "foo"})

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPublishIsolatesFailingHandler(t *testing.T) {
	t.Parallel()

	bus := New(nil)
	bus.Subscribe(AccountFlagged, func(ctx context.Context, payload FlaggedPayload) error {
		return errors.New("always fails")
	})

	received := 0
	bus.Subscribe(AccountFlagged, func(ctx context.Context, payload FlaggedPayload) error {
		received++
		return nil
	})

	bus.Publish(context.Background(), AccountFlagged, FlaggedPayload{Handle: "foo"})

	assert.Equal(t, 1, received)
}

func TestPublishIsolatesPanickingHandler(t *testing.T) {
	t.Parallel()

	bus := New(nil)
	bus.Subscribe(AccountFlagged, func(ctx context.Context, payload FlaggedPayload) error {
		panic("boom")
	})

	received := 0
	bus.Subscribe(AccountFlagged, func(ctx context.Context, payload FlaggedPayload) error {
		received++
		return nil
	})

	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), AccountFlagged, FlaggedPayload{Handle: "foo"})
	})
	assert.Equal(t, 1, received)
}

func TestPublishWithoutSubscribersIsNoop(t *testing.T) {
	t.Parallel()

	bus := New(nil)
	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), "SomethingElse", FlaggedPayload{})
	})
}

func TestSubscribeIgnoresNilHandler(t *testing.T) {
	t.Parallel()

	bus := New(nil)
	bus.Subscribe(AccountFlagged, nil)
	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), AccountFlagged, FlaggedPayload{})
	})
}
