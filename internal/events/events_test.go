package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.Subscribe(TopicUpdate, func(topic string) { got = append(got, "first:"+topic) })
	bus.Subscribe(TopicUpdate, func(topic string) { got = append(got, "second:"+topic) })

	bus.Publish(TopicUpdate)

	assert.Equal(t, []string{"first:update", "second:update"}, got)
}

func TestTopicsAreIsolated(t *testing.T) {
	bus := NewBus()

	updates := 0
	adminUpdates := 0
	bus.Subscribe(TopicUpdate, func(string) { updates++ })
	bus.Subscribe(TopicAdminUpdate, func(string) { adminUpdates++ })

	bus.Publish(TopicUpdate)
	bus.Publish(TopicUpdate)
	bus.Publish(TopicAdminUpdate)

	assert.Equal(t, 2, updates)
	assert.Equal(t, 1, adminUpdates)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() { bus.Publish(TopicUpdate) })
}

func TestSubscribeDuringPublishDoesNotDeadlock(t *testing.T) {
	bus := NewBus()
	bus.Subscribe(TopicUpdate, func(string) {
		bus.Subscribe(TopicAdminUpdate, func(string) {})
	})
	assert.NotPanics(t, func() { bus.Publish(TopicUpdate) })
}
