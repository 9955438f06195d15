package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fadilmartias/jobmarket/internal/model"
)

func TestPublishFansOut(t *testing.T) {
	b := NewBus(zaptest.NewLogger(t).Sugar())
	a, unsubA := b.Subscribe("a", 4)
	c, unsubC := b.Subscribe("c", 4)
	defer unsubA()
	defer unsubC()

	b.Publish(model.SessionEvent{Seq: 1, Kind: model.EventSessionClaimed})

	assert.Equal(t, uint64(1), (<-a).Seq)
	assert.Equal(t, uint64(1), (<-c).Seq)
}

func TestPublishDropsWhenFull(t *testing.T) {
	b := NewBus(zaptest.NewLogger(t).Sugar())
	ch, unsub := b.Subscribe("slow", 1)
	defer unsub()

	b.Publish(model.SessionEvent{Seq: 1}, model.SessionEvent{Seq: 2})

	require.Len(t, ch, 1)
	assert.Equal(t, uint64(1), (<-ch).Seq)
}

func TestUnsubscribeClosesOnce(t *testing.T) {
	b := NewBus(zaptest.NewLogger(t).Sugar())
	ch, unsub := b.Subscribe("x", 1)
	unsub()
	unsub()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, b.Subscribers())

	b.Publish(model.SessionEvent{Seq: 3})
}

func TestCloseEndsSubscriptions(t *testing.T) {
	b := NewBus(zaptest.NewLogger(t).Sugar())
	ch, unsub := b.Subscribe("x", 1)
	b.Close()
	unsub()

	_, ok := <-ch
	assert.False(t, ok)

	late, _ := b.Subscribe("late", 1)
	_, ok = <-late
	assert.False(t, ok)
}
