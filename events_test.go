package gecs_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benditorok/gecs"
)

type etPos struct{ X float32 }

type damageEvent struct {
	Target gecs.Entity
	Amount float32
}

func TestSubscribePublish(t *testing.T) {
	w := gecs.NewWorld()

	var got []damageEvent
	gecs.Subscribe(w, func(ev damageEvent) {
		got = append(got, ev)
	})

	w.Publish(damageEvent{Target: 1, Amount: 10})
	w.Publish(damageEvent{Target: 2, Amount: 20})

	require.Len(t, got, 2)
	assert.Equal(t, gecs.Entity(1), got[0].Target)
	assert.Equal(t, float32(20), got[1].Amount)
}

func TestSubscribersRunInOrder(t *testing.T) {
	w := gecs.NewWorld()

	var order []int
	gecs.Subscribe(w, func(damageEvent) { order = append(order, 1) })
	gecs.Subscribe(w, func(damageEvent) { order = append(order, 2) })

	w.Publish(damageEvent{})
	assert.Equal(t, []int{1, 2}, order)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	w := gecs.NewWorld()
	assert.NotPanics(t, func() {
		w.Publish(damageEvent{})
		w.Publish(nil)
	})
}

func TestSubscriberTypeIsolation(t *testing.T) {
	type otherEvent struct{}

	w := gecs.NewWorld()
	called := 0
	gecs.Subscribe(w, func(damageEvent) { called++ })

	w.Publish(otherEvent{})
	assert.Zero(t, called)
}

func TestStoreLifecycleEvents(t *testing.T) {
	w := gecs.NewWorld()

	var spawned []gecs.Entity
	var attached, detached []reflect.Type
	gecs.Subscribe(w, func(ev gecs.EntitySpawnEvent) {
		spawned = append(spawned, ev.Entity)
	})
	gecs.Subscribe(w, func(ev gecs.ComponentAttachEvent) {
		attached = append(attached, ev.ComponentType)
	})
	gecs.Subscribe(w, func(ev gecs.ComponentDetachEvent) {
		detached = append(detached, ev.ComponentType)
	})

	e := w.CreateEntity()
	gecs.Add(w, e, etPos{})
	gecs.Remove[etPos](w, e)

	posType := reflect.TypeOf((*etPos)(nil)).Elem()
	assert.Equal(t, []gecs.Entity{e}, spawned)
	assert.Equal(t, []reflect.Type{posType}, attached)
	assert.Equal(t, []reflect.Type{posType}, detached)
}

func TestLedgerResetEvent(t *testing.T) {
	w := gecs.NewWorld()

	resets := 0
	gecs.Subscribe(w, func(gecs.LedgerResetEvent) { resets++ })

	w.ResetLedger()
	assert.Equal(t, 1, resets)
}
