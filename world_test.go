package gecs_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benditorok/gecs"
)

type wtPos struct{ X, Y float32 }
type wtTag struct{}

type wtConnection struct {
	Addr       string
	Opened     bool
	Closed     bool
	AttachedTo gecs.Entity
}

func (c *wtConnection) Attach(w *gecs.World, e gecs.Entity) {
	c.Opened = true
	c.AttachedTo = e
}

func (c *wtConnection) Detach(w *gecs.World, e gecs.Entity) {
	c.Closed = true
}

func TestCreateEntityMonotonic(t *testing.T) {
	w := gecs.NewWorld()
	e0 := w.CreateEntity()
	e1 := w.CreateEntity()
	e2 := w.CreateEntity()

	assert.Equal(t, gecs.Entity(0), e0)
	assert.Equal(t, gecs.Entity(1), e1)
	assert.Equal(t, gecs.Entity(2), e2)
	assert.Equal(t, 3, w.EntityCount())

	assert.True(t, w.Exists(e2))
	assert.False(t, w.Exists(3))
}

func TestWorldsAreIndependent(t *testing.T) {
	w1 := gecs.NewWorld()
	w2 := gecs.NewWorld()
	assert.NotEqual(t, w1.ID(), w2.ID())

	e := w1.CreateEntity()
	gecs.Add(w1, e, wtPos{X: 1})

	assert.False(t, w2.Exists(e))
	_, ok := gecs.Get[wtPos](w2, e)
	assert.False(t, ok)
}

func TestAddGetRemove(t *testing.T) {
	w := gecs.NewWorld()
	e := w.CreateEntity()

	gecs.Add(w, e, wtPos{X: 3, Y: 4})
	assert.True(t, gecs.Has[wtPos](w, e))

	cell, ok := gecs.Get[wtPos](w, e)
	require.True(t, ok)
	assert.Equal(t, wtPos{X: 3, Y: 4}, cell.Load())

	cell.Store(wtPos{X: 5})
	assert.Equal(t, float32(5), cell.Load().X)

	gecs.Remove[wtPos](w, e)
	assert.False(t, gecs.Has[wtPos](w, e))

	// Removing again is a no-op.
	gecs.Remove[wtPos](w, e)
}

func TestCellSurvivesTableRemoval(t *testing.T) {
	w := gecs.NewWorld()
	e := w.CreateEntity()
	gecs.Add(w, e, wtPos{X: 1})

	cell, ok := gecs.Get[wtPos](w, e)
	require.True(t, ok)

	gecs.Remove[wtPos](w, e)

	// The detached cell stays readable and writable for its holder.
	cell.Update(func(p *wtPos) { p.X = 42 })
	assert.Equal(t, float32(42), cell.Load().X)
}

func TestEntitiesWithAndMasks(t *testing.T) {
	w := gecs.NewWorld()
	e1 := w.CreateEntity()
	e2 := w.CreateEntity()
	e3 := w.CreateEntity()

	gecs.Add(w, e1, wtPos{})
	gecs.Add(w, e2, wtPos{})
	gecs.Add(w, e2, wtTag{})
	gecs.Add(w, e3, wtTag{})

	assert.ElementsMatch(t, []gecs.Entity{e1, e2}, gecs.EntitiesWith[wtPos](w))
	assert.ElementsMatch(t, []gecs.Entity{e2, e3}, gecs.EntitiesWith[wtTag](w))

	both := w.MaskOf(e2)
	assert.ElementsMatch(t, []gecs.Entity{e2}, w.EntitiesMatching(both))

	gecs.Remove[wtTag](w, e2)
	assert.Empty(t, w.EntitiesMatching(both))
}

func TestEntityBuilder(t *testing.T) {
	w := gecs.NewWorld()

	e := gecs.Attach(gecs.Attach(w.NewEntity(),
		wtPos{X: 1}),
		wtTag{},
	).Build()

	assert.True(t, gecs.Has[wtPos](w, e))
	assert.True(t, gecs.Has[wtTag](w, e))
}

func TestLifecycleHooks(t *testing.T) {
	w := gecs.NewWorld()
	e := w.CreateEntity()

	gecs.Add(w, e, wtConnection{Addr: "db:5432"})

	cell, ok := gecs.Get[wtConnection](w, e)
	require.True(t, ok)
	cell.Read(func(c *wtConnection) {
		assert.True(t, c.Opened, "Attach hook must run on Add")
		assert.Equal(t, e, c.AttachedTo)
		assert.False(t, c.Closed)
	})

	gecs.Remove[wtConnection](w, e)
	cell.Read(func(c *wtConnection) {
		assert.True(t, c.Closed, "Detach hook must run on Remove")
	})
}

func TestResources(t *testing.T) {
	type clock struct{ Frame uint64 }

	w := gecs.NewWorld()
	_, ok := gecs.Resource[*clock](w)
	assert.False(t, ok)

	c := &clock{Frame: 7}
	w.AddResource(c)

	got, ok := gecs.Resource[*clock](w)
	require.True(t, ok)
	assert.Same(t, c, got)
	assert.Same(t, c, gecs.MustResource[*clock](w))

	assert.True(t, gecs.RemoveResource[*clock](w))
	assert.False(t, gecs.RemoveResource[*clock](w))
	assert.Panics(t, func() { gecs.MustResource[*clock](w) })
}

func TestResetLedgerRecoversAbandonedLeases(t *testing.T) {
	w := gecs.NewWorld()
	e := w.CreateEntity()
	gecs.Add(w, e, wtPos{})

	abandoned, err := w.TryAcquire(gecs.Write[wtPos](gecs.NewQuery(), e))
	require.NoError(t, err)
	require.Equal(t, 1, w.ActiveLeaseCount())

	w.ResetLedger()
	assert.Equal(t, 0, w.ActiveLeaseCount())

	guard, err := w.TryAcquire(gecs.Write[wtPos](gecs.NewQuery(), e))
	require.NoError(t, err, "reset must unblock the pair")

	// The stale guard releasing later must not disturb the new lease.
	abandoned.Release()
	_, err = w.TryAcquire(gecs.Write[wtPos](gecs.NewQuery(), e))
	assert.ErrorIs(t, err, gecs.ErrUnavailable)

	guard.Release()
}

func TestBuiltinComponents(t *testing.T) {
	w := gecs.NewWorld()
	e := w.CreateEntity()

	gecs.Add(w, e, gecs.NewPos3(mgl32.Vec3{1, 2, 3}))
	gecs.Add(w, e, gecs.UniformScale(2))
	gecs.Add(w, e, gecs.Name("crate"))

	pos, ok := gecs.Get[gecs.Pos3](w, e)
	require.True(t, ok)
	assert.Equal(t, float32(2), pos.Load().Pos.Y())

	scale, ok := gecs.Get[gecs.Scale](w, e)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, scale.Load().Vec3())

	h := gecs.Health{Current: 10, Max: 100}
	h.Heal(200)
	assert.Equal(t, float32(100), h.Current)
	h.Damage(250)
	assert.Equal(t, float32(0), h.Current)
	assert.False(t, h.Alive())
}
