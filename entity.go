package gecs

// Entity is a unique identifier for an entity.
// Entities carry no data of their own; all state lives in component cells
// attached to them. Identifiers are issued by World.CreateEntity, increase
// monotonically, and are never reused within a process lifetime.
type Entity uint64

// EntityBuilder provides a fluent way to spawn an entity with an initial
// set of components. Obtain one via World.NewEntity.
//
// Because Go methods cannot take type parameters, components are attached
// through the package-level Attach function, which returns the builder for
// chaining:
//
//	e := gecs.Attach(gecs.Attach(w.NewEntity(),
//	    gecs.Pos3{}),
//	    Health{Current: 100, Max: 100},
//	).Build()
type EntityBuilder struct {
	world  *World
	entity Entity
}

// NewEntity creates a new entity and returns a builder for attaching
// components to it. The entity exists as soon as this returns; Build only
// hands back its identifier.
func (w *World) NewEntity() *EntityBuilder {
	return &EntityBuilder{
		world:  w,
		entity: w.CreateEntity(),
	}
}

// Attach adds a component to the builder's entity and returns the builder.
func Attach[T any](b *EntityBuilder, value T) *EntityBuilder {
	if b == nil {
		return nil
	}
	Add(b.world, b.entity, value)
	return b
}

// Entity returns the identifier of the entity under construction.
func (b *EntityBuilder) Entity() Entity {
	return b.entity
}

// Build finalizes the builder and returns the entity.
func (b *EntityBuilder) Build() Entity {
	return b.entity
}
