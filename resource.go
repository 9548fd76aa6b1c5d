package gecs

import "reflect"

// Resources are world-scoped singletons stored by concrete type. They live
// outside the entity/component model and outside the access ledger; callers
// that mutate a shared resource from concurrent systems must synchronize it
// themselves (or store a pointer to a type with internal locking).

// typeKey returns the lookup key for resources of type T.
func typeKey[T any]() any {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// resourceKeyOf returns the storage key for a concrete resource value.
func resourceKeyOf(res any) any {
	return reflect.TypeOf(res)
}

// RemoveResource deletes the singleton of type T from the world. Returns
// true if one was registered.
func RemoveResource[T any](w *World) bool {
	w.resourcesMu.Lock()
	defer w.resourcesMu.Unlock()
	key := typeKey[T]()
	if _, ok := w.resources[key]; !ok {
		return false
	}
	delete(w.resources, key)
	return true
}

// MustResource retrieves the singleton of type T and panics if none is
// registered. For setup paths where a missing resource is a programming
// error.
func MustResource[T any](w *World) T {
	v, ok := Resource[T](w)
	if !ok {
		panic("gecs: no resource of type " + reflect.TypeOf((*T)(nil)).Elem().String())
	}
	return v
}
