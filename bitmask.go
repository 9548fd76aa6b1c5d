package gecs

import (
	"math/bits"
	"strings"
)

// Bitmask is a 256-bit bitmask tracking component presence on an entity.
// It supports up to 256 unique component types.
type Bitmask [4]uint64

// Set sets the bit for the given component ID.
func (m *Bitmask) Set(id ComponentID) {
	m[id/64] |= 1 << (id % 64)
}

// Clear clears the bit for the given component ID.
func (m *Bitmask) Clear(id ComponentID) {
	m[id/64] &^= 1 << (id % 64)
}

// Has returns true if the bit for the given component ID is set.
func (m *Bitmask) Has(id ComponentID) bool {
	return m[id/64]&(1<<(id%64)) != 0
}

// ContainsAll returns true if every bit set in other is also set in m.
// Used to check that an entity has all of a system's required components.
func (m *Bitmask) ContainsAll(other Bitmask) bool {
	return (m[0]&other[0] == other[0]) &&
		(m[1]&other[1] == other[1]) &&
		(m[2]&other[2] == other[2]) &&
		(m[3]&other[3] == other[3])
}

// ContainsAny returns true if any bit set in other is also set in m.
func (m *Bitmask) ContainsAny(other Bitmask) bool {
	return (m[0]&other[0] != 0) ||
		(m[1]&other[1] != 0) ||
		(m[2]&other[2] != 0) ||
		(m[3]&other[3] != 0)
}

// IsZero returns true if no bits are set.
func (m *Bitmask) IsZero() bool {
	return m[0] == 0 && m[1] == 0 && m[2] == 0 && m[3] == 0
}

// Count returns the number of bits set.
func (m *Bitmask) Count() int {
	return bits.OnesCount64(m[0]) +
		bits.OnesCount64(m[1]) +
		bits.OnesCount64(m[2]) +
		bits.OnesCount64(m[3])
}

// String lists the names of the set components, for debugging.
func (m *Bitmask) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	first := true
	for id := ComponentID(0); int(id) < RegisteredComponentCount(); id++ {
		if !m.Has(id) {
			continue
		}
		if !first {
			sb.WriteString(", ")
		}
		sb.WriteString(ComponentName(id))
		first = false
	}
	sb.WriteByte(']')
	return sb.String()
}
