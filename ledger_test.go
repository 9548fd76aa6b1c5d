package gecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompatible(t *testing.T) {
	assert.True(t, compatible(nil, AccessRead))
	assert.True(t, compatible(nil, AccessWrite))

	readers := []lease{{query: 1, mode: AccessRead}, {query: 2, mode: AccessRead}}
	assert.True(t, compatible(readers, AccessRead))
	assert.False(t, compatible(readers, AccessWrite))

	writer := []lease{{query: 1, mode: AccessWrite}}
	assert.False(t, compatible(writer, AccessRead))
	assert.False(t, compatible(writer, AccessWrite))
}

func TestTryGrantAllOrNothing(t *testing.T) {
	l := newLedger()
	keyA := resourceKey{entity: 1, component: 0}
	keyB := resourceKey{entity: 2, component: 0}

	require.True(t, l.tryGrant(1, []keyRequest{{key: keyB, mode: AccessWrite}}))

	// Batch over a free key and a held key must commit nothing.
	granted := l.tryGrant(2, []keyRequest{
		{key: keyA, mode: AccessRead},
		{key: keyB, mode: AccessRead},
	})
	assert.False(t, granted)
	assert.Empty(t, l.holders(keyA), "free key must not be leased by a failed batch")

	// The free key alone is still grantable.
	assert.True(t, l.tryGrant(3, []keyRequest{{key: keyA, mode: AccessRead}}))
}

func TestConcurrentReadersShareKey(t *testing.T) {
	l := newLedger()
	key := resourceKey{entity: 5, component: 1}

	require.True(t, l.tryGrant(1, []keyRequest{{key: key, mode: AccessRead}}))
	require.True(t, l.tryGrant(2, []keyRequest{{key: key, mode: AccessRead}}))
	assert.Len(t, l.holders(key), 2)

	assert.False(t, l.tryGrant(3, []keyRequest{{key: key, mode: AccessWrite}}))
}

func TestReleaseRemovesOnlyOwnLease(t *testing.T) {
	l := newLedger()
	key := resourceKey{entity: 7, component: 2}

	require.True(t, l.tryGrant(1, []keyRequest{{key: key, mode: AccessRead}}))
	require.True(t, l.tryGrant(2, []keyRequest{{key: key, mode: AccessRead}}))

	l.release(1, []resourceKey{key})
	holders := l.holders(key)
	require.Len(t, holders, 1)
	assert.Equal(t, uint64(2), holders[0].query)

	l.release(2, []resourceKey{key})
	assert.Equal(t, 0, l.activeKeyCount(), "empty key sets must be deleted")
}

func TestReleaseAfterResetIsHarmless(t *testing.T) {
	l := newLedger()
	key := resourceKey{entity: 3, component: 0}
	require.True(t, l.tryGrant(1, []keyRequest{{key: key, mode: AccessWrite}}))

	l.reset()
	assert.Equal(t, 0, l.activeKeyCount())

	// The stale holder releasing later must not panic or resurrect keys.
	l.release(1, []resourceKey{key})
	assert.Equal(t, 0, l.activeKeyCount())
}
