package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceLockRejectsSecondHolder(t *testing.T) {
	first, err := acquireLockAt("127.0.0.1:0")
	require.NoError(t, err)
	address := first.Address()
	require.NotEmpty(t, address)

	_, err = acquireLockAt(address)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	require.NoError(t, first.Release())
	require.NoError(t, first.Release())
	assert.Empty(t, first.Address())

	again, err := acquireLockAt(address)
	require.NoError(t, err)
	assert.NoError(t, again.Release())
}

func TestLockPortIsStableAndInRange(t *testing.T) {
	port := lockPort("io.github.tomatray")
	assert.Equal(t, port, lockPort("io.github.tomatray"))
	assert.GreaterOrEqual(t, port, 20000)
	assert.LessOrEqual(t, port, 39999)

	var nilLock *InstanceLock
	assert.NoError(t, nilLock.Release())
}
