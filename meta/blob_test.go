package meta

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlobLifecycle(t *testing.T) {
	var m Blob
	require.True(t, m.IsEmpty())
	require.Equal(t, 0, m.Len())

	require.True(t, m.Set([]byte{1, 2, 3}))
	require.False(t, m.IsEmpty())
	require.Equal(t, 3, m.Len())
	require.Equal(t, []byte{1, 2, 3}, m.Bytes())

	require.False(t, m.Set([]byte{9}))
	require.Equal(t, []byte{1, 2, 3}, m.Bytes())

	m.Release()
	require.True(t, m.IsEmpty())
}

func TestBlobSetEmptyPayload(t *testing.T) {
	var m Blob
	require.True(t, m.Set(nil))
	require.False(t, m.IsEmpty())
	require.Equal(t, 0, m.Len())
}

func TestBlobClone(t *testing.T) {
	m := FromBytes([]byte{4, 0, 0, 0})
	c := m.Clone()
	c.Bytes()[0] = 8

	require.Equal(t, byte(4), m.Bytes()[0])

	var empty Blob
	clone := empty.Clone()
	require.True(t, clone.IsEmpty())
}
