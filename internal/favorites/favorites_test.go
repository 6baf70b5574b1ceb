package favorites

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToggle(t *testing.T) {
	t.Parallel()

	var s Set
	require.True(t, s.Toggle("1"))
	require.True(t, s.Has("1"))
	require.True(t, s.Toggle("22"))
	require.Equal(t, []string{"1", "22"}, s.IDs())

	require.False(t, s.Toggle("1"))
	require.False(t, s.Has("1"))
	require.Equal(t, 1, s.Len())
}

func TestDoubleToggleRestoresSet(t *testing.T) {
	t.Parallel()

	var s Set
	s.Toggle("5")
	before := s.IDs()
	for _, id := range []string{"5", "9", "26"} {
		s.Toggle(id)
		s.Toggle(id)
		require.Equal(t, before, s.IDs())
	}
}

func TestConcurrentToggles(t *testing.T) {
	t.Parallel()

	var s Set
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Toggle("x")
			s.Has("x")
		}()
	}
	wg.Wait()
	require.False(t, s.Has("x"))
}
