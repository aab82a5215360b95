package sequence

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextFromEmptyStore(t *testing.T) {
	a := New(func(context.Context) (int, error) { return 0, nil })

	for _, want := range []string{"#MP0001", "#MP0002", "#MP0003"} {
		got, err := a.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestNextResumesAfterRestart(t *testing.T) {
	existing := []string{"#MP0001", "#MP0002", "#MP0003"}
	a := New(func(context.Context) (int, error) { return MaxOf(existing), nil })

	got, err := a.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "#MP0004", got)
}

func TestSeederRunsOnce(t *testing.T) {
	calls := 0
	a := New(func(context.Context) (int, error) {
		calls++
		return 7, nil
	})
	_, _ = a.Next(context.Background())
	got, err := a.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "#MP0009", got)
}

func TestSeedFailureIsRetried(t *testing.T) {
	fail := true
	a := New(func(context.Context) (int, error) {
		if fail {
			return 0, errors.New("db down")
		}
		return 10, nil
	})

	_, err := a.Next(context.Background())
	require.Error(t, err)

	fail = false
	got, err := a.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "#MP0011", got)
}

func TestConcurrentNextIsUnique(t *testing.T) {
	a := New(nil)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[string]bool{}
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := a.Next(context.Background())
			assert.NoError(t, err)
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
	assert.True(t, seen["#MP0050"])
}

func TestParseAndFormat(t *testing.T) {
	assert.Equal(t, "#MP0007", Format(7))
	assert.Equal(t, "#MP12345", Format(12345))

	n, ok := Parse("#MP0042")
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	for _, bad := range []string{"MP0042", "#MP42", "#MP00a1", ""} {
		_, ok := Parse(bad)
		assert.False(t, ok, bad)
	}
	assert.Equal(t, 12345, MaxOf([]string{"#MP0009", "#MP12345", "junk"}))
}
