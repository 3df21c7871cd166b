package cache

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parceldash/internal/metrics"
	"parceldash/internal/types"
)

func key(op, params string) Key {
	return Key{Variant: types.VariantLarge, Op: op, Params: params}
}

func TestMemoHit(t *testing.T) {
	c := New(0, nil)
	calls := 0
	compute := func() (*types.RecordSet, error) {
		calls++
		return &types.RecordSet{Variant: types.VariantLarge}, nil
	}

	a, err := Memo(c, key("filter", "years=2020..2024"), compute)
	require.NoError(t, err)
	b, err := Memo(c, key("filter", "years=2020..2024"), compute)
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, c.Len())

	_, err = Memo(c, key("filter", "years=2021..2024"), compute)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "different parameters are a different entry")

	_, err = Memo(c, Key{Variant: types.VariantReduced, Op: "filter", Params: "years=2020..2024"}, compute)
	require.NoError(t, err)
	assert.Equal(t, 3, calls, "variant is part of the key")
}

func TestErrorsAreNotCached(t *testing.T) {
	c := New(0, nil)
	boom := errors.New("boom")
	calls := 0

	_, err := Memo(c, key("normalize", ""), func() (int, error) {
		calls++
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, err := Memo(c, key("normalize", ""), func() (int, error) {
		calls++
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 2, calls)
}

func TestFlush(t *testing.T) {
	c := New(0, nil)
	_, _ = Memo(c, key("normalize", ""), func() (int, error) { return 1, nil })
	require.Equal(t, 1, c.Len())

	c.Flush()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, uint64(1), c.Generation())
	_, ok := c.Get(key("normalize", ""))
	assert.False(t, ok)
}

func TestFlushDuringComputation(t *testing.T) {
	c := New(0, nil)
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan int)

	go func() {
		v, _ := Memo(c, key("filter", "x"), func() (int, error) {
			close(started)
			<-release
			return 1, nil
		})
		done <- v
	}()

	<-started
	c.Flush()
	close(release)

	assert.Equal(t, 1, <-done, "caller still gets its value")
	assert.Equal(t, 0, c.Len(), "stale value must not repopulate the cache")
}

func TestConcurrentMissesCollapse(t *testing.T) {
	c := New(0, nil)
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]*int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := Memo(c, key("map", "0.1/10"), func() (*int, error) {
				calls.Add(1)
				<-release
				n := 42
				return &n, nil
			})
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results[1:] {
		assert.Same(t, results[0], r)
	}
}

func TestMaxEntries(t *testing.T) {
	m, err := metrics.New()
	require.NoError(t, err)
	c := New(2, m)

	for _, p := range []string{"a", "b", "c"} {
		_, err := Memo(c, key("filter", p), func() (string, error) { return p, nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get(key("filter", "c"))
	assert.True(t, ok)
	assert.Equal(t, uint64(0), c.Generation(), "size bound does not invalidate running work")
	want := `
# HELP parceldash_cache_flushes_total Result cache flushes (variant switches and size bound).
# TYPE parceldash_cache_flushes_total counter
parceldash_cache_flushes_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(want), "parceldash_cache_flushes_total"))
}

func TestHashCollision(t *testing.T) {
	c := New(0, nil)
	c.hash = func(string) uint64 { return 1 }

	a, _ := Memo(c, key("filter", "a"), func() (string, error) { return "a", nil })
	b, _ := Memo(c, key("filter", "b"), func() (string, error) { return "b", nil })
	assert.Equal(t, "a", a)
	assert.Equal(t, "b", b)
	assert.Equal(t, 2, c.Len())
}

func TestMemoTypeMismatch(t *testing.T) {
	c := New(0, nil)
	_, _ = Memo(c, key("summary", "x"), func() (int, error) { return 1, nil })
	_, err := Memo(c, key("summary", "x"), func() (string, error) { return "1", nil })
	assert.Error(t, err)
}

func TestNilCache(t *testing.T) {
	v, err := Memo(nil, key("filter", ""), func() (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}
