package status

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricMap_GetCachesPointer(t *testing.T) {
	r := NewRegistry()
	a := r.Ints.Get("engine.ticks")
	b := r.Ints.Get("engine.ticks")
	assert.Same(t, a, b)
	assert.Equal(t, 1, r.TotalCount())
}

func TestMetricMap_ConcurrentWriters(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				r.Ints.Get("hits").Add(1)
				r.Floats.Get("peak").Max(float64(j))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(8000), r.Ints.Get("hits").Load())
	assert.Equal(t, 999.0, r.Floats.Get("peak").Get())
}

func TestAtomicString_Truncates(t *testing.T) {
	var s AtomicString
	assert.Empty(t, s.Load())
	s.Store("0123456789012345678901234")
	assert.Len(t, s.Load(), MaxStringLen)
}

func TestRegistry_LinesOrdered(t *testing.T) {
	r := NewRegistry()
	r.Ints.Get("b.count").Store(3)
	r.Ints.Get("a.count").Store(1)
	r.Floats.Get("lag_ms").Set(16.6667)
	r.Strings.Get("state").Store("running")

	assert.Equal(t, []string{"state=running", "a.count=1", "b.count=3", "lag_ms=16.67"}, r.Lines())
}
