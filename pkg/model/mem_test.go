//go:build test

package model

import (
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// churn grows m with words unique to cycle and then removes every n-gram
// except "alpha beta".
func churn(t *testing.T, m *Model, cycle, words int) {
	t.Helper()
	var b strings.Builder
	for i := 0; i < words; i++ {
		fmt.Fprintf(&b, "w%d_%d ", cycle, i)
	}
	require.NoError(t, m.Grow(text(b.String())))
	for g := range m.NGrams() {
		if g != "alpha beta" {
			require.NoError(t, m.Remove(g))
		}
	}
}

func heapAlloc() uint64 {
	var ms runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}

func TestMemoryStableUnderChurn(t *testing.T) {
	cycles := []int{10, 50}
	if testing.Short() {
		cycles = cycles[:1]
	}
	for _, n := range cycles {
		t.Run(fmt.Sprintf("cycles_%d", n), func(t *testing.T) {
			m := trained(t, 2, "alpha beta")
			churn(t, m, -1, 2000)
			baseline := heapAlloc()
			baselineGoroutines := runtime.NumGoroutine()

			for c := 0; c < n; c++ {
				churn(t, m, c, 2000)
			}

			st := m.Stats()
			assert.Equal(t, 1, st.UniqueNGrams)
			assert.Equal(t, 1, st.Headwords)
			assert.LessOrEqual(t, st.Capacity, 17, "headword table did not shrink back")

			final := heapAlloc()
			delta := int64(final) - int64(baseline)
			t.Logf("cycles=%d heap_delta=%d bytes capacity=%d", n, delta, st.Capacity)
			assert.Less(t, delta, int64(1<<20), "heap kept growing across churn cycles")
			assert.LessOrEqual(t, runtime.NumGoroutine()-baselineGoroutines, 0)
		})
	}
}
