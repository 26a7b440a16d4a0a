package scan

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerBound(t *testing.T) {
	tr := NewTracker(5, LargerSize)
	assert.Equal(t, 5, tr.Capacity())

	for i := 0; i < 100; i++ {
		tr.Offer(Entry{Path: fmt.Sprintf("f%d", i), Size: int64(i)})
	}

	assert.Equal(t, 5, tr.Len())

	out := tr.Finalize(3)
	require.Len(t, out, 3)
	assert.Equal(t, int64(99), out[0].Size)
	assert.Equal(t, int64(98), out[1].Size)
	assert.Equal(t, int64(97), out[2].Size)
}

func TestTrackerFinalizeSmallerThanK(t *testing.T) {
	tr := NewTracker(10, LargerSize)
	tr.Offer(Entry{Path: "a", Size: 1})
	tr.Offer(Entry{Path: "b", Size: 2})

	out := tr.Finalize(5)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].Path)
}

// Every returned entry must rank at least as high as every entry not
// returned.
func TestTrackerTopKCorrectness(t *testing.T) {
	const n, k = 1000, 20

	rng := rand.New(rand.NewSource(42))
	sizes := make([]int64, n)

	tr := NewTracker(2*k, LargerSize)

	for i := range sizes {
		sizes[i] = rng.Int63n(1 << 40)
		tr.Offer(Entry{Path: fmt.Sprintf("f%d", i), Size: sizes[i]})
	}

	sort.Slice(sizes, func(i, j int) bool { return sizes[i] > sizes[j] })

	out := tr.Finalize(k)
	require.Len(t, out, k)

	for i, e := range out {
		assert.Equal(t, sizes[i], e.Size)
	}
}

func TestTrackerOrderings(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	entries := []Entry{
		{Path: "mid", ModTime: base.AddDate(0, 0, 10), Size: 20},
		{Path: "old", ModTime: base, Size: 30},
		{Path: "new", ModTime: base.AddDate(0, 0, 20), Size: 10},
	}

	oldest := NewTracker(10, OlderMtime)
	newest := NewTracker(10, NewerMtime)

	for _, e := range entries {
		oldest.Offer(e)
		newest.Offer(e)
	}

	gotOld := oldest.Finalize(2)
	require.Len(t, gotOld, 2)
	assert.Equal(t, "old", gotOld[0].Path)
	assert.Equal(t, "mid", gotOld[1].Path)

	gotNew := newest.Finalize(2)
	require.Len(t, gotNew, 2)
	assert.Equal(t, "new", gotNew[0].Path)
	assert.Equal(t, "mid", gotNew[1].Path)
}

func TestTrackerEvictsWeakestOnly(t *testing.T) {
	tr := NewTracker(2, LargerSize)

	tr.Offer(Entry{Path: "a", Size: 100})
	tr.Offer(Entry{Path: "b", Size: 200})
	// Smaller than both retained entries; must be dropped.
	tr.Offer(Entry{Path: "c", Size: 50})

	out := tr.Finalize(2)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].Path)
	assert.Equal(t, "a", out[1].Path)
}
