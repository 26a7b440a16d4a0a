package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopDirectories(t *testing.T) {
	records := map[string]*InodeRecord{
		"/data/big/one.bin":  {Path: "/data/big/one.bin", Size: 600},
		"/data/big/two.bin":  {Path: "/data/big/two.bin", Size: 400},
		"/data/small/a.txt":  {Path: "/data/small/a.txt", Size: 10},
		"/data/small/b.txt":  {Path: "/data/small/b.txt", Size: 20},
		"/data/small/c.txt":  {Path: "/data/small/c.txt", Size: 30},
		"/data/medium/d.iso": {Path: "/data/medium/d.iso", Size: 500},
	}

	stats := TopDirectories(records, 2)
	require.Len(t, stats, 2)

	assert.Equal(t, "/data/big", stats[0].Path)
	assert.Equal(t, int64(1000), stats[0].TotalSize)
	assert.Equal(t, int64(2), stats[0].FileCount)
	assert.Equal(t, "one.bin", stats[0].LargestFile)
	assert.Equal(t, int64(600), stats[0].LargestSize)
	assert.Equal(t, int64(500), stats[0].AvgSize)

	assert.Equal(t, "/data/medium", stats[1].Path)
	assert.Equal(t, int64(1), stats[1].FileCount)
	assert.Equal(t, int64(500), stats[1].AvgSize)
}

func TestTopDirectoriesEmpty(t *testing.T) {
	assert.Empty(t, TopDirectories(map[string]*InodeRecord{}, 5))
}

func TestTopDirectoriesNoLimit(t *testing.T) {
	records := map[string]*InodeRecord{
		"/a/x": {Path: "/a/x", Size: 1},
		"/b/y": {Path: "/b/y", Size: 2},
	}

	stats := TopDirectories(records, 10)
	require.Len(t, stats, 2)
	assert.Equal(t, "/b", stats[0].Path)
}
