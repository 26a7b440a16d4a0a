package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func collect(t *testing.T, w *Walker) []Item {
	t.Helper()

	var items []Item

	interrupted := w.Walk(context.Background(), func(it Item) {
		items = append(items, it)
	})
	require.False(t, interrupted)

	return items
}

func names(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = filepath.Base(it.Path)
	}

	return out
}

func TestWalkPreOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), 1)
	writeFile(t, filepath.Join(root, "sub", "b.txt"), 1)
	writeFile(t, filepath.Join(root, "sub", "deep", "c.txt"), 1)

	items := collect(t, &Walker{Root: root})

	got := names(items)
	require.Len(t, got, 5)

	// Parent directories always precede their children.
	pos := make(map[string]int, len(got))
	for i, n := range got {
		pos[n] = i
	}

	assert.Less(t, pos["sub"], pos["b.txt"])
	assert.Less(t, pos["sub"], pos["deep"])
	assert.Less(t, pos["deep"], pos["c.txt"])
}

func TestWalkDepths(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), 1)
	writeFile(t, filepath.Join(root, "sub", "b.txt"), 1)

	items := collect(t, &Walker{Root: root})

	depths := make(map[string]int)
	for _, it := range items {
		depths[filepath.Base(it.Path)] = it.Depth
	}

	assert.Equal(t, 1, depths["a.txt"])
	assert.Equal(t, 1, depths["sub"])
	assert.Equal(t, 2, depths["b.txt"])
}

func TestWalkMaxDepth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), 1)
	writeFile(t, filepath.Join(root, "sub", "b.txt"), 1)

	// Items at or beyond the ceiling are skipped entirely.
	items := collect(t, &Walker{Root: root, MaxDepth: 2})

	got := names(items)
	assert.ElementsMatch(t, []string{"a.txt", "sub"}, got)
}

func TestWalkExcludeBasenamePattern(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.go"), 1)
	writeFile(t, filepath.Join(root, "any", "deep", "path", "x.tmp"), 1)

	items := collect(t, &Walker{Root: root, Excludes: []string{"*.tmp"}})

	for _, it := range items {
		assert.NotEqual(t, "x.tmp", filepath.Base(it.Path))
	}
}

func TestWalkExcludeDirectoryPrunesSubtree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep.txt"), 1)
	writeFile(t, filepath.Join(root, "node_modules", "dep", "index.js"), 1)

	items := collect(t, &Walker{Root: root, Excludes: []string{"node_modules"}})

	got := names(items)
	assert.ElementsMatch(t, []string{"keep.txt"}, got)
}

func TestWalkEmptyDirDetection(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "hollow"), 0o755))
	writeFile(t, filepath.Join(root, "full", "one.txt"), 1)

	items := collect(t, &Walker{Root: root})

	entries := make(map[string]int)
	for _, it := range items {
		if it.Info.IsDir() {
			entries[filepath.Base(it.Path)] = it.Entries
		}
	}

	assert.Equal(t, 0, entries["hollow"])
	assert.Equal(t, 1, entries["full"])
}

func TestWalkSymlinkNoFollow(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "target", "inner.txt"), 1)
	require.NoError(t, os.Symlink(filepath.Join(root, "target"), filepath.Join(root, "link")))

	items := collect(t, &Walker{Root: root})

	var linkItem *Item
	for i := range items {
		if filepath.Base(items[i].Path) == "link" {
			linkItem = &items[i]
		}
	}

	require.NotNil(t, linkItem)
	assert.True(t, linkItem.IsSymlink)

	// The link target's subtree is not traversed twice.
	count := 0
	for _, it := range items {
		if filepath.Base(it.Path) == "inner.txt" {
			count++
		}
	}

	assert.Equal(t, 1, count)
}

func TestWalkSymlinkFollow(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "target", "inner.txt"), 1)
	require.NoError(t, os.Symlink(filepath.Join(root, "target"), filepath.Join(root, "link")))

	items := collect(t, &Walker{Root: root, Follow: true})

	for _, it := range items {
		if filepath.Base(it.Path) == "link" {
			// Followed links are classified by target metadata.
			assert.False(t, it.IsSymlink)
			assert.True(t, it.Info.IsDir())
		}
	}

	// The followed directory's own subtree is only walked once: the
	// cycle set has already seen the target's inode.
	count := 0
	for _, it := range items {
		if filepath.Base(it.Path) == "inner.txt" {
			count++
		}
	}

	assert.Equal(t, 1, count)
}

func TestWalkCancellation(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &Walker{Root: root}

	var count int

	interrupted := w.Walk(ctx, func(Item) { count++ })
	assert.True(t, interrupted)
	assert.Zero(t, count)
}

func TestWalkDeniedCallback(t *testing.T) {
	root := t.TempDir()

	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Mkdir(locked, 0o755))
	writeFile(t, filepath.Join(locked, "hidden.txt"), 1)
	require.NoError(t, os.Chmod(locked, 0o000))

	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	if os.Geteuid() == 0 {
		t.Skip("running as root, permission bits are not enforced")
	}

	var denied int

	w := &Walker{
		Root:     root,
		OnDenied: func(string, error) { denied++ },
	}

	items := collect(t, w)

	assert.Equal(t, 1, denied)

	// The unreadable directory itself is still reported; its subtree
	// is not.
	got := names(items)
	assert.Contains(t, got, "locked")
	assert.NotContains(t, got, "hidden.txt")
}
