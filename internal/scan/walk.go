package scan

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/AScotM/inodestat/internal/logger"
)

// Item is one filesystem entry produced by the walker.
type Item struct {
	Path  string
	Depth int
	Info  os.FileInfo
	// IsSymlink reports the lstat view. Stays false when the link was
	// followed and resolved.
	IsSymlink bool
	// Entries is the directory entry count, or -1 for non-directories
	// and unreadable directories.
	Entries int
}

// WalkFunc receives every walked item in pre-order.
type WalkFunc func(it Item)

// Walker enumerates a subtree with an explicit work stack, carrying
// depth alongside each pending directory.
type Walker struct {
	// Root is the resolved scan root. The root itself is not emitted;
	// its entries are depth 1.
	Root string
	// Excludes are glob patterns tested against the slashed full path
	// and the base name. A match prunes the item and its subtree.
	Excludes []string
	// MaxDepth skips items at or beyond this depth (0 = unlimited).
	MaxDepth int
	// Follow traverses symlinked directories and classifies links by
	// their target's metadata.
	Follow bool
	// OnDenied is invoked for per-item metadata and directory read
	// failures. The walk always continues.
	OnDenied func(path string, err error)
}

type frame struct {
	path  string
	depth int
	// emit yields the directory item itself before its entries; false
	// only for the root.
	emit bool
	info os.FileInfo
	link bool
}

// Walk traverses the tree and calls fn for every item. It returns true
// when ctx was cancelled before the walk finished; everything emitted
// up to that point stands.
func (w *Walker) Walk(ctx context.Context, fn WalkFunc) bool {
	stack := []frame{{path: w.Root, depth: 0}}

	// Tracks visited directories when following links, so a symlink
	// back into an ancestor cannot recurse forever.
	var seen map[devInode]struct{}
	if w.Follow {
		seen = make(map[devInode]struct{})

		if info, err := os.Stat(w.Root); err == nil {
			if id, ok := inodeID(info); ok {
				seen[id] = struct{}{}
			}
		}
	}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			return true
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(f.path)
		if err != nil {
			w.deny(f.path, err)

			if f.emit {
				fn(Item{Path: f.path, Depth: f.depth, Info: f.info, IsSymlink: f.link, Entries: -1})
			}

			continue
		}

		if f.emit {
			fn(Item{Path: f.path, Depth: f.depth, Info: f.info, IsSymlink: f.link, Entries: len(entries)})
		}

		// Reverse push order keeps subdirectories in lexical order on
		// the LIFO stack.
		var dirs []frame

		for _, entry := range entries {
			if ctx.Err() != nil {
				return true
			}

			path := filepath.Join(f.path, entry.Name())
			depth := f.depth + 1

			if w.excluded(path, entry.Name()) {
				logger.Get().Debug().Str("path", path).Msg("excluded")

				continue
			}

			if w.MaxDepth > 0 && depth >= w.MaxDepth {
				continue
			}

			info, err := entry.Info()
			if err != nil {
				w.deny(path, err)

				continue
			}

			isLink := info.Mode()&os.ModeSymlink != 0

			if isLink && w.Follow {
				// Broken links keep their lstat metadata and remain
				// classified as symlinks.
				if target, err := os.Stat(path); err == nil {
					info = target
					isLink = false
				}
			}

			if info.IsDir() {
				if w.Follow {
					id, ok := inodeID(info)
					if ok {
						if _, dup := seen[id]; dup {
							continue
						}

						seen[id] = struct{}{}
					}
				}

				dirs = append(dirs, frame{path: path, depth: depth, emit: true, info: info, link: isLink})

				continue
			}

			fn(Item{Path: path, Depth: depth, Info: info, IsSymlink: isLink, Entries: -1})
		}

		for i := len(dirs) - 1; i >= 0; i-- {
			stack = append(stack, dirs[i])
		}
	}

	return false
}

func (w *Walker) deny(path string, err error) {
	logger.Get().Debug().Str("path", path).Err(err).Msg("access denied")

	if w.OnDenied != nil {
		w.OnDenied(path, err)
	}
}

func (w *Walker) excluded(path, base string) bool {
	return Excluded(w.Excludes, path, base)
}

// Excluded reports whether any glob pattern matches the slashed full
// path or the base name.
func Excluded(patterns []string, path, base string) bool {
	if len(patterns) == 0 {
		return false
	}

	slashed := filepath.ToSlash(path)

	for _, p := range patterns {
		if ok, err := doublestar.Match(p, slashed); err == nil && ok {
			return true
		}

		if ok, err := doublestar.Match(p, base); err == nil && ok {
			return true
		}
	}

	return false
}
