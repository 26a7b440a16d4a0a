package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Kind discriminates inode types.
type Kind int

const (
	KindFile Kind = iota
	KindDir
	KindSymlink
	KindSocket
	KindFifo
	KindBlockDev
	KindCharDev
	KindOther
)

// String returns the report label for the kind.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "directory"
	case KindSymlink:
		return "symlink"
	case KindSocket:
		return "socket"
	case KindFifo:
		return "fifo"
	case KindBlockDev:
		return "block device"
	case KindCharDev:
		return "char device"
	default:
		return "other"
	}
}

// KindFromMode derives the kind from the standard mode type bits.
// isLink reports the lstat view; it wins over the mode when set, so
// unfollowed symlinks classify as symlinks regardless of their target.
func KindFromMode(mode os.FileMode, isLink bool) Kind {
	switch {
	case isLink || mode&os.ModeSymlink != 0:
		return KindSymlink
	case mode.IsRegular():
		return KindFile
	case mode.IsDir():
		return KindDir
	case mode&os.ModeSocket != 0:
		return KindSocket
	case mode&os.ModeNamedPipe != 0:
		return KindFifo
	case mode&os.ModeDevice != 0 && mode&os.ModeCharDevice != 0:
		return KindCharDev
	case mode&os.ModeDevice != 0:
		return KindBlockDev
	default:
		return KindOther
	}
}

// Size bucket labels, ordered.
var SizeBuckets = []string{
	"< 1 KB",
	"1 KB - 1 MB",
	"1 MB - 10 MB",
	"10 MB - 100 MB",
	"100 MB - 1 GB",
	"> 1 GB",
}

// Age bucket labels, ordered newest first.
var AgeBuckets = []string{
	"Today",
	"This week",
	"This month",
	"This year",
	"Older",
}

// SizeBucket maps a byte count to its distribution label. Boundaries
// are closed-open: exactly 1 KiB lands in "1 KB - 1 MB".
func SizeBucket(size int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
		gb = 1 << 30
	)

	switch {
	case size < kb:
		return SizeBuckets[0]
	case size < mb:
		return SizeBuckets[1]
	case size < 10*mb:
		return SizeBuckets[2]
	case size < 100*mb:
		return SizeBuckets[3]
	case size < gb:
		return SizeBuckets[4]
	default:
		return SizeBuckets[5]
	}
}

// AgeBucket maps a modification time to its distribution label
// relative to now. Boundaries are closed-open: an age of exactly one
// day lands in "This week".
func AgeBucket(mtime, now time.Time) string {
	age := now.Sub(mtime)

	switch {
	case age < 24*time.Hour:
		return AgeBuckets[0]
	case age < 7*24*time.Hour:
		return AgeBuckets[1]
	case age < 30*24*time.Hour:
		return AgeBuckets[2]
	case age < 365*24*time.Hour:
		return AgeBuckets[3]
	default:
		return AgeBuckets[4]
	}
}

// Extension returns the lower-cased extension of name without the dot,
// or "" when the name has none.
func Extension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}

	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// PermString formats the low 12 mode bits as 4-digit octal, folding
// setuid, setgid and sticky back into their POSIX positions.
func PermString(mode os.FileMode) string {
	bits := uint32(mode.Perm())

	if mode&os.ModeSetuid != 0 {
		bits |= 0o4000
	}

	if mode&os.ModeSetgid != 0 {
		bits |= 0o2000
	}

	if mode&os.ModeSticky != 0 {
		bits |= 0o1000
	}

	return fmt.Sprintf("%04o", bits)
}

// Classification carries everything the aggregator needs about one
// inode.
type Classification struct {
	Kind    Kind
	Size    int64
	ModTime time.Time

	// Regular-file attributes.
	Ext        string
	Perms      string
	SizeBucket string
	AgeBucket  string
	Owner      string
	Group      string
	UID        uint32
	GID        uint32

	// Broken is set for symlinks whose target does not exist.
	Broken bool
	// Empty is set for zero-size regular files and zero-entry dirs.
	Empty bool
}

// Classifier turns raw inode metadata into Classifications.
type Classifier struct {
	resolver Resolver
	now      time.Time
}

// NewClassifier builds a classifier. now anchors the age buckets for
// the whole scan so results do not drift during a long walk.
func NewClassifier(resolver Resolver, now time.Time) *Classifier {
	return &Classifier{resolver: resolver, now: now}
}

// Classify inspects one walked item. dirEntries is the entry count for
// directories (-1 when unknown) and ignored otherwise.
func (c *Classifier) Classify(path string, info os.FileInfo, isLink bool, dirEntries int) Classification {
	cls := Classification{
		Kind:    KindFromMode(info.Mode(), isLink),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}

	switch cls.Kind {
	case KindSymlink:
		if _, err := os.Stat(path); err != nil {
			cls.Broken = true
		}
	case KindDir:
		cls.Empty = dirEntries == 0
	case KindFile:
		cls.Empty = info.Size() == 0
		cls.Ext = Extension(filepath.Base(path))
		cls.Perms = PermString(info.Mode())
		cls.SizeBucket = SizeBucket(info.Size())
		cls.AgeBucket = AgeBucket(info.ModTime(), c.now)

		uid, gid, ok := ownership(info)
		cls.UID = uid
		cls.GID = gid

		if ok {
			cls.Owner = c.resolver.UserName(uid)
			cls.Group = c.resolver.GroupName(gid)
		} else {
			cls.Owner = "unknown"
			cls.Group = "unknown"
		}
	}

	return cls
}
