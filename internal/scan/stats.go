package scan

import "time"

// InodeRecord is one retained regular file. Records are created by the
// deep-scan pass and never mutated afterwards.
type InodeRecord struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	Owner   string    `json:"owner"`
	Group   string    `json:"group"`
	UID     uint32    `json:"uid"`
	GID     uint32    `json:"gid"`
	Perms   string    `json:"perms"`
	Ext     string    `json:"ext"`
}

// AggregateStats holds all counters and distributions for one scan.
// Every count is monotonically non-decreasing while the scan runs, and
// Merge is a field-wise sum, so partial aggregates from independent
// workers combine in any order.
type AggregateStats struct {
	TotalFiles    int64 `json:"total_files"`
	TotalDirs     int64 `json:"total_dirs"`
	TotalSymlinks int64 `json:"total_symlinks"`
	TotalSockets  int64 `json:"total_sockets"`
	TotalFifos    int64 `json:"total_fifos"`
	TotalDevices  int64 `json:"total_devices"`

	Extensions  map[string]int64 `json:"extensions"`
	Owners      map[string]int64 `json:"owners"`
	Groups      map[string]int64 `json:"groups"`
	Permissions map[string]int64 `json:"permissions"`
	SizeDist    map[string]int64 `json:"size_distribution"`
	AgeDist     map[string]int64 `json:"age_distribution"`

	EmptyFiles       int64 `json:"empty_files"`
	EmptyDirs        int64 `json:"empty_dirs"`
	BrokenSymlinks   int64 `json:"broken_symlinks"`
	PermissionDenied int64 `json:"permission_denied"`
}

// NewAggregateStats returns zeroed stats with all maps allocated.
func NewAggregateStats() *AggregateStats {
	return &AggregateStats{
		Extensions:  make(map[string]int64),
		Owners:      make(map[string]int64),
		Groups:      make(map[string]int64),
		Permissions: make(map[string]int64),
		SizeDist:    make(map[string]int64),
		AgeDist:     make(map[string]int64),
	}
}

// Add applies one classified inode.
func (s *AggregateStats) Add(cls Classification) {
	switch cls.Kind {
	case KindFile:
		s.TotalFiles++
		s.Extensions[cls.Ext]++
		s.Owners[cls.Owner]++
		s.Groups[cls.Group]++
		s.Permissions[cls.Perms]++
		s.SizeDist[cls.SizeBucket]++
		s.AgeDist[cls.AgeBucket]++

		if cls.Empty {
			s.EmptyFiles++
		}
	case KindDir:
		s.TotalDirs++

		if cls.Empty {
			s.EmptyDirs++
		}
	case KindSymlink:
		s.TotalSymlinks++

		if cls.Broken {
			s.BrokenSymlinks++
		}
	case KindSocket:
		s.TotalSockets++
	case KindFifo:
		s.TotalFifos++
	case KindBlockDev, KindCharDev:
		s.TotalDevices++
	}
}

// TotalInodes is the sum of all per-kind totals.
func (s *AggregateStats) TotalInodes() int64 {
	return s.TotalFiles + s.TotalDirs + s.TotalSymlinks +
		s.TotalSockets + s.TotalFifos + s.TotalDevices
}

// Merge folds other into s field-wise. Commutative and associative.
func (s *AggregateStats) Merge(other *AggregateStats) {
	s.TotalFiles += other.TotalFiles
	s.TotalDirs += other.TotalDirs
	s.TotalSymlinks += other.TotalSymlinks
	s.TotalSockets += other.TotalSockets
	s.TotalFifos += other.TotalFifos
	s.TotalDevices += other.TotalDevices

	mergeCounts(s.Extensions, other.Extensions)
	mergeCounts(s.Owners, other.Owners)
	mergeCounts(s.Groups, other.Groups)
	mergeCounts(s.Permissions, other.Permissions)
	mergeCounts(s.SizeDist, other.SizeDist)
	mergeCounts(s.AgeDist, other.AgeDist)

	s.EmptyFiles += other.EmptyFiles
	s.EmptyDirs += other.EmptyDirs
	s.BrokenSymlinks += other.BrokenSymlinks
	s.PermissionDenied += other.PermissionDenied
}

func mergeCounts(dst, src map[string]int64) {
	for k, v := range src {
		dst[k] += v
	}
}
