package scan

import (
	"path/filepath"
	"sort"
)

// DirectoryStat is one parent directory's rollup over the retained
// file records.
type DirectoryStat struct {
	Path        string `json:"path"`
	TotalSize   int64  `json:"total_size"`
	FileCount   int64  `json:"file_count"`
	LargestFile string `json:"largest_file"`
	LargestSize int64  `json:"largest_size"`
	AvgSize     int64  `json:"avg_size"`
}

// TopDirectories reduces the retained-record map into per-directory
// rollups and returns the limit largest by cumulative size. It is a
// pure function of the record set.
func TopDirectories(records map[string]*InodeRecord, limit int) []DirectoryStat {
	byDir := make(map[string]*DirectoryStat)

	for path, rec := range records {
		dir := filepath.Dir(path)

		stat, ok := byDir[dir]
		if !ok {
			stat = &DirectoryStat{Path: dir}
			byDir[dir] = stat
		}

		stat.TotalSize += rec.Size
		stat.FileCount++

		if rec.Size > stat.LargestSize || stat.LargestFile == "" {
			stat.LargestSize = rec.Size
			stat.LargestFile = filepath.Base(path)
		}
	}

	out := make([]DirectoryStat, 0, len(byDir))

	for _, stat := range byDir {
		if stat.FileCount > 0 {
			stat.AvgSize = stat.TotalSize / stat.FileCount
		}

		out = append(out, *stat)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalSize != out[j].TotalSize {
			return out[i].TotalSize > out[j].TotalSize
		}

		return out[i].Path < out[j].Path
	})

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}
