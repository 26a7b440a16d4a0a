package scan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/charlievieth/fastwalk"
	"github.com/panjf2000/ants/v2"

	"github.com/AScotM/inodestat/internal/logger"
)

// hashBufferSize is the streaming read chunk, so hashing memory use is
// independent of file size.
const hashBufferSize = 32 * 1024

// DuplicateSet groups files sharing size and content hash.
type DuplicateSet struct {
	Size        int64    `json:"size"`
	Checksum    string   `json:"checksum"`
	Paths       []string `json:"paths"`
	Count       int      `json:"count"`
	TotalSize   int64    `json:"total_size"`
	WastedSpace int64    `json:"wasted_space"`
}

// Detector finds content duplicates with a two-phase pipeline: size
// bucketing over a fresh leaves-only traversal, then content hashing
// of every bucket with at least two members.
type Detector struct {
	// Root is the subtree to scan. The pass ignores any depth ceiling.
	Root string
	// Excludes is the same predicate the census walk uses.
	Excludes []string
	// Follow mirrors the symlink policy of the census walk.
	Follow bool
	// Workers sizes the per-bucket hashing pool.
	Workers int
}

// Find runs the pipeline. On cancellation during bucketing nothing is
// committed; during hashing, buckets finish whole or are skipped, so a
// partial result never contains a half-hashed group. Per-file read
// failures drop that file only.
func (d *Detector) Find(ctx context.Context) ([]DuplicateSet, error) {
	buckets, err := d.collectSizes(ctx)
	if err != nil {
		return nil, err
	}

	if ctx.Err() != nil {
		return nil, nil
	}

	sets := d.hashBuckets(ctx, buckets)

	sort.Slice(sets, func(i, j int) bool {
		if sets[i].WastedSpace != sets[j].WastedSpace {
			return sets[i].WastedSpace > sets[j].WastedSpace
		}

		return sets[i].Checksum < sets[j].Checksum
	})

	return sets, nil
}

// collectSizes is phase one: a single O(n) pass appending every
// regular file with size > 0 to its exact-size bucket.
func (d *Detector) collectSizes(ctx context.Context) (map[int64][]string, error) {
	buckets := make(map[int64][]string)

	var mu sync.Mutex

	conf := &fastwalk.Config{Follow: d.Follow}

	err := fastwalk.Walk(conf, d.Root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		if ctx.Err() != nil {
			return context.Canceled
		}

		if Excluded(d.Excludes, path, filepath.Base(path)) {
			if entry.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if !entry.Type().IsRegular() {
			return nil
		}

		info, err := entry.Info()
		if err != nil {
			return nil
		}

		if info.Size() == 0 {
			return nil
		}

		mu.Lock()
		buckets[info.Size()] = append(buckets[info.Size()], path)
		mu.Unlock()

		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return nil, err
	}

	return buckets, nil
}

// hashBuckets is phase two: each candidate bucket is hashed as one
// pool task. Cancellation is checked before a bucket starts.
func (d *Detector) hashBuckets(ctx context.Context, buckets map[int64][]string) []DuplicateSet {
	var (
		mu   sync.Mutex
		sets []DuplicateSet
		wg   sync.WaitGroup
	)

	pool, err := ants.NewPool(d.Workers)
	if err != nil {
		logger.Get().Debug().Err(err).Msg("hash pool unavailable, hashing inline")
	} else {
		defer pool.Release()
	}

	for size, paths := range buckets {
		if len(paths) < 2 {
			continue
		}

		if ctx.Err() != nil {
			break
		}

		task := func() {
			defer wg.Done()

			grouped := hashBucket(size, paths)

			if len(grouped) == 0 {
				return
			}

			mu.Lock()
			sets = append(sets, grouped...)
			mu.Unlock()
		}

		wg.Add(1)

		if pool == nil || pool.Submit(task) != nil {
			task()
		}
	}

	wg.Wait()

	return sets
}

// hashBucket disambiguates one size bucket by content digest.
func hashBucket(size int64, paths []string) []DuplicateSet {
	byDigest := make(map[string][]string)

	for _, path := range paths {
		digest, err := hashFile(path)
		if err != nil {
			logger.Get().Debug().Str("path", path).Err(err).Msg("hash failed, dropping candidate")

			continue
		}

		byDigest[digest] = append(byDigest[digest], path)
	}

	var sets []DuplicateSet

	for digest, members := range byDigest {
		if len(members) < 2 {
			continue
		}

		sort.Strings(members)

		n := int64(len(members))

		sets = append(sets, DuplicateSet{
			Size:        size,
			Checksum:    digest,
			Paths:       members,
			Count:       len(members),
			TotalSize:   size * n,
			WastedSpace: size * (n - 1),
		})
	}

	return sets
}

// hashFile streams the file through xxhash64 with a fixed-size buffer.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxhash.New()

	buf := make([]byte, hashBufferSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}

	return fmt.Sprintf("%016x", h.Sum64()), nil
}
