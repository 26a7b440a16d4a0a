// Package scan walks a filesystem subtree and aggregates inode
// statistics.
//
// A single pass drives the walker, classifies every item, and updates
// counters, distributions and bounded top-k lists. Deep scans retain
// per-file records for a directory rollup pass; duplicate detection
// runs as an independent size-bucket-then-hash pipeline.
package scan
