// Package cache defines the on-disk stage cache shared by all workers.
//
// Every artifact path is a deterministic function of (video id, stage), and
// the existence of a file at that path is the sole completion marker for the
// stage. Nothing here locks: write targets are keyed by job-unique video IDs,
// so a single run never has two writers for the same path. Stale entries are
// invalidated by deleting the file.
package cache
