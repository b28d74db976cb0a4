// Package workpool fans work over one document's term list out to a fixed number of workers.
package workpool

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Partition splits items into at most parts contiguous chunks of near-equal size.
// Chunks never overlap, so workers handed different chunks touch disjoint data.
func Partition[T any](items []T, parts int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if parts <= 0 {
		parts = runtime.NumCPU()
	}
	if parts > len(items) {
		parts = len(items)
	}

	chunks := make([][]T, 0, parts)
	size := len(items) / parts
	remainder := len(items) % parts
	start := 0
	for i := 0; i < parts; i++ {
		end := start + size
		if i < remainder {
			end++
		}
		chunks = append(chunks, items[start:end])
		start = end
	}
	return chunks
}

// ForEachChunk partitions items across workers and runs fn once per chunk, at most
// workers at a time. It returns the first error any worker reported.
func ForEachChunk[T any](items []T, workers int, fn func(chunkIndex int, chunk []T) error) error {
	chunks := Partition(items, workers)
	if len(chunks) == 0 {
		return nil
	}

	var g errgroup.Group
	g.SetLimit(len(chunks))
	for i, chunk := range chunks {
		g.Go(func() error {
			return fn(i, chunk)
		})
	}
	return g.Wait()
}
