// Package batch splits work into bounded groups for bulk calls.
package batch

import "github.com/samber/lo"

// Chunk splits items into consecutive groups of at most size elements.
// Empty input yields no groups; a non-positive size yields one group with everything.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 || size >= len(items) {
		return [][]T{items}
	}
	return lo.Chunk(items, size)
}
