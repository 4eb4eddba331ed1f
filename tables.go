package kaleido

import "github.com/gogpu/kaleido/internal/cache"

// tableCacheSize is the number of path tables kept between pipelines.
const tableCacheSize = 4

type tableKey struct{ mirrors, depth int }

var tables = cache.New[tableKey, *PathTable](tableCacheSize)

// CachedTable returns the path table for m mirrors up to depth d, reusing
// one built earlier in the process when possible. Tables are immutable,
// so callers may share them.
func CachedTable(m, d int) (*PathTable, error) {
	return tables.GetOrCreate(tableKey{m, d}, func() (*PathTable, error) {
		return Enumerate(m, d)
	})
}
