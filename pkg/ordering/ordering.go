// Package ordering centralizes the ordering rule shared by tracks, courses,
// modules and lessons: explicit "order" first, creation time as tiebreak.
package ordering

import (
	"sort"
	"time"
)

// Clause is the SQL ORDER BY fragment equivalent to Less. Queries that feed
// sequential-unlock or progress computations must use it so database and
// in-memory ordering agree.
const Clause = `"order" ASC, created_at ASC`

// Key is the sortable identity of an orderable row.
type Key struct {
	Order     int
	CreatedAt time.Time
}

// Less compares two keys: lower explicit order wins, earlier creation breaks ties.
func Less(a, b Key) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// Sort stably sorts items in place by the key extracted from each element.
func Sort[T any](items []T, key func(T) Key) {
	sort.SliceStable(items, func(i, j int) bool {
		return Less(key(items[i]), key(items[j]))
	})
}
