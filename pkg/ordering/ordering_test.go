package ordering

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type row struct {
	name    string
	order   int
	created time.Time
}

func TestLess(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, Less(Key{Order: 1, CreatedAt: base}, Key{Order: 2, CreatedAt: base}))
	assert.False(t, Less(Key{Order: 2, CreatedAt: base}, Key{Order: 1, CreatedAt: base}))

	// same explicit order falls back to creation time
	assert.True(t, Less(Key{Order: 1, CreatedAt: base}, Key{Order: 1, CreatedAt: base.Add(time.Minute)}))
	assert.False(t, Less(Key{Order: 1, CreatedAt: base.Add(time.Minute)}, Key{Order: 1, CreatedAt: base}))

	// identical keys are not less than each other
	assert.False(t, Less(Key{Order: 1, CreatedAt: base}, Key{Order: 1, CreatedAt: base}))
}

func TestSort(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := []row{
		{name: "c", order: 2, created: base},
		{name: "b", order: 1, created: base.Add(time.Hour)},
		{name: "a", order: 1, created: base},
		{name: "d", order: 3, created: base.Add(-time.Hour)},
	}

	Sort(rows, func(r row) Key { return Key{Order: r.order, CreatedAt: r.created} })

	got := make([]string, len(rows))
	for i, r := range rows {
		got[i] = r.name
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}
