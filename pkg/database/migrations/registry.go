package migrations

import (
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"
)

// Data migrations run after AutoMigrate has settled the schema. They are
// registered from init funcs in this package and must be idempotent: the
// registry has no applied-version bookkeeping, so every boot replays them.

type migration struct {
	name string
	fn   func(*gorm.DB) error
}

var (
	mu         sync.RWMutex
	registered []migration
)

// Register appends a migration. Execution order is registration order.
func Register(name string, fn func(*gorm.DB) error) {
	mu.Lock()
	registered = append(registered, migration{name: name, fn: fn})
	mu.Unlock()
}

// Run executes all registered migrations sequentially, stopping at the
// first failure.
func Run(db *gorm.DB, log *slog.Logger) error {
	mu.RLock()
	pending := make([]migration, len(registered))
	copy(pending, registered)
	mu.RUnlock()

	for _, m := range pending {
		if log != nil {
			log.Info("running migration", slog.String("name", m.name))
		}

		if err := m.fn(db); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
	}

	if log != nil {
		log.Info("data migrations complete", slog.Int("count", len(pending)))
	}
	return nil
}
