package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"gorm.io/gorm"
)

// ReconnectPlugin pings the pool before each statement and retries the ping
// with backoff when the connection looks dead. The pool itself re-dials; the
// plugin only keeps callers from racing ahead of a broken socket.
type ReconnectPlugin struct {
	logger     *slog.Logger
	maxRetries int
	retryDelay time.Duration
	reconnects atomic.Int64
}

// NewReconnectPlugin creates a reconnect plugin with default retry settings.
func NewReconnectPlugin(logger *slog.Logger) *ReconnectPlugin {
	return &ReconnectPlugin{
		logger:     logger,
		maxRetries: 3,
		retryDelay: 500 * time.Millisecond,
	}
}

func (p *ReconnectPlugin) Name() string {
	return "reconnect_plugin"
}

// Initialize hooks the health check in front of every statement type.
func (p *ReconnectPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	registrations := []struct {
		name     string
		register func() error
	}{
		{"reconnect:before_query", func() error { return cb.Query().Before("gorm:query").Register("reconnect:before_query", p.checkConnection) }},
		{"reconnect:before_create", func() error { return cb.Create().Before("gorm:create").Register("reconnect:before_create", p.checkConnection) }},
		{"reconnect:before_update", func() error { return cb.Update().Before("gorm:update").Register("reconnect:before_update", p.checkConnection) }},
		{"reconnect:before_delete", func() error { return cb.Delete().Before("gorm:delete").Register("reconnect:before_delete", p.checkConnection) }},
		{"reconnect:before_row", func() error { return cb.Row().Before("gorm:row").Register("reconnect:before_row", p.checkConnection) }},
		{"reconnect:before_raw", func() error { return cb.Raw().Before("gorm:raw").Register("reconnect:before_raw", p.checkConnection) }},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("register %s: %w", reg.name, err)
		}
	}

	return nil
}

func (p *ReconnectPlugin) checkConnection(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	err = sqlDB.Ping()
	if err == nil || !isConnectionError(err) {
		return
	}

	p.logger.Warn("database connection lost, attempting to reconnect",
		slog.String("error", err.Error()),
	)

	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		time.Sleep(p.retryDelay * time.Duration(attempt))

		if err := sqlDB.Ping(); err == nil {
			total := p.reconnects.Add(1)
			p.logger.Info("database reconnection successful",
				slog.Int("attempt", attempt),
				slog.Int64("total_reconnects", total),
			)
			return
		}

		p.logger.Warn("reconnection attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("max_retries", p.maxRetries),
		)
	}

	p.logger.Error("database reconnection failed after retries")
}

// ReconnectCount returns the number of successful reconnections since start.
func (p *ReconnectPlugin) ReconnectCount() int64 {
	return p.reconnects.Load()
}

var connectionErrorFragments = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"no such host",
	"network is unreachable",
	"connection timed out",
	"eof",
	"bad connection",
	"invalid connection",
	"closed network connection",
	"connection lost",
	"server closed",
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, sql.ErrTxDone) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range connectionErrorFragments {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
