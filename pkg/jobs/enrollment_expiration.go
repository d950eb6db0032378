package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/mkamel7/academy-server-go/internal/features/enrollment"
)

// EnrollmentExpirationJob flips active enrollments to expired once their
// expiry timestamp passes, so entitlement checks stop honoring them.
type EnrollmentExpirationJob struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewEnrollmentExpirationJob(db *gorm.DB, logger *slog.Logger) *EnrollmentExpirationJob {
	return &EnrollmentExpirationJob{db: db, logger: logger}
}

func (j *EnrollmentExpirationJob) Name() string {
	return "enrollment-expiration"
}

func (j *EnrollmentExpirationJob) Execute(ctx context.Context) error {
	expired, err := enrollment.ExpireOverdue(j.db.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("expire overdue enrollments: %w", err)
	}

	if expired > 0 {
		j.logger.Info("enrollments expired", slog.Int64("count", expired))
	}

	return nil
}
