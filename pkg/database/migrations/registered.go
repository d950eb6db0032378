package migrations

import "gorm.io/gorm"

func init() {
	// Emails are matched case-insensitively at login; stored rows from older
	// imports may still carry mixed case.
	Register("normalize-user-emails", func(db *gorm.DB) error {
		return db.Exec("UPDATE users SET email = LOWER(email) WHERE email <> LOWER(email)").Error
	})

	// Playback positions are never negative; clamp any bad rows so the
	// completion math stays well defined.
	Register("clamp-progress-positions", func(db *gorm.DB) error {
		return db.Exec("UPDATE lesson_progress SET last_position_seconds = 0 WHERE last_position_seconds < 0").Error
	})

	// One-time sweep at boot; the background job keeps this current afterwards.
	Register("expire-overdue-enrollments", func(db *gorm.DB) error {
		return db.Exec("UPDATE enrollments SET status = 'expired' WHERE status = 'active' AND expires_at <= CURRENT_TIMESTAMP").Error
	})
}
