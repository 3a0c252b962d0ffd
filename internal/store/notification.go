package store

import (
	"database/sql"
	"fmt"
	"time"
)

// NotificationStore records which notifications were sent on which
// calendar day, so the expiry reminder fires at most once per day.
type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

// WasSentOn reports whether a notification of the given type was
// already sent on the given calendar day.
func (s *NotificationStore) WasSentOn(notificationType string, day time.Time) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM notification_log WHERE notification_type = ? AND sent_on = ?`,
		notificationType, day.Format("2006-01-02"),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check notification log: %w", err)
	}
	return count > 0, nil
}

// RecordSent marks a notification of the given type as sent on the
// given calendar day. Recording the same day twice is a no-op.
func (s *NotificationStore) RecordSent(notificationType string, day time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO notification_log (notification_type, sent_on) VALUES (?, ?)
		 ON CONFLICT(notification_type, sent_on) DO NOTHING`,
		notificationType, day.Format("2006-01-02"),
	)
	if err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	return nil
}
