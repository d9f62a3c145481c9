package storage

import (
	"time"

	"github.com/google/uuid"
	"github.com/xiaobei/mvd/internal/logger"
)

// UserEvent records a UI action. Failures are logged and dropped.
func (s *SQLiteStore) UserEvent(action, payload string) {
	err := s.AddUserEvent(UserEvent{
		Action:    action,
		Payload:   payload,
		CreatedAt: time.Now(),
	})
	if err != nil {
		logger.Printf("[storage] record user event %s: %v", action, err)
	}
}

// AddUserEvent inserts an event, assigning an ID if it has none.
func (s *SQLiteStore) AddUserEvent(event UserEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	_, err := s.db.NamedExec(`INSERT INTO user_events (id, action, payload, created_at)
		VALUES (:id, :action, :payload, :created_at)`, userEventRow{
		ID:        event.ID,
		Action:    event.Action,
		Payload:   event.Payload,
		CreatedAt: event.CreatedAt.UnixMilli(),
	})
	return err
}

// GetUserEvents returns up to limit events, newest first.
func (s *SQLiteStore) GetUserEvents(limit int) []UserEvent {
	if limit <= 0 {
		limit = 100
	}
	var rows []userEventRow
	if err := s.db.Select(&rows, `SELECT id, action, payload, created_at FROM user_events
		ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit); err != nil {
		logger.Printf("[storage] read user events: %v", err)
		return []UserEvent{}
	}

	events := make([]UserEvent, 0, len(rows))
	for _, r := range rows {
		events = append(events, r.toEvent())
	}
	return events
}

// PruneUserEvents deletes all but the newest keep events.
func (s *SQLiteStore) PruneUserEvents(keep int) (int, error) {
	res, err := s.db.Exec(`DELETE FROM user_events WHERE rowid NOT IN (
		SELECT rowid FROM user_events ORDER BY created_at DESC, rowid DESC LIMIT ?
	)`, keep)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
