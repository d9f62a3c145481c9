package storage

import "time"

// UserEvent represents a recorded UI action
type UserEvent struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// filtersRow mirrors the single row of the proposal_filters table
type filtersRow struct {
	PricePerHour   *float64 `db:"price_per_hour"`
	PricePerGiB    *float64 `db:"price_per_gib"`
	QualityLevel   int      `db:"quality_level"`
	IncludeFailed  int      `db:"include_failed"`
	NoAccessPolicy int      `db:"no_access_policy"`
	IPType         string   `db:"ip_type"`
}

// userEventRow mirrors a row of the user_events table
type userEventRow struct {
	ID        string `db:"id"`
	Action    string `db:"action"`
	Payload   string `db:"payload"`
	CreatedAt int64  `db:"created_at"` // unix milliseconds
}

func (r userEventRow) toEvent() UserEvent {
	return UserEvent{
		ID:        r.ID,
		Action:    r.Action,
		Payload:   r.Payload,
		CreatedAt: time.UnixMilli(r.CreatedAt).UTC(),
	}
}
