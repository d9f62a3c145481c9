package storage

import "github.com/xiaobei/mvd/internal/proposal"

// Store defines the interface for all storage operations.
type Store interface {
	// Proposal filters
	GetFilters() proposal.Filters
	SetPartial(patch proposal.FilterPatch) (proposal.Filters, error)

	// User events
	UserEvent(action, payload string)
	AddUserEvent(event UserEvent) error
	GetUserEvents(limit int) []UserEvent
	PruneUserEvents(keep int) (int, error)

	// Helpers
	GetDataDir() string

	// Lifecycle
	Close() error
}

// Compile-time interface checks
var _ Store = (*SQLiteStore)(nil)
