package storage

import (
	"testing"
	"time"

	"github.com/xiaobei/mvd/internal/proposal"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(t.TempDir())
	if err != nil {
		t.Fatalf("create sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func floatPtr(v float64) *float64 { return &v }

func TestGetFilters_Defaults(t *testing.T) {
	store := newTestStore(t)

	f := store.GetFilters()
	if f.Price.PerHour != nil || f.Price.PerGiB != nil {
		t.Fatalf("expected no price ceilings, got %+v", f.Price)
	}
	if f.Quality.Level != proposal.QualityUnknown || f.Quality.IncludeFailed {
		t.Fatalf("unexpected quality defaults: %+v", f.Quality)
	}
	if f.Other.NoAccessPolicy || f.Other.IPType != "" {
		t.Fatalf("unexpected other defaults: %+v", f.Other)
	}
}

func TestSetPartial_MergesWithStoredValues(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.SetPartial(proposal.FilterPatch{PricePerHour: floatPtr(5)}); err != nil {
		t.Fatalf("set per hour: %v", err)
	}
	level := proposal.QualityMedium
	ipType := "residential"
	got, err := store.SetPartial(proposal.FilterPatch{
		PricePerGiB:  floatPtr(0),
		QualityLevel: &level,
		IPType:       &ipType,
	})
	if err != nil {
		t.Fatalf("set partial: %v", err)
	}

	if got.Price.PerHour == nil || *got.Price.PerHour != 5 {
		t.Fatalf("per hour ceiling lost: %+v", got.Price)
	}
	if got.Price.PerGiB == nil || *got.Price.PerGiB != 0 {
		t.Fatalf("zero per GiB ceiling not stored: %+v", got.Price)
	}

	stored := store.GetFilters()
	if stored.Quality.Level != proposal.QualityMedium || stored.Other.IPType != "residential" {
		t.Fatalf("stored filters mismatch: %+v", stored)
	}
	if stored.Price.PerGiB == nil || *stored.Price.PerGiB != 0 {
		t.Fatalf("zero ceiling read back as %v", stored.Price.PerGiB)
	}
}

func TestSetPartial_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("create sqlite store: %v", err)
	}
	enabled := true
	if _, err := store.SetPartial(proposal.FilterPatch{NoAccessPolicy: &enabled, IncludeFailed: &enabled}); err != nil {
		t.Fatalf("set partial: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewSQLiteStore(dir)
	if err != nil {
		t.Fatalf("reopen sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })

	f := reopened.GetFilters()
	if !f.Other.NoAccessPolicy || !f.Quality.IncludeFailed {
		t.Fatalf("filters not persisted: %+v", f)
	}
}

func TestUserEvents_NewestFirstAndPrune(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, payload := range []string{"1", "2", "3"} {
		if err := store.AddUserEvent(UserEvent{
			Action:    "filter_price_time",
			Payload:   payload,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("add event %s: %v", payload, err)
		}
	}

	events := store.GetUserEvents(2)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Payload != "3" || events[1].Payload != "2" {
		t.Fatalf("unexpected order: %+v", events)
	}
	if events[0].ID == "" {
		t.Fatal("event id not assigned")
	}
	if !events[0].CreatedAt.Equal(base.Add(2 * time.Second)) {
		t.Fatalf("created_at mismatch: got %s", events[0].CreatedAt)
	}

	removed, err := store.PruneUserEvents(1)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if left := store.GetUserEvents(10); len(left) != 1 || left[0].Payload != "3" {
		t.Fatalf("unexpected events after prune: %+v", left)
	}
}

func TestUserEvent_FireAndForget(t *testing.T) {
	store := newTestStore(t)

	store.UserEvent("select_proposal", "DE")

	events := store.GetUserEvents(10)
	if len(events) != 1 || events[0].Action != "select_proposal" || events[0].Payload != "DE" {
		t.Fatalf("unexpected events: %+v", events)
	}
}
