package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeAfterFuncFiresOnAdvance(t *testing.T) {
	clock := Fake(epoch)
	fired := 0
	clock.AfterFunc(800*time.Millisecond, func() { fired++ })

	clock.Advance(799 * time.Millisecond)
	if fired != 0 {
		t.Fatalf("fired before deadline: %d", fired)
	}
	clock.Advance(time.Millisecond)
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
	clock.Advance(time.Hour)
	if fired != 1 {
		t.Fatalf("one-shot timer fired again: %d", fired)
	}
}

func TestFakeAfterFuncStop(t *testing.T) {
	clock := Fake(epoch)
	fired := false
	timer := clock.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Fatal("Stop() = false on pending timer")
	}
	if timer.Stop() {
		t.Fatal("second Stop() = true")
	}
	clock.Advance(2 * time.Second)
	if fired {
		t.Fatal("stopped timer fired")
	}
	if clock.Pending() != 0 {
		t.Fatalf("Pending() = %d, want 0", clock.Pending())
	}
}

func TestFakeTickerDropsWhenFull(t *testing.T) {
	clock := Fake(epoch)
	ticker := clock.NewTicker(10 * time.Second)
	defer ticker.Stop()

	clock.Advance(35 * time.Second)

	select {
	case <-ticker.C:
	default:
		t.Fatal("expected a tick")
	}
	select {
	case <-ticker.C:
		t.Fatal("buffered more than one tick")
	default:
	}
}

func TestFakeNow(t *testing.T) {
	clock := Fake(epoch)
	clock.Advance(5 * time.Second)
	if got, want := clock.Now(), epoch.Add(5*time.Second); !got.Equal(want) {
		t.Fatalf("Now() = %v, want %v", got, want)
	}
}
