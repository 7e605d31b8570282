package store

import (
	"testing"

	"github.com/rushteam/movierec/core"
)

func TestMemory(t *testing.T) {
	t.Run("empty store has no snapshot", func(t *testing.T) {
		m := NewMemory()
		if _, ok := m.Current(); ok {
			t.Fatal("expected no snapshot before the first Swap")
		}
		if _, ok := m.SwappedAt(); ok {
			t.Fatal("expected no swap time before the first Swap")
		}
	})

	t.Run("swap publishes a versioned snapshot", func(t *testing.T) {
		m := NewMemory()
		first := m.Swap([]core.Rating{{UserID: "u1", MovieID: "m1", Score: 5}}, []core.Movie{{ID: "m1"}})
		if first.Version != 1 {
			t.Fatalf("version = %d, want 1", first.Version)
		}
		second := m.Swap(nil, nil)
		if second.Version != 2 {
			t.Fatalf("version = %d, want 2", second.Version)
		}
		cur, ok := m.Current()
		if !ok || cur != second {
			t.Fatal("Current should return the latest snapshot")
		}
		if _, ok := m.SwappedAt(); !ok {
			t.Fatal("expected a swap time after Swap")
		}
	})

	t.Run("old snapshot survives later swaps", func(t *testing.T) {
		m := NewMemory()
		old := m.Swap([]core.Rating{{UserID: "u1", MovieID: "m1", Score: 5}}, nil)
		m.Swap(nil, nil)
		if len(old.Ratings) != 1 {
			t.Fatal("held snapshot was mutated by a later Swap")
		}
	})

	t.Run("restore keeps versions monotonic", func(t *testing.T) {
		m := NewMemory()
		m.Restore(&core.Snapshot{Version: 7})
		cur, ok := m.Current()
		if !ok || cur.Version != 7 {
			t.Fatalf("restored version = %v, want 7", cur)
		}
		next := m.Swap(nil, nil)
		if next.Version != 8 {
			t.Fatalf("version after restore = %d, want 8", next.Version)
		}
	})

	t.Run("restore of nil is a no-op", func(t *testing.T) {
		m := NewMemory()
		m.Restore(nil)
		if _, ok := m.Current(); ok {
			t.Fatal("nil restore should not publish a snapshot")
		}
	})

	t.Run("restore of a stale version does not rewind the counter", func(t *testing.T) {
		m := NewMemory()
		m.Swap(nil, nil)
		m.Swap(nil, nil)
		m.Restore(&core.Snapshot{Version: 1})
		next := m.Swap(nil, nil)
		if next.Version != 3 {
			t.Fatalf("version = %d, want 3", next.Version)
		}
	})
}
