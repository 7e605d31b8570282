package recall

import (
	"context"
	"testing"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/feature"
)

func TestCollaborative(t *testing.T) {
	ratings := []core.Rating{
		{UserID: "u1", MovieID: "m1", Score: 5},
		{UserID: "u1", MovieID: "m2", Score: 5},
		{UserID: "u2", MovieID: "m1", Score: 5},
		{UserID: "u2", MovieID: "m3", Score: 4},
	}
	matrix := feature.BuildUserItemMatrix(ratings)
	src := &Collaborative{Matrix: matrix, Tunables: core.DefaultTunables()}

	t.Run("neighbor item is recommended with positive score", func(t *testing.T) {
		items, err := src.Recall(context.Background(), &core.RecommendContext{UserID: "u1", Limit: 5})
		if err != nil {
			t.Fatal(err)
		}
		if len(items) != 1 {
			t.Fatalf("got %d items, want 1", len(items))
		}
		if items[0].ID != "m3" {
			t.Fatalf("got %s, want m3", items[0].ID)
		}
		if items[0].Score <= 0 {
			t.Fatalf("score = %v, want > 0", items[0].Score)
		}
	})

	t.Run("unknown user returns empty without error", func(t *testing.T) {
		items, err := src.Recall(context.Background(), &core.RecommendContext{UserID: "ghost", Limit: 5})
		if err != nil {
			t.Fatal(err)
		}
		if len(items) != 0 {
			t.Fatalf("got %d items, want 0", len(items))
		}
	})

	t.Run("already rated items are excluded", func(t *testing.T) {
		items, _ := src.Recall(context.Background(), &core.RecommendContext{UserID: "u1", Limit: 5})
		for _, it := range items {
			if it.ID == "m1" || it.ID == "m2" {
				t.Fatalf("item %s was already rated by u1", it.ID)
			}
		}
	})

	t.Run("result respects limit and is sorted", func(t *testing.T) {
		many := []core.Rating{
			{UserID: "target", MovieID: "seed", Score: 5},
		}
		for i := 0; i < 8; i++ {
			u := string(rune('a' + i))
			many = append(many,
				core.Rating{UserID: u, MovieID: "seed", Score: 5},
				core.Rating{UserID: u, MovieID: "x" + u, Score: float64(i%5) + 1},
			)
		}
		m := feature.BuildUserItemMatrix(many)
		s := &Collaborative{Matrix: m, Tunables: core.DefaultTunables()}
		items, err := s.Recall(context.Background(), &core.RecommendContext{UserID: "target", Limit: 3})
		if err != nil {
			t.Fatal(err)
		}
		if len(items) > 3 {
			t.Fatalf("got %d items, want <= 3", len(items))
		}
		assertSortedUnique(t, items)
	})

	t.Run("deterministic across repeated calls", func(t *testing.T) {
		first, _ := src.Recall(context.Background(), &core.RecommendContext{UserID: "u1", Limit: 5})
		second, _ := src.Recall(context.Background(), &core.RecommendContext{UserID: "u1", Limit: 5})
		assertSameResults(t, first, second)
	})
}

// assertSortedUnique 检查结果分数非增且 ID 唯一。
func assertSortedUnique(t *testing.T, items []*core.Item) {
	t.Helper()
	seen := make(map[string]struct{})
	for i, it := range items {
		if _, dup := seen[it.ID]; dup {
			t.Fatalf("duplicate item %s", it.ID)
		}
		seen[it.ID] = struct{}{}
		if i > 0 && items[i-1].Score < it.Score {
			t.Fatalf("scores not descending at %d: %v < %v", i, items[i-1].Score, it.Score)
		}
	}
}

func assertSameResults(t *testing.T, a, b []*core.Item) {
	t.Helper()
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Score != b[i].Score {
			t.Fatalf("result %d differs: %s/%v vs %s/%v", i, a[i].ID, a[i].Score, b[i].ID, b[i].Score)
		}
	}
}
