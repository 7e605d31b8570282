package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/filter"
	"github.com/rushteam/movierec/store"
)

func seedMemory(t *testing.T) *store.Memory {
	t.Helper()
	mem := store.NewMemory()
	mem.Swap(
		[]core.Rating{
			{UserID: "u1", MovieID: "m1", Score: 5},
			{UserID: "u1", MovieID: "m2", Score: 5},
			{UserID: "u1", MovieID: "m3", Score: 4},
			{UserID: "u1", MovieID: "m4", Score: 3},
			{UserID: "u1", MovieID: "m5", Score: 4},
			{UserID: "u2", MovieID: "m1", Score: 5},
			{UserID: "u2", MovieID: "m2", Score: 4},
			{UserID: "u2", MovieID: "m6", Score: 5},
			{UserID: "u3", MovieID: "m3", Score: 2},
			{UserID: "u3", MovieID: "m7", Score: 4},
		},
		[]core.Movie{
			{ID: "m1", Title: "Star Convoy", Description: "deep space rescue fleet", Category: "SciFi"},
			{ID: "m2", Title: "Star Convoy Returns", Description: "deep space rescue fleet again", Category: "SciFi"},
			{ID: "m3", Title: "Harbor Lights", Description: "small town love story", Category: "Romance"},
			{ID: "m4", Title: "Iron Pursuit", Description: "car chase heist crew", Category: "Action"},
			{ID: "m5", Title: "Quiet Fields", Description: "farm family seasons", Category: "Drama"},
			{ID: "m6", Title: "Nebula Drift", Description: "deep space mining colony", Category: "SciFi"},
			{ID: "m7", Title: "Last Serve", Description: "tennis comeback story", Category: "Sport"},
		},
	)
	return mem
}

func TestEngineRecommend(t *testing.T) {
	mem := seedMemory(t)
	eng := New(mem)
	ctx := context.Background()

	t.Run("invalid limit", func(t *testing.T) {
		_, err := eng.Recommend(ctx, "u1", 0, core.AlgorithmHybrid)
		if !errors.Is(err, core.ErrInvalidLimit) {
			t.Fatalf("err = %v, want ErrInvalidLimit", err)
		}
		if !core.IsInvalidInput(err) {
			t.Fatal("ErrInvalidLimit should classify as invalid input")
		}
	})

	t.Run("no snapshot yet", func(t *testing.T) {
		empty := New(store.NewMemory())
		_, err := empty.Recommend(ctx, "u1", 5, core.AlgorithmHybrid)
		if !errors.Is(err, core.ErrSnapshotUnavailable) {
			t.Fatalf("err = %v, want ErrSnapshotUnavailable", err)
		}
		if !core.IsUnavailable(err) {
			t.Fatal("ErrSnapshotUnavailable should classify as unavailable")
		}
	})

	t.Run("every algorithm yields a bounded sorted unique list", func(t *testing.T) {
		for _, algorithm := range []string{
			core.AlgorithmCollaborative,
			core.AlgorithmContent,
			core.AlgorithmHybrid,
		} {
			t.Run(algorithm, func(t *testing.T) {
				recs, err := eng.Recommend(ctx, "u1", 3, algorithm)
				if err != nil {
					t.Fatal(err)
				}
				if len(recs) > 3 {
					t.Fatalf("got %d recommendations, want <= 3", len(recs))
				}
				seen := make(map[string]struct{})
				for i, rec := range recs {
					if _, dup := seen[rec.MovieID]; dup {
						t.Fatalf("duplicate movie %s", rec.MovieID)
					}
					seen[rec.MovieID] = struct{}{}
					if i > 0 && recs[i-1].Score < rec.Score {
						t.Fatal("scores not descending")
					}
				}
				for _, rec := range recs {
					if rec.MovieID == "" {
						t.Fatal("empty movie id in result")
					}
				}
			})
		}
	})

	t.Run("rated movies never recommended", func(t *testing.T) {
		rated := map[string]struct{}{
			"m1": {}, "m2": {}, "m3": {}, "m4": {}, "m5": {},
		}
		recs, err := eng.Recommend(ctx, "u1", 10, core.AlgorithmHybrid)
		if err != nil {
			t.Fatal(err)
		}
		for _, rec := range recs {
			if _, ok := rated[rec.MovieID]; ok {
				t.Fatalf("%s was already rated by u1", rec.MovieID)
			}
		}
	})

	t.Run("unknown user falls back to popular", func(t *testing.T) {
		recs, err := eng.Recommend(ctx, "nobody", 5, core.AlgorithmHybrid)
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) == 0 {
			t.Fatal("cold start user should still get popular results")
		}
	})

	t.Run("unknown algorithm behaves like hybrid", func(t *testing.T) {
		hybrid, err := eng.Recommend(ctx, "u1", 5, core.AlgorithmHybrid)
		if err != nil {
			t.Fatal(err)
		}
		weird, err := eng.Recommend(ctx, "u1", 5, "quantum")
		if err != nil {
			t.Fatal(err)
		}
		if len(hybrid) != len(weird) {
			t.Fatalf("lengths differ: %d vs %d", len(hybrid), len(weird))
		}
		for i := range hybrid {
			if hybrid[i] != weird[i] {
				t.Fatalf("result %d differs: %v vs %v", i, hybrid[i], weird[i])
			}
		}
	})

	t.Run("limit of one without neighbors uses the popularity fallback", func(t *testing.T) {
		lone := store.NewMemory()
		lone.Swap(
			[]core.Rating{
				{UserID: "solo", MovieID: "m1", Score: 5},
				{UserID: "solo", MovieID: "m2", Score: 5},
				{UserID: "solo", MovieID: "m3", Score: 4},
				{UserID: "solo", MovieID: "m4", Score: 4},
				{UserID: "solo", MovieID: "m5", Score: 3},
			},
			[]core.Movie{
				{ID: "m1", Title: "Star Convoy", Description: "deep space rescue fleet", Category: "SciFi"},
				{ID: "m2", Title: "Harbor Lights", Description: "small town love story", Category: "Romance"},
				{ID: "m3", Title: "Iron Pursuit", Description: "car chase heist crew", Category: "Action"},
				{ID: "m4", Title: "Quiet Fields", Description: "farm family seasons", Category: "Drama"},
				{ID: "m5", Title: "Last Serve", Description: "tennis comeback story", Category: "Sport"},
				{ID: "m6", Title: "Star Convoy Returns", Description: "deep space rescue fleet", Category: "SciFi"},
			},
		)
		loneEng := New(lone)
		recs, err := loneEng.Recommend(ctx, "solo", 1, core.AlgorithmHybrid)
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 1 {
			t.Fatalf("got %d recommendations, want 1", len(recs))
		}
		// 只有一个用户，CF 没有邻居；内容路径预算为 limit/2 = 0，
		// 唯一合法的产出是热门兜底（评过分的影片之一），而不是相似影片 m6
		if recs[0].MovieID == "m6" {
			t.Fatal("content similarity leaked into a zero-budget blend")
		}
		rated := map[string]struct{}{"m1": {}, "m2": {}, "m3": {}, "m4": {}, "m5": {}}
		if _, ok := rated[recs[0].MovieID]; !ok {
			t.Fatalf("got %s, want a popularity-ranked movie", recs[0].MovieID)
		}
	})

	t.Run("repeated calls are deterministic", func(t *testing.T) {
		first, err := eng.Recommend(ctx, "u2", 5, core.AlgorithmHybrid)
		if err != nil {
			t.Fatal(err)
		}
		second, err := eng.Recommend(ctx, "u2", 5, core.AlgorithmHybrid)
		if err != nil {
			t.Fatal(err)
		}
		if len(first) != len(second) {
			t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
		}
		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("result %d differs: %v vs %v", i, first[i], second[i])
			}
		}
	})
}

func TestEnginePopular(t *testing.T) {
	mem := seedMemory(t)
	eng := New(mem)
	ctx := context.Background()

	t.Run("invalid limit", func(t *testing.T) {
		_, err := eng.Popular(ctx, -1)
		if !errors.Is(err, core.ErrInvalidLimit) {
			t.Fatalf("err = %v, want ErrInvalidLimit", err)
		}
	})

	t.Run("ranked list covers the catalog up to limit", func(t *testing.T) {
		recs, err := eng.Popular(ctx, 4)
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 4 {
			t.Fatalf("got %d recommendations, want 4", len(recs))
		}
		for i := 1; i < len(recs); i++ {
			if recs[i-1].Score < recs[i].Score {
				t.Fatal("scores not descending")
			}
		}
	})
}

func TestEngineFilters(t *testing.T) {
	mem := seedMemory(t)
	ctx := context.Background()

	drop, err := filter.NewExpr(`item.meta.category != "SciFi"`)
	if err != nil {
		t.Fatal(err)
	}
	eng := New(mem, WithFilters(drop))

	recs, err := eng.Recommend(ctx, "u3", 10, core.AlgorithmHybrid)
	if err != nil {
		t.Fatal(err)
	}
	snap, _ := mem.Current()
	for _, rec := range recs {
		movie, ok := snap.MovieByID(rec.MovieID)
		if !ok {
			continue
		}
		if movie.Category == "SciFi" {
			t.Fatalf("%s is SciFi but survived the filter", rec.MovieID)
		}
	}
}

func TestEngineMatrixReuse(t *testing.T) {
	mem := seedMemory(t)
	eng := New(mem)
	snap, _ := mem.Current()

	first := eng.materialize(snap)
	second := eng.materialize(snap)
	if first != second {
		t.Fatal("same snapshot version should reuse cached matrices")
	}

	mem.Swap(snap.Ratings, snap.Movies)
	next, _ := mem.Current()
	third := eng.materialize(next)
	if third == first {
		t.Fatal("new snapshot version should rebuild matrices")
	}
}
