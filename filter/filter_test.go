package filter

import (
	"context"
	"testing"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/store"
)

func metaItem(id string, score float64, meta map[string]any) *core.Item {
	it := core.NewItem(id)
	it.Score = score
	it.Meta = meta
	return it
}

func TestExpr(t *testing.T) {
	t.Run("invalid expression fails at compile time", func(t *testing.T) {
		if _, err := NewExpr("item.score >="); err == nil {
			t.Fatal("expected compile error")
		}
	})

	t.Run("false drops the item", func(t *testing.T) {
		node, err := NewExpr(`item.score >= 2.0`)
		if err != nil {
			t.Fatal(err)
		}
		items := []*core.Item{
			metaItem("keep", 3.5, nil),
			metaItem("drop", 1.0, nil),
		}
		out, err := node.Process(context.Background(), &core.RecommendContext{UserID: "u1"}, items)
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 1 || out[0].ID != "keep" {
			t.Fatalf("got %v, want only keep", out)
		}
	})

	t.Run("meta fields are visible to the rule", func(t *testing.T) {
		node, err := NewExpr(`item.meta.category != "Horror"`)
		if err != nil {
			t.Fatal(err)
		}
		items := []*core.Item{
			metaItem("scary", 4, map[string]any{"category": "Horror"}),
			metaItem("calm", 3, map[string]any{"category": "Drama"}),
		}
		out, err := node.Process(context.Background(), nil, items)
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 1 || out[0].ID != "calm" {
			t.Fatalf("got %v, want only calm", out)
		}
	})

	t.Run("eval error keeps the item and labels it", func(t *testing.T) {
		node, err := NewExpr(`item.meta.category != "Horror"`)
		if err != nil {
			t.Fatal(err)
		}
		items := []*core.Item{metaItem("bare", 4, nil)}
		out, err := node.Process(context.Background(), nil, items)
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 1 {
			t.Fatalf("got %d items, want 1", len(out))
		}
		if _, ok := out[0].Labels["filter_error"]; !ok {
			t.Fatal("expected filter_error label on the surviving item")
		}
	})
}

func TestRated(t *testing.T) {
	mem := store.NewMemory()
	mem.Swap(
		[]core.Rating{{UserID: "u1", MovieID: "m1", Score: 5}},
		nil,
	)
	node := &Rated{Provider: mem}

	t.Run("drops rated movies for the target user", func(t *testing.T) {
		items := []*core.Item{core.NewItem("m1"), core.NewItem("m2")}
		out, err := node.Process(context.Background(), &core.RecommendContext{UserID: "u1"}, items)
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 1 || out[0].ID != "m2" {
			t.Fatalf("got %v, want only m2", out)
		}
	})

	t.Run("no user id passes everything through", func(t *testing.T) {
		items := []*core.Item{core.NewItem("m1"), core.NewItem("m2")}
		out, err := node.Process(context.Background(), &core.RecommendContext{}, items)
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 2 {
			t.Fatalf("got %d items, want 2", len(out))
		}
	})

	t.Run("sees the latest snapshot on every call", func(t *testing.T) {
		items := []*core.Item{core.NewItem("m2")}
		out, _ := node.Process(context.Background(), &core.RecommendContext{UserID: "u1"}, items)
		if len(out) != 1 {
			t.Fatalf("got %d items, want 1", len(out))
		}
		mem.Swap(
			[]core.Rating{
				{UserID: "u1", MovieID: "m1", Score: 5},
				{UserID: "u1", MovieID: "m2", Score: 4},
			},
			nil,
		)
		out, _ = node.Process(context.Background(), &core.RecommendContext{UserID: "u1"}, []*core.Item{core.NewItem("m2")})
		if len(out) != 0 {
			t.Fatalf("got %d items, want 0 after the new rating", len(out))
		}
	})

	t.Run("empty provider passes everything through", func(t *testing.T) {
		bare := &Rated{Provider: store.NewMemory()}
		items := []*core.Item{core.NewItem("m1")}
		out, err := bare.Process(context.Background(), &core.RecommendContext{UserID: "u1"}, items)
		if err != nil {
			t.Fatal(err)
		}
		if len(out) != 1 {
			t.Fatalf("got %d items, want 1", len(out))
		}
	})
}
