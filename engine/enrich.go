package engine

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
)

// enrichNode 在过滤之前为候选补充影片元信息（category、title 等），
// 供 filter.Expr 的规则表达式引用。只出现在评分里的候选 Meta 保持为空。
type enrichNode struct {
	snap *core.Snapshot
}

func (n *enrichNode) Name() string        { return "enrich.movie" }
func (n *enrichNode) Kind() pipeline.Kind { return pipeline.KindEnrich }

func (n *enrichNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	index := make(map[string]core.Movie, len(n.snap.Movies))
	for _, m := range n.snap.Movies {
		index[m.ID] = m
	}
	for _, it := range items {
		movie, ok := index[it.ID]
		if !ok {
			continue
		}
		if it.Meta == nil {
			it.Meta = make(map[string]any, 3)
		}
		it.Meta["title"] = movie.Title
		it.Meta["category"] = movie.Category
		it.Meta["release_date"] = movie.ReleaseDate
	}
	return items, nil
}
