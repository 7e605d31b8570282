// Package rerank 提供排序结果上的重排/截断节点。
package rerank

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
)

// TopN 是截断节点，保证最终返回条数不超过 N。
// 放在召回/过滤之后使用；N <= 0 时不截断。
type TopN struct {
	N int
}

func (n *TopN) Name() string        { return "rerank.topn" }
func (n *TopN) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *TopN) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
