// Package filter 提供候选过滤节点。
package filter

import (
	"context"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pipeline"
)

// Rated 过滤目标用户已经评过分的影片。
//
// 各召回源本身已排除用户评过分的影片；这个节点用于自定义 Pipeline
// 组合外部候选时的兜底保障。每次 Process 取当前快照，
// 节点本身不绑定任何版本。
type Rated struct {
	Provider core.SnapshotProvider
}

func (n *Rated) Name() string        { return "filter.rated" }
func (n *Rated) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *Rated) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if rctx == nil || rctx.UserID == "" || len(items) == 0 || n.Provider == nil {
		return items, nil
	}
	snap, ok := n.Provider.Current()
	if !ok {
		return items, nil
	}

	rated := make(map[string]struct{})
	for _, r := range snap.RatingsByUser(rctx.UserID) {
		rated[r.MovieID] = struct{}{}
	}
	if len(rated) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		if _, seen := rated[it.ID]; seen {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}
