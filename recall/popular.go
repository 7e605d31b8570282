package recall

import (
	"context"
	"math"
	"sort"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/utils"
)

// Popular 是热门兜底召回源：按评分量加权的热度排名，
// 用于没有任何个性化信号时的冷启动场景。
//
// 热度分 = 平均评分 × ln(评分数 + 1)，同时偏好"分高"与"量大"，
// +1 避免 ln(0)。不足 limit 时按快照顺序补齐零评分影片，
// 固定给 DefaultPopularScore。
//
// 只有影片快照为空时才返回空；评分为空不是问题（全部走默认分）。
type Popular struct {
	Snapshot *core.Snapshot
	Tunables core.Tunables
}

func (r *Popular) Name() string { return "recall.popular" }

func (r *Popular) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	limit := defaultLimit
	if rctx != nil && rctx.Limit > 0 {
		limit = rctx.Limit
	}
	if r.Snapshot == nil || len(r.Snapshot.Movies) == 0 {
		return nil, nil
	}

	// 按影片聚合评分，order 保持快照中的首次出现顺序
	sums := make(map[string]float64)
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, rating := range r.Snapshot.Ratings {
		if _, seen := counts[rating.MovieID]; !seen {
			order = append(order, rating.MovieID)
		}
		sums[rating.MovieID] += rating.Score
		counts[rating.MovieID]++
	}

	out := make([]*core.Item, 0, limit)
	for _, movieID := range order {
		mean := sums[movieID] / float64(counts[movieID])
		it := core.NewItem(movieID)
		it.Score = mean * math.Log(float64(counts[movieID])+1)
		it.PutLabel("recall_source", utils.Label{Value: "popular", Source: "recall"})
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	// 评过分的影片不够时，按快照顺序补齐零评分影片
	if len(out) < limit {
		defaultScore := r.Tunables.DefaultPopularScore
		if defaultScore <= 0 {
			defaultScore = core.DefaultTunables().DefaultPopularScore
		}
		for _, m := range r.Snapshot.Movies {
			if _, hasRatings := counts[m.ID]; hasRatings {
				continue
			}
			it := core.NewItem(m.ID)
			it.Score = defaultScore
			it.PutLabel("recall_source", utils.Label{Value: "popular_default", Source: "recall"})
			out = append(out, it)
		}
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
