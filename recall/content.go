package recall

import (
	"context"
	"sort"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/feature"
	"github.com/rushteam/movierec/pkg/utils"
)

// Content 是基于内容的召回源：从用户"喜欢"的影片出发，
// 沿内容相似度行聚合候选。
//
// 算法流程：
//  1. 用户无评分 → 返回空
//  2. "喜欢" = 评分 ≥ LikeThreshold 的影片；一个都没有 → 返回空
//  3. 对每部喜欢的影片读取其相似度行（不在当前影片快照里的静默跳过），
//     行内每个"既不是该影片自身、也未被用户评过分"的影片累积一次贡献
//  4. 候选分数 = 各喜欢影片行贡献的算术平均
//  5. 分数降序取 limit；同分保持首次出现顺序
type Content struct {
	Sim      *feature.ContentSimilarityMatrix
	Snapshot *core.Snapshot
	Tunables core.Tunables
}

func (r *Content) Name() string { return "recall.content" }

func (r *Content) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || rctx.UserID == "" {
		return nil, nil
	}
	limit := rctx.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	userRatings := r.Snapshot.RatingsByUser(rctx.UserID)
	if len(userRatings) == 0 {
		return nil, nil
	}

	likeThreshold := r.Tunables.LikeThreshold
	if likeThreshold <= 0 {
		likeThreshold = core.DefaultTunables().LikeThreshold
	}

	rated := make(map[string]struct{}, len(userRatings))
	liked := make([]string, 0)
	for _, rating := range userRatings {
		rated[rating.MovieID] = struct{}{}
		if rating.Score >= likeThreshold {
			liked = append(liked, rating.MovieID)
		}
	}
	if len(liked) == 0 {
		return nil, nil
	}

	// 贡献值包含相似度为 0 的项：零贡献同样拉低均值，与线上口径一致
	contributions := make(map[string][]float64)
	order := make([]string, 0)
	for _, likedID := range liked {
		row, ok := r.Sim.RowOf(likedID)
		if !ok {
			continue // 只出现在评分里、不在影片快照里
		}
		for j, simVal := range row {
			movieID := r.Sim.Items[j]
			if movieID == likedID {
				continue
			}
			if _, already := rated[movieID]; already {
				continue
			}
			if _, seen := contributions[movieID]; !seen {
				order = append(order, movieID)
			}
			contributions[movieID] = append(contributions[movieID], simVal)
		}
	}

	out := make([]*core.Item, 0, len(order))
	for _, movieID := range order {
		scores := contributions[movieID]
		var sum float64
		for _, s := range scores {
			sum += s
		}
		it := core.NewItem(movieID)
		it.Score = sum / float64(len(scores))
		it.PutLabel("recall_source", utils.Label{Value: "content", Source: "recall"})
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
