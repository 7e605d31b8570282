package recall

import (
	"context"
	"sort"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/feature"
	"github.com/rushteam/movierec/pkg/utils"
)

// Collaborative 是基于用户的协同过滤召回源（User-CF）。
//
// 算法流程：
//  1. 目标用户不在矩阵中 → 返回空（无个性化信号，不是错误）
//  2. 目标用户评分向量与其余每个用户的向量算余弦相似度（缺失项为 0）
//  3. 相似度降序取 TopK 邻居（排除自己；同分按矩阵迭代顺序，稳定）
//  4. 候选 = 邻居评过分（>0）且目标用户未评分（>0）的影片
//  5. 候选分数 = 各邻居贡献 rating×similarity 的算术平均
//     （不是相似度加权平均——沿用线上口径，调整需要产品决策）
//  6. 分数降序取 limit；同分保持聚合时的首次出现顺序
type Collaborative struct {
	Matrix   *feature.UserItemMatrix
	Tunables core.Tunables
}

func (r *Collaborative) Name() string { return "recall.collaborative" }

func (r *Collaborative) Recall(
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

	targetRow, ok := r.Matrix.Row(rctx.UserID)
	if !ok {
		return nil, nil
	}

	type neighbor struct {
		index int
		sim   float64
	}
	neighbors := make([]neighbor, 0, len(r.Matrix.Users))
	for i, userID := range r.Matrix.Users {
		if userID == rctx.UserID {
			continue
		}
		neighbors = append(neighbors, neighbor{
			index: i,
			sim:   feature.CosineSimilarity(targetRow, r.Matrix.Rows[i]),
		})
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].sim > neighbors[j].sim
	})
	topK := r.Tunables.NeighborCount
	if topK <= 0 {
		topK = core.DefaultTunables().NeighborCount
	}
	if len(neighbors) > topK {
		neighbors = neighbors[:topK]
	}

	// 聚合邻居贡献；order 记录候选首次出现的顺序，作为同分时的排序依据
	contributions := make(map[string][]float64)
	order := make([]string, 0)
	for _, nb := range neighbors {
		row := r.Matrix.Rows[nb.index]
		for j, rating := range row {
			if rating <= 0 || targetRow[j] > 0 {
				continue
			}
			movieID := r.Matrix.Items[j]
			if _, seen := contributions[movieID]; !seen {
				order = append(order, movieID)
			}
			contributions[movieID] = append(contributions[movieID], rating*nb.sim)
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
		it.PutLabel("recall_source", utils.Label{Value: "collaborative", Source: "recall"})
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
