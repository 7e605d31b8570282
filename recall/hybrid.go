package recall

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/pkg/utils"
)

// Hybrid 是混合召回源：按目标用户数据充分性在三条路径间切换。
//
// 状态机（n = 用户评分条数，T = MinRatingsForCollaborative）：
//   - n ≥ T：CF(limit) 与 Content(limit/2) 并发执行后加权合并，
//     CF 结果权重 CollaborativeWeight，Content 结果权重 ContentWeight
//     （同一影片两边都命中时相加）；limit/2 为 0 时内容路径不参与
//   - 0 < n < T：直接返回 Content(limit)
//   - n = 0：不执行任何个性化路径
//   - 个性化结果为空时（任意状态）降级为 Popular(limit)
//
// 两个个性化源各自确定，合并按固定顺序进行，并发只影响耗时不影响结果。
type Hybrid struct {
	Collaborative Source
	Content       Source
	Popular       Source

	Snapshot *core.Snapshot
	Tunables core.Tunables
}

func (r *Hybrid) Name() string { return "recall.hybrid" }

func (r *Hybrid) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil {
		return nil, nil
	}
	limit := rctx.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	minRatings := r.Tunables.MinRatingsForCollaborative
	if minRatings <= 0 {
		minRatings = core.DefaultTunables().MinRatingsForCollaborative
	}

	n := r.Snapshot.RatingCount(rctx.UserID)

	var personalized []*core.Item
	switch {
	case n >= minRatings:
		items, err := r.blend(ctx, rctx, limit)
		if err != nil {
			return nil, err
		}
		personalized = items
	case n > 0:
		contentCtx := *rctx
		contentCtx.Limit = limit
		items, err := r.Content.Recall(ctx, &contentCtx)
		if err != nil {
			return nil, err
		}
		personalized = items
	}

	if len(personalized) > 0 {
		return personalized, nil
	}

	// 个性化路径没有产出，降级为热门兜底
	fallbackCtx := *rctx
	fallbackCtx.Limit = limit
	return r.Popular.Recall(ctx, &fallbackCtx)
}

// blend 并发执行协同过滤与内容召回，按固定权重合并。
func (r *Hybrid) blend(
	ctx context.Context,
	rctx *core.RecommendContext,
	limit int,
) ([]*core.Item, error) {
	cfWeight := r.Tunables.CollaborativeWeight
	contentWeight := r.Tunables.ContentWeight
	if cfWeight <= 0 && contentWeight <= 0 {
		defaults := core.DefaultTunables()
		cfWeight = defaults.CollaborativeWeight
		contentWeight = defaults.ContentWeight
	}

	var cfItems, contentItems []*core.Item
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		cfCtx := *rctx
		cfCtx.Limit = limit
		items, err := r.Collaborative.Recall(egCtx, &cfCtx)
		cfItems = items
		return err
	})
	// 内容路径的预算是 limit/2；limit=1 时预算为 0，内容路径不参与，
	// 不能把 0 交给 Content（它会把非正 limit 当作未设置回退默认值）
	if contentLimit := limit / 2; contentLimit > 0 {
		eg.Go(func() error {
			contentCtx := *rctx
			contentCtx.Limit = contentLimit
			items, err := r.Content.Recall(egCtx, &contentCtx)
			contentItems = items
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	combined := make(map[string]*core.Item, len(cfItems)+len(contentItems))
	order := make([]string, 0, len(cfItems)+len(contentItems))
	for _, src := range cfItems {
		it := core.NewItem(src.ID)
		it.Score = src.Score * cfWeight
		for k, v := range src.Labels {
			it.PutLabel(k, v)
		}
		combined[src.ID] = it
		order = append(order, src.ID)
	}
	for _, src := range contentItems {
		if it, ok := combined[src.ID]; ok {
			it.Score += src.Score * contentWeight
			for k, v := range src.Labels {
				it.PutLabel(k, v)
			}
			continue
		}
		it := core.NewItem(src.ID)
		it.Score = src.Score * contentWeight
		for k, v := range src.Labels {
			it.PutLabel(k, v)
		}
		combined[src.ID] = it
		order = append(order, src.ID)
	}

	out := make([]*core.Item, 0, len(order))
	for _, id := range order {
		it := combined[id]
		it.PutLabel("blend", utils.Label{Value: "cf+content", Source: "recall"})
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
