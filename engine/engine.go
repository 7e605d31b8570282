// Package engine 是推荐计算的门面：校验调用契约、按快照版本物化派生矩阵、
// 选择召回源并运行 Pipeline，返回排好序的推荐列表。
//
// 同一 (快照, 参数) 下计算完全确定；矩阵按快照版本 memoize，
// 并发请求共享一次构建，快照版本变化时才重建。
package engine

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/feature"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/recall"
	"github.com/rushteam/movierec/rerank"
)

// Recommendation 是对外返回的单条推荐。
type Recommendation struct {
	MovieID string  `json:"movieId"`
	Score   float64 `json:"score"`
}

// Engine 对外提供推荐计算入口。并发安全。
type Engine struct {
	provider core.SnapshotProvider
	tunables core.Tunables
	filters  []pipeline.Node // 召回之后、截断之前插入的过滤节点

	group singleflight.Group

	mu      sync.RWMutex
	version uint64
	cached  *matrices
}

// matrices 是某一版本快照的派生矩阵。
type matrices struct {
	userItem *feature.UserItemMatrix
	sim      *feature.ContentSimilarityMatrix
}

// Option 配置 Engine。
type Option func(*Engine)

// WithTunables 覆盖默认算法参数。
func WithTunables(t core.Tunables) Option {
	return func(e *Engine) { e.tunables = t }
}

// WithFilters 追加过滤节点（如 filter.Expr 规则过滤）。
func WithFilters(nodes ...pipeline.Node) Option {
	return func(e *Engine) { e.filters = append(e.filters, nodes...) }
}

func New(provider core.SnapshotProvider, opts ...Option) *Engine {
	e := &Engine{
		provider: provider,
		tunables: core.DefaultTunables(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend 为用户计算推荐。
//
// limit < 1 是调用契约违反，返回 ErrInvalidLimit；尚无快照返回
// ErrSnapshotUnavailable。数据稀疏（未知用户等）不是错误，
// 由混合召回的降级链路兜底。algorithm 未知时按 hybrid 处理。
func (e *Engine) Recommend(
	ctx context.Context,
	userID string,
	limit int,
	algorithm string,
) ([]Recommendation, error) {
	if limit < 1 {
		return nil, core.ErrInvalidLimit
	}
	snap, ok := e.provider.Current()
	if !ok {
		return nil, core.ErrSnapshotUnavailable
	}

	mats := e.materialize(snap)
	src := e.selectSource(algorithm, snap, mats)

	rctx := &core.RecommendContext{
		UserID:    userID,
		Limit:     limit,
		Algorithm: algorithm,
	}
	return e.run(ctx, rctx, snap, src, limit)
}

// Popular 直接计算热门兜底排名（诊断用途）。
func (e *Engine) Popular(ctx context.Context, limit int) ([]Recommendation, error) {
	if limit < 1 {
		return nil, core.ErrInvalidLimit
	}
	snap, ok := e.provider.Current()
	if !ok {
		return nil, core.ErrSnapshotUnavailable
	}

	src := &recall.Popular{Snapshot: snap, Tunables: e.tunables}
	rctx := &core.RecommendContext{Limit: limit}
	return e.run(ctx, rctx, snap, src, limit)
}

// run 组装并运行 Pipeline：召回 → (补全元信息 → 过滤) → TopN 截断。
func (e *Engine) run(
	ctx context.Context,
	rctx *core.RecommendContext,
	snap *core.Snapshot,
	src recall.Source,
	limit int,
) ([]Recommendation, error) {
	nodes := make([]pipeline.Node, 0, len(e.filters)+3)
	nodes = append(nodes, &recall.Node{Source: src})
	if len(e.filters) > 0 {
		nodes = append(nodes, &enrichNode{snap: snap})
		nodes = append(nodes, e.filters...)
	}
	nodes = append(nodes, &rerank.TopN{N: limit})

	p := &pipeline.Pipeline{Nodes: nodes}
	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	out := make([]Recommendation, 0, len(items))
	for _, it := range items {
		out = append(out, Recommendation{MovieID: it.ID, Score: it.Score})
	}
	return out, nil
}

// selectSource 按算法模式选择召回源。
func (e *Engine) selectSource(
	algorithm string,
	snap *core.Snapshot,
	mats *matrices,
) recall.Source {
	collaborative := &recall.Collaborative{Matrix: mats.userItem, Tunables: e.tunables}
	content := &recall.Content{Sim: mats.sim, Snapshot: snap, Tunables: e.tunables}

	switch algorithm {
	case core.AlgorithmCollaborative:
		return collaborative
	case core.AlgorithmContent:
		return content
	default:
		return &recall.Hybrid{
			Collaborative: collaborative,
			Content:       content,
			Popular:       &recall.Popular{Snapshot: snap, Tunables: e.tunables},
			Snapshot:      snap,
			Tunables:      e.tunables,
		}
	}
}

// materialize 返回快照对应的派生矩阵：
// 命中版本缓存直接返回；未命中时经 singleflight 构建一次并替换缓存。
func (e *Engine) materialize(snap *core.Snapshot) *matrices {
	e.mu.RLock()
	if e.cached != nil && e.version == snap.Version {
		mats := e.cached
		e.mu.RUnlock()
		return mats
	}
	e.mu.RUnlock()

	v, _, _ := e.group.Do(strconv.FormatUint(snap.Version, 10), func() (any, error) {
		e.mu.RLock()
		if e.cached != nil && e.version == snap.Version {
			mats := e.cached
			e.mu.RUnlock()
			return mats, nil
		}
		e.mu.RUnlock()

		mats := &matrices{
			userItem: feature.BuildUserItemMatrix(snap.Ratings),
			sim:      feature.BuildContentSimilarity(snap.Movies, e.tunables.MaxVocabulary),
		}
		e.mu.Lock()
		e.version = snap.Version
		e.cached = mats
		e.mu.Unlock()
		return mats, nil
	})
	return v.(*matrices)
}
