package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/filter"
	"github.com/rushteam/movierec/pipeline"
	"github.com/rushteam/movierec/pkg/conv"
	"github.com/rushteam/movierec/rerank"
)

// Tunables 把配置覆盖合并到默认算法参数上。
func (c *TunablesConfig) Tunables() core.Tunables {
	t := core.DefaultTunables()
	if c == nil {
		return t
	}
	if c.NeighborCount > 0 {
		t.NeighborCount = c.NeighborCount
	}
	if c.MinRatingsForCollaborative > 0 {
		t.MinRatingsForCollaborative = c.MinRatingsForCollaborative
	}
	if c.LikeThreshold > 0 {
		t.LikeThreshold = c.LikeThreshold
	}
	if c.CollaborativeWeight > 0 {
		t.CollaborativeWeight = c.CollaborativeWeight
	}
	if c.ContentWeight > 0 {
		t.ContentWeight = c.ContentWeight
	}
	if c.DefaultPopularScore > 0 {
		t.DefaultPopularScore = c.DefaultPopularScore
	}
	if c.MaxVocabulary > 0 {
		t.MaxVocabulary = c.MaxVocabulary
	}
	return t
}

var (
	defaultBuilders   = make(map[string]pipeline.NodeBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register 注册一种 Node 的构建逻辑，供 DefaultFactory 与配置驱动使用。
func Register(typeName string, builder pipeline.NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes 返回当前已注册的 Node 类型列表（排序），用于错误提示。
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// DefaultFactory 返回基于当前注册表构建的 NodeFactory。
//
// 召回类 Node 绑定某一版本快照的派生矩阵，不能脱离 engine 由配置凭空构建；
// 注册表含数据无关的节点（过滤规则、截断），以及经
// RegisterSnapshotNodes 注册、按次取当前快照的 filter.rated。
func DefaultFactory() *pipeline.NodeFactory {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range defaultBuilders {
		f.Register(typeName, builder)
	}
	return f
}

// BuildFilters 把配置里的 CEL 规则编译为过滤节点。
func BuildFilters(exprs []string) ([]pipeline.Node, error) {
	nodes := make([]pipeline.Node, 0, len(exprs))
	for _, expr := range exprs {
		node, err := filter.NewExpr(expr)
		if err != nil {
			return nil, fmt.Errorf("filter expr %q: %w", expr, err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// RegisterSnapshotNodes 注册依赖快照数据的节点构建器（filter.rated）。
// 召回类节点绑定按版本 memoize 的派生矩阵，由 engine 按请求组装，
// 不进注册表。
func RegisterSnapshotNodes(provider core.SnapshotProvider) {
	Register("filter.rated", func(_ map[string]any) (pipeline.Node, error) {
		return &filter.Rated{Provider: provider}, nil
	})
}

func init() {
	Register("filter.expr", func(cfg map[string]any) (pipeline.Node, error) {
		expr := conv.ConfigGet[string](cfg, "expression", "")
		if expr == "" {
			return nil, fmt.Errorf("filter.expr: expression is required")
		}
		return filter.NewExpr(expr)
	})
	Register("rerank.topn", func(cfg map[string]any) (pipeline.Node, error) {
		return &rerank.TopN{N: conv.ConfigGetInt(cfg, "n", 0)}, nil
	})
}
