// Package recall 实现四个召回源：协同过滤、内容推荐、热门兜底与混合召回。
//
// 所有召回源对数据稀疏（未知用户、空快照、零向量）一律返回空结果而不是错误，
// 由上层降级链路兜底。
package recall

import (
	"context"

	"github.com/rushteam/movierec/core"
)

// Source 表示一个可复用的召回源（协同过滤/内容/热门/混合）。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// 召回源兜底的默认返回条数，仅在 rctx.Limit 未设置时生效。
const defaultLimit = 10
