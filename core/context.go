package core

import "github.com/rushteam/movierec/pkg/utils"

// 推荐算法模式。未知模式按 hybrid 处理。
const (
	AlgorithmCollaborative = "collaborative"
	AlgorithmContent       = "content"
	AlgorithmHybrid        = "hybrid"
)

// RecommendContext 承载一次推荐请求的上下文，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID    string
	Limit     int
	Algorithm string // collaborative / content / hybrid

	// Labels 是请求级标签，可驱动 Pipeline 行为（如冷启动标记）。
	Labels map[string]utils.Label

	// Params 请求级参数，供自定义 Node（如 filter.expr）读取。
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}
