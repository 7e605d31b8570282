// Package movierec 是一个影片个性化推荐服务。
//
// 设计要点：
// - Snapshot-first: 核心算法只消费不可变的 (评分, 影片) 快照，刷新即整体替换
// - Pipeline-first: 一次推荐 = 召回 Node → 过滤 Node → 截断 Node 的链式计算
// - 召回源可插拔: 协同过滤 / 内容 / 热门 / 混合，统一 Source 接口
package movierec

import "github.com/rushteam/movierec/pipeline"

// 轻量 facade：便于用户直接 import "movierec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall = pipeline.KindRecall
	KindEnrich = pipeline.KindEnrich
	KindFilter = pipeline.KindFilter
	KindReRank = pipeline.KindReRank
)
