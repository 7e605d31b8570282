package core

// Tunables 集中算法的可调参数。算法逻辑只引用这里的字段，
// 调参不需要改动任何算法代码。
type Tunables struct {
	// NeighborCount 协同过滤选取的相似用户数
	NeighborCount int

	// MinRatingsForCollaborative 进入 CF+内容混合分支所需的最少评分数；
	// 低于该值但大于 0 时走纯内容分支
	MinRatingsForCollaborative int

	// LikeThreshold 内容推荐中"喜欢"的评分下限（含）
	LikeThreshold float64

	// CollaborativeWeight / ContentWeight 混合推荐的加权系数
	CollaborativeWeight float64
	ContentWeight       float64

	// DefaultPopularScore 无评分影片在热门兜底中的固定分数
	DefaultPopularScore float64

	// MaxVocabulary TF-IDF 词表上限
	MaxVocabulary int
}

// DefaultTunables 返回与线上一致的默认参数。
func DefaultTunables() Tunables {
	return Tunables{
		NeighborCount:              10,
		MinRatingsForCollaborative: 5,
		LikeThreshold:              4.0,
		CollaborativeWeight:        0.7,
		ContentWeight:              0.3,
		DefaultPopularScore:        2.5,
		MaxVocabulary:              1000,
	}
}
