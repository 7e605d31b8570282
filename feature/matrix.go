// Package feature 负责把评分/影片快照物化为推荐算法使用的派生矩阵：
// 用户×影片交互矩阵 与 影片×影片内容相似度矩阵。
//
// 两个矩阵都是某一版本快照的纯函数：同一快照构建结果完全一致，
// 快照变化时整体重建而不是增量更新。
package feature

import (
	"math"
	"sort"

	"github.com/rushteam/movierec/core"
)

// UserItemMatrix 是用户×影片评分矩阵，缺失项为 0。
// 评分被约束在 [1,5]，所以"未评分"与真实评分不会混淆。
//
// 用户轴与影片轴均按 ID 字典序排列，保证迭代顺序稳定、结果可复现。
type UserItemMatrix struct {
	Users []string
	Items []string
	Rows  [][]float64 // len(Users) 行，每行 len(Items) 列

	userIndex map[string]int
	itemIndex map[string]int
}

// BuildUserItemMatrix 根据评分快照构建交互矩阵。
// ratings 为空时返回 nil（空哨兵，不是错误）。
func BuildUserItemMatrix(ratings []core.Rating) *UserItemMatrix {
	if len(ratings) == 0 {
		return nil
	}

	userSet := make(map[string]struct{})
	itemSet := make(map[string]struct{})
	for _, r := range ratings {
		userSet[r.UserID] = struct{}{}
		itemSet[r.MovieID] = struct{}{}
	}

	users := make([]string, 0, len(userSet))
	for u := range userSet {
		users = append(users, u)
	}
	sort.Strings(users)

	items := make([]string, 0, len(itemSet))
	for it := range itemSet {
		items = append(items, it)
	}
	sort.Strings(items)

	m := &UserItemMatrix{
		Users:     users,
		Items:     items,
		Rows:      make([][]float64, len(users)),
		userIndex: make(map[string]int, len(users)),
		itemIndex: make(map[string]int, len(items)),
	}
	for i, u := range users {
		m.userIndex[u] = i
		m.Rows[i] = make([]float64, len(items))
	}
	for j, it := range items {
		m.itemIndex[it] = j
	}
	for _, r := range ratings {
		m.Rows[m.userIndex[r.UserID]][m.itemIndex[r.MovieID]] = r.Score
	}
	return m
}

// UserIndex 返回用户在矩阵中的行号。
func (m *UserItemMatrix) UserIndex(userID string) (int, bool) {
	if m == nil {
		return 0, false
	}
	i, ok := m.userIndex[userID]
	return i, ok
}

// Row 返回用户的完整评分向量。
func (m *UserItemMatrix) Row(userID string) ([]float64, bool) {
	i, ok := m.UserIndex(userID)
	if !ok {
		return nil, false
	}
	return m.Rows[i], true
}

// CosineSimilarity 计算两个等长向量的余弦相似度。
// 零范数向量视为相似度 0，不做除零，也不产生 NaN。
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
