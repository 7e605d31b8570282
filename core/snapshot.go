package core

// Snapshot 是一次推荐计算可见的全部数据：评分 + 影片元数据。
//
// 设计要点：
//   - 不可变值：刷新数据时整体构造一个新 Snapshot 原子替换（swap-on-write），
//     绝不原地修改，保证并发中的计算始终看到一份一致的数据
//   - Version 单调递增，派生矩阵以它为 key 做 memoize：
//     (Version) -> (UserItemMatrix, ContentSimilarityMatrix)
type Snapshot struct {
	Version uint64   `json:"version"`
	Ratings []Rating `json:"ratings"`
	Movies  []Movie  `json:"movies"`
}

// SnapshotProvider 提供当前可用的快照。
//
// 接口定义在领域层，由 store 包实现；刷新方（loader）整体替换快照，
// 读取方（engine）在一次计算开始时取一份并用到底。
type SnapshotProvider interface {
	// Current 返回当前快照；尚无数据时返回 (nil, false)。
	Current() (*Snapshot, bool)
}

// RatingsByUser 返回指定用户的全部评分，保持快照内的原始顺序。
func (s *Snapshot) RatingsByUser(userID string) []Rating {
	if s == nil {
		return nil
	}
	var out []Rating
	for _, r := range s.Ratings {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

// RatingCount 返回指定用户的评分条数，用于混合推荐的数据充分性判定。
func (s *Snapshot) RatingCount(userID string) int {
	if s == nil {
		return 0
	}
	n := 0
	for _, r := range s.Ratings {
		if r.UserID == userID {
			n++
		}
	}
	return n
}

// MovieByID 按 ID 查找影片；评分里引用但快照里不存在的影片返回 false。
func (s *Snapshot) MovieByID(id string) (Movie, bool) {
	if s == nil {
		return Movie{}, false
	}
	for _, m := range s.Movies {
		if m.ID == id {
			return m, true
		}
	}
	return Movie{}, false
}
