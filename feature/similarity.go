package feature

import (
	"strings"

	"github.com/rushteam/movierec/core"
)

// ContentSimilarityMatrix 是影片×影片的内容相似度矩阵（对称，余弦）。
// 影片轴固定为快照中的顺序，矩阵与该顺序绑定。
type ContentSimilarityMatrix struct {
	Items []string
	Sim   [][]float64

	index map[string]int
}

// BuildContentSimilarity 把每部影片的 {标题, 描述, 类别} 拼接成一个文档，
// 全集 TF-IDF 向量化后计算两两余弦相似度。
// movies 为空时返回 nil（空哨兵，不是错误）。
func BuildContentSimilarity(movies []core.Movie, maxVocabulary int) *ContentSimilarityMatrix {
	if len(movies) == 0 {
		return nil
	}

	docs := make([]string, len(movies))
	items := make([]string, len(movies))
	index := make(map[string]int, len(movies))
	for i, m := range movies {
		docs[i] = strings.Join([]string{m.Title, m.Description, m.Category}, " ")
		items[i] = m.ID
		index[m.ID] = i
	}

	vectorizer := &TFIDFVectorizer{MaxFeatures: maxVocabulary}
	vectors := vectorizer.FitTransform(docs)

	// 行向量已 L2 归一化，余弦相似度退化为点积
	sim := make([][]float64, len(vectors))
	for i := range vectors {
		sim[i] = make([]float64, len(vectors))
		for j := range vectors {
			if j < i {
				sim[i][j] = sim[j][i]
				continue
			}
			var dot float64
			for k := range vectors[i] {
				dot += vectors[i][k] * vectors[j][k]
			}
			sim[i][j] = dot
		}
	}

	return &ContentSimilarityMatrix{Items: items, Sim: sim, index: index}
}

// ItemIndex 返回影片在相似度矩阵中的行号；
// 评分里引用但快照里不存在的影片返回 false。
func (m *ContentSimilarityMatrix) ItemIndex(movieID string) (int, bool) {
	if m == nil {
		return 0, false
	}
	i, ok := m.index[movieID]
	return i, ok
}

// RowOf 返回影片的相似度行。
func (m *ContentSimilarityMatrix) RowOf(movieID string) ([]float64, bool) {
	i, ok := m.ItemIndex(movieID)
	if !ok {
		return nil, false
	}
	return m.Sim[i], true
}
