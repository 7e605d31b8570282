package loader

import (
	"fmt"
	"math/rand"

	"github.com/rushteam/movierec/core"
)

// mockSeed 固定种子：mock 数据在任何进程里都生成同一份，便于排查与测试。
const mockSeed = 42

var mockCategories = []string{"Action", "Comedy", "Drama", "Horror", "Sci-Fi", "Romance"}

// MockMovies 生成 50 部确定性的测试影片，形态与上游目录一致。
func MockMovies() []core.Movie {
	rng := rand.New(rand.NewSource(mockSeed))
	movies := make([]core.Movie, 0, 50)
	for i := 1; i <= 50; i++ {
		category := mockCategories[rng.Intn(len(mockCategories))]
		movies = append(movies, core.Movie{
			ID:          fmt.Sprintf("movie_%d", i),
			Title:       fmt.Sprintf("Movie %d", i),
			Description: fmt.Sprintf("This is a %s movie with exciting plot and great characters.", category),
			Category:    category,
			ReleaseDate: fmt.Sprintf("202%d-%02d-01", rng.Intn(4), rng.Intn(12)+1),
		})
	}
	return movies
}

// MockRatings 生成确定性的测试评分：20 个用户，各评 10–30 部影片，
// 评分分布偏向高分（1/2 各 10%，3 占 20%，4/5 各 30%）。
func MockRatings() []core.Rating {
	rng := rand.New(rand.NewSource(mockSeed))
	var ratings []core.Rating
	for u := 1; u <= 20; u++ {
		userID := fmt.Sprintf("user_%d", u)
		n := 10 + rng.Intn(21)
		for _, idx := range rng.Perm(50)[:n] {
			ratings = append(ratings, core.Rating{
				UserID:  userID,
				MovieID: fmt.Sprintf("movie_%d", idx+1),
				Score:   weightedScore(rng),
			})
		}
	}
	return ratings
}

// weightedScore 按 {1:0.1, 2:0.1, 3:0.2, 4:0.3, 5:0.3} 抽取评分。
func weightedScore(rng *rand.Rand) float64 {
	p := rng.Float64()
	switch {
	case p < 0.1:
		return 1
	case p < 0.2:
		return 2
	case p < 0.4:
		return 3
	case p < 0.7:
		return 4
	default:
		return 5
	}
}
