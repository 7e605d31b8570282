// Package loader 负责周期性地从上游目录服务拉取评分与影片数据，
// 归一化后整体发布为新快照。核心算法层只消费快照，不感知这里的一切。
//
// 降级链路：上游拉取失败 → Redis 缓存的上一份快照 → 确定性 mock 数据。
// 任何失败都不会让核心层拿到半份数据。
package loader

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/store"
)

// HTTP 从上游 HTTP 服务拉取数据并发布快照。
type HTTP struct {
	baseURL string
	client  *http.Client
	memory  *store.Memory
	cache   *store.Redis // 可选
	log     zerolog.Logger
}

// New 创建 loader。cache 可以为 nil（不启用 Redis 快照缓存）。
func New(baseURL string, timeout time.Duration, memory *store.Memory, cache *store.Redis, log zerolog.Logger) *HTTP {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTP{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		memory:  memory,
		cache:   cache,
		log:     log,
	}
}

// ratingPayload 是上游 /ratings/all 的单条结构。
type ratingPayload struct {
	UserID  string  `json:"userId"`
	MovieID string  `json:"movieId"`
	Score   float64 `json:"score"`
}

// moviePayload 是上游 /movies 的单条结构。
// 上游 category 字段有两种形态：普通字符串或 {name: ...} 嵌套对象；
// ID 字段可能是 _id 或 id。全部在这里归一化，核心层只见到普通字符串。
type moviePayload struct {
	ID          string `json:"id"`
	MongoID     string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    any    `json:"category"`
	ReleaseDate string `json:"releaseDate"`
}

func (p *moviePayload) toMovie() core.Movie {
	id := p.ID
	if id == "" {
		id = p.MongoID
	}
	category := "Unknown"
	switch c := p.Category.(type) {
	case string:
		if c != "" {
			category = c
		}
	case map[string]any:
		if name, ok := c["name"].(string); ok && name != "" {
			category = name
		}
	}
	return core.Movie{
		ID:          id,
		Title:       p.Title,
		Description: p.Description,
		Category:    category,
		ReleaseDate: p.ReleaseDate,
	}
}

// Refresh 拉取一次上游数据并发布新快照。
// 上游失败时走降级链路，函数本身只在快照完全无法产出时返回错误。
func (l *HTTP) Refresh(ctx context.Context) error {
	ratings, ratingsErr := l.fetchRatings(ctx)
	movies, moviesErr := l.fetchMovies(ctx)

	if ratingsErr != nil || moviesErr != nil {
		l.log.Warn().
			AnErr("ratings", ratingsErr).
			AnErr("movies", moviesErr).
			Msg("upstream fetch failed, degrading")

		if l.cache != nil {
			if snap, err := l.cache.LoadSnapshot(ctx); err == nil {
				l.memory.Restore(snap)
				l.log.Info().Uint64("version", snap.Version).Msg("restored snapshot from redis cache")
				return nil
			}
		}
		if ratingsErr != nil {
			ratings = MockRatings()
		}
		if moviesErr != nil {
			movies = MockMovies()
		}
	}

	snap := l.memory.Swap(ratings, movies)
	l.log.Info().
		Uint64("version", snap.Version).
		Int("ratings", len(ratings)).
		Int("movies", len(movies)).
		Msg("snapshot published")

	// 只缓存真实的上游数据，mock 数据不值得跨进程留存
	if l.cache != nil && ratingsErr == nil && moviesErr == nil {
		if err := l.cache.SaveSnapshot(ctx, snap); err != nil {
			l.log.Warn().Err(err).Msg("failed to cache snapshot in redis")
		}
	}
	return nil
}

// Run 按固定间隔刷新快照，直到 ctx 结束。首次刷新由调用方负责。
func (l *HTTP) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := l.Refresh(ctx); err != nil {
				l.log.Error().Err(err).Msg("refresh failed")
			}
		}
	}
}

// Probe 探测上游两个端点的可达性，供 /backend-status 上报。
func (l *HTTP) Probe(ctx context.Context) map[string]any {
	ratingsOK := l.probeEndpoint(ctx, "/ratings/stats")
	moviesOK := l.probeEndpoint(ctx, "/movies")
	return map[string]any{
		"backend_url":      l.baseURL,
		"ratings_endpoint": ratingsOK,
		"movies_endpoint":  moviesOK,
		"overall_status":   ratingsOK && moviesOK,
	}
}

func (l *HTTP) probeEndpoint(ctx context.Context, path string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+path, nil)
	if err != nil {
		return false
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (l *HTTP) fetchRatings(ctx context.Context) ([]core.Rating, error) {
	var payload []ratingPayload
	if err := l.getJSON(ctx, "/ratings/all", &payload); err != nil {
		return nil, err
	}
	ratings := make([]core.Rating, 0, len(payload))
	for _, p := range payload {
		ratings = append(ratings, core.Rating{
			UserID:  p.UserID,
			MovieID: p.MovieID,
			Score:   p.Score,
		})
	}
	return ratings, nil
}

func (l *HTTP) fetchMovies(ctx context.Context) ([]core.Movie, error) {
	var payload []moviePayload
	if err := l.getJSON(ctx, "/movies", &payload); err != nil {
		return nil, err
	}
	movies := make([]core.Movie, 0, len(payload))
	for _, p := range payload {
		movies = append(movies, p.toMovie())
	}
	return movies, nil
}

func (l *HTTP) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
