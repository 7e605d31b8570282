// Package server 提供围绕推荐引擎的 HTTP 服务面：
// 推荐、热门、健康检查、统计与上游探活。
// 路由层只做参数解析与响应封装，算法语义全部在 engine 内。
package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/rushteam/movierec/core"
	"github.com/rushteam/movierec/engine"
	"github.com/rushteam/movierec/store"
)

const (
	defaultLimit = 10
	maxLimit     = 50
)

// Prober 探测上游可达性（loader.HTTP 实现）。
type Prober interface {
	Probe(ctx context.Context) map[string]any
}

// Server 组装路由与依赖。
type Server struct {
	engine *engine.Engine
	memory *store.Memory
	prober Prober
	log    zerolog.Logger
	router chi.Router
}

// New 创建服务。prober 可以为 nil（/backend-status 返回未配置）。
func New(eng *engine.Engine, memory *store.Memory, prober Prober, log zerolog.Logger) *Server {
	s := &Server{
		engine: eng,
		memory: memory,
		prober: prober,
		log:    log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Get("/backend-status", s.handleBackendStatus)
	r.Get("/recommend", s.handleRecommend)
	r.Post("/recommend", s.handleRecommendPost)
	r.Get("/popular", s.handlePopular)

	s.router = r
	return s
}

// Handler 返回可挂载的 http.Handler。
func (s *Server) Handler() http.Handler {
	return s.router
}

// recommendResponse 是 /recommend 的响应封装，字段与上游消费方约定一致。
type recommendResponse struct {
	Recommendations []engine.Recommendation `json:"recommendations"`
	UserID          string                  `json:"userId"`
	Algorithm       string                  `json:"algorithm"`
	GeneratedAt     string                  `json:"generatedAt"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		s.writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	limit := parseLimit(r.URL.Query().Get("limit"))
	algorithm := normalizeAlgorithm(r.URL.Query().Get("type"))

	s.recommend(w, r, userID, limit, algorithm)
}

func (s *Server) handleRecommendPost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		Limit  int    `json:"limit"`
		Type   string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		s.writeError(w, http.StatusBadRequest, "userId is required")
		return
	}
	limit := req.Limit
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	s.recommend(w, r, req.UserID, limit, normalizeAlgorithm(req.Type))
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request, userID string, limit int, algorithm string) {
	recs, err := s.engine.Recommend(r.Context(), userID, limit, algorithm)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if recs == nil {
		recs = []engine.Recommendation{}
	}
	s.writeJSON(w, http.StatusOK, recommendResponse{
		Recommendations: recs,
		UserID:          userID,
		Algorithm:       algorithm,
		GeneratedAt:     time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r.URL.Query().Get("limit"))
	recs, err := s.engine.Popular(r.Context(), limit)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	if recs == nil {
		recs = []engine.Recommendation{}
	}
	s.writeJSON(w, http.StatusOK, recommendResponse{
		Recommendations: recs,
		Algorithm:       "popular",
		GeneratedAt:     time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Movie Recommendation Service",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"recommendations": "/recommend",
			"popular":         "/popular",
			"health":          "/health",
			"stats":           "/stats",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	dataStatus := map[string]any{
		"ratings_count": 0,
		"movies_count":  0,
	}
	if snap, ok := s.memory.Current(); ok {
		dataStatus["ratings_count"] = len(snap.Ratings)
		dataStatus["movies_count"] = len(snap.Movies)
		dataStatus["snapshot_version"] = snap.Version
		if at, ok := s.memory.SwappedAt(); ok {
			dataStatus["snapshot_age_seconds"] = int(time.Since(at).Seconds())
		}
	}
	status["data_status"] = dataStatus
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.memory.Current()
	if !ok {
		s.writeError(w, http.StatusServiceUnavailable, "no snapshot available")
		return
	}

	users := make(map[string]struct{})
	dist := make(map[string]int)
	var sum float64
	for _, r := range snap.Ratings {
		users[r.UserID] = struct{}{}
		dist[strconv.FormatFloat(r.Score, 'f', -1, 64)]++
		sum += r.Score
	}
	var average float64
	if len(snap.Ratings) > 0 {
		average = sum / float64(len(snap.Ratings))
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"total_ratings":       len(snap.Ratings),
		"total_movies":        len(snap.Movies),
		"unique_users":        len(users),
		"rating_distribution": dist,
		"average_rating":      average,
	})
}

func (s *Server) handleBackendStatus(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if s.prober == nil {
		resp["backend_connectivity"] = map[string]any{"configured": false}
	} else {
		resp["backend_connectivity"] = s.prober.Probe(r.Context())
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// requestLogger 是 zerolog 的请求日志中间件。
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case core.IsInvalidInput(err):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case core.IsUnavailable(err):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.log.Error().Err(err).Msg("recommendation failed")
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

// parseLimit 解析 limit 参数：默认 10，上限 50，非法值回退默认。
func parseLimit(raw string) int {
	if raw == "" {
		return defaultLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// normalizeAlgorithm 空值归一为 hybrid；未知值保留原样交给 engine
// （engine 对未知模式按 hybrid 处理）。
func normalizeAlgorithm(raw string) string {
	if raw == "" {
		return core.AlgorithmHybrid
	}
	return raw
}
