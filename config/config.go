// Package config 负责服务配置：YAML 文件为基底，环境变量覆盖，
// 以及配置驱动 Pipeline 的 Node 构建注册表。
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config 是服务的全部可配置项。时间类配置以秒为单位。
type Config struct {
	HTTPAddr    string `yaml:"http_addr"`
	UpstreamURL string `yaml:"upstream_url"`

	RefreshSeconds int `yaml:"refresh_seconds"` // 快照刷新间隔
	TimeoutSeconds int `yaml:"timeout_seconds"` // 上游请求超时

	Redis RedisConfig `yaml:"redis"`

	// FilterExprs 是可选的候选过滤规则（CEL 表达式），按序应用。
	FilterExprs []string `yaml:"filter_exprs"`

	Tunables TunablesConfig `yaml:"tunables"`
}

// RedisConfig 为空 Addr 时不启用 Redis 快照缓存。
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	DB         int    `yaml:"db"`
	Key        string `yaml:"key"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// TunablesConfig 覆盖算法默认参数，零值表示使用默认。
type TunablesConfig struct {
	NeighborCount              int     `yaml:"neighbor_count"`
	MinRatingsForCollaborative int     `yaml:"min_ratings_for_collaborative"`
	LikeThreshold              float64 `yaml:"like_threshold"`
	CollaborativeWeight        float64 `yaml:"collaborative_weight"`
	ContentWeight              float64 `yaml:"content_weight"`
	DefaultPopularScore        float64 `yaml:"default_popular_score"`
	MaxVocabulary              int     `yaml:"max_vocabulary"`
}

// Load 读取配置：默认值 → YAML 文件（path 为空或不存在时跳过）→ 环境变量。
func Load(path string) (*Config, error) {
	cfg := &Config{
		HTTPAddr:       ":5000",
		UpstreamURL:    "http://localhost:3001",
		RefreshSeconds: 300,
		TimeoutSeconds: 10,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.HTTPAddr = getEnv("HTTP_ADDR", cfg.HTTPAddr)
	cfg.UpstreamURL = getEnv("UPSTREAM_URL", cfg.UpstreamURL)
	cfg.RefreshSeconds = getEnvInt("REFRESH_SECONDS", cfg.RefreshSeconds)
	cfg.TimeoutSeconds = getEnvInt("TIMEOUT_SECONDS", cfg.TimeoutSeconds)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.TTLSeconds = getEnvInt("REDIS_TTL_SECONDS", cfg.Redis.TTLSeconds)

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
