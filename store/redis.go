package store

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/rushteam/movierec/core"
)

// Redis 是 Redis 实现的快照缓存：loader 每次成功拉取后写入，
// 进程重启或上游不可用时可以先用缓存的快照恢复服务。
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedis 建立连接并做一次 Ping 探活。
// key 为空时使用 "movierec:snapshot"；ttl <= 0 表示不过期。
func NewRedis(addr string, db int, key string, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	if key == "" {
		key = "movierec:snapshot"
	}
	return &Redis{client: client, key: key, ttl: ttl}, nil
}

func (r *Redis) Name() string { return "redis" }

// SaveSnapshot 把整份快照以 JSON 写入缓存。
func (r *Redis) SaveSnapshot(ctx context.Context, snap *core.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, data, r.ttl).Err()
}

// LoadSnapshot 读取缓存的快照；key 不存在时返回 core.ErrStoreNotFound。
func (r *Redis) LoadSnapshot(ctx context.Context) (*core.Snapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err == redis.Nil {
		return nil, core.ErrStoreNotFound
	}
	if err != nil {
		return nil, err
	}
	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
