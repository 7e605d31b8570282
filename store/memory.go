// Package store 提供快照的持有与缓存实现：进程内原子替换的 Memory，
// 以及跨进程重启的 Redis 快照缓存。接口定义在 core 包。
package store

import (
	"sync/atomic"
	"time"

	"github.com/rushteam/movierec/core"
)

// Memory 是进程内的快照持有者。
//
// 刷新方调用 Swap 发布整份新快照（swap-on-write），版本号单调递增；
// 读取方通过 Current 拿到的快照保证内部一致，之后的 Swap 不影响它。
type Memory struct {
	current   atomic.Pointer[core.Snapshot]
	version   atomic.Uint64
	swappedAt atomic.Pointer[time.Time]
}

func NewMemory() *Memory {
	return &Memory{}
}

// Swap 发布一份新快照并返回它。版本号由 Memory 分配。
func (m *Memory) Swap(ratings []core.Rating, movies []core.Movie) *core.Snapshot {
	snap := &core.Snapshot{
		Version: m.version.Add(1),
		Ratings: ratings,
		Movies:  movies,
	}
	now := time.Now()
	m.current.Store(snap)
	m.swappedAt.Store(&now)
	return snap
}

// Restore 发布一份已有版本号的快照（如 Redis 里缓存的上次快照）。
// 版本计数器同步推进，保证后续 Swap 的版本仍然单调。
func (m *Memory) Restore(snap *core.Snapshot) {
	if snap == nil {
		return
	}
	for {
		cur := m.version.Load()
		if cur >= snap.Version {
			break
		}
		if m.version.CompareAndSwap(cur, snap.Version) {
			break
		}
	}
	now := time.Now()
	m.current.Store(snap)
	m.swappedAt.Store(&now)
}

// Current 返回当前快照；还没有任何数据时返回 (nil, false)。
func (m *Memory) Current() (*core.Snapshot, bool) {
	snap := m.current.Load()
	if snap == nil {
		return nil, false
	}
	return snap, true
}

// SwappedAt 返回最近一次发布快照的时间，用于健康检查上报快照年龄。
func (m *Memory) SwappedAt() (time.Time, bool) {
	t := m.swappedAt.Load()
	if t == nil {
		return time.Time{}, false
	}
	return *t, true
}

var _ core.SnapshotProvider = (*Memory)(nil)
