package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ==================== StateStore 授权状态存储 ====================

// StateStore OAuth state -> verifier 的带 TTL 存储
// 有 Redis 时跨实例共享；否则退化为进程内 sync.Map（仅适合单实例部署）
type StateStore struct {
	rdb *redis.Client
	ttl time.Duration

	mem sync.Map // key -> memItem
}

type memItem struct {
	value      string
	expiration int64
}

const statePrefix = "oauth:state:"

// NewStateStore 创建存储，ttl 为 0 时默认 10 分钟（足够完成授权流程）
func NewStateStore(rdb *redis.Client, ttl time.Duration) *StateStore {
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	return &StateStore{rdb: rdb, ttl: ttl}
}

// Set 写入 state 对应的 verifier 值
func (s *StateStore) Set(ctx context.Context, state, value string) error {
	if s.rdb != nil {
		return s.rdb.Set(ctx, statePrefix+state, value, s.ttl).Err()
	}
	s.mem.Store(state, memItem{
		value:      value,
		expiration: time.Now().Add(s.ttl).Unix(),
	})
	return nil
}

// Get 读取并校验是否过期
func (s *StateStore) Get(ctx context.Context, state string) (string, bool) {
	if s.rdb != nil {
		val, err := s.rdb.Get(ctx, statePrefix+state).Result()
		if err != nil {
			return "", false
		}
		return val, true
	}

	val, ok := s.mem.Load(state)
	if !ok {
		return "", false
	}
	item := val.(memItem)
	if time.Now().Unix() > item.expiration {
		s.mem.Delete(state) // 懒删除
		return "", false
	}
	return item.value, true
}

// Delete 删除（用完即焚）
func (s *StateStore) Delete(ctx context.Context, state string) {
	if s.rdb != nil {
		s.rdb.Del(ctx, statePrefix+state)
		return
	}
	s.mem.Delete(state)
}
