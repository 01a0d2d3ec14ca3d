package cache

import (
	"context"
	"testing"
	"time"
)

func TestStateStoreMemoryMode(t *testing.T) {
	store := NewStateStore(nil, time.Minute)
	ctx := context.Background()

	if err := store.Set(ctx, "state-1", "1|verifier-abc"); err != nil {
		t.Fatalf("写入失败: %v", err)
	}

	val, ok := store.Get(ctx, "state-1")
	if !ok || val != "1|verifier-abc" {
		t.Errorf("读取 = (%s, %v), 期望 (1|verifier-abc, true)", val, ok)
	}

	store.Delete(ctx, "state-1")
	if _, ok := store.Get(ctx, "state-1"); ok {
		t.Error("删除后不应可读")
	}
}

func TestStateStoreMemoryExpiry(t *testing.T) {
	// 1 秒 TTL 的边界用过去时间模拟：直接写入已过期条目
	store := NewStateStore(nil, time.Second)
	store.mem.Store("stale", memItem{value: "v", expiration: time.Now().Add(-time.Minute).Unix()})

	if _, ok := store.Get(context.Background(), "stale"); ok {
		t.Error("过期条目不应可读")
	}
}
