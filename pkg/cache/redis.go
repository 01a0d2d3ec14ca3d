package cache

import (
	"context"
	"log"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

var (
	rdb    *redis.Client
	locker *redislock.Client
)

// InitRedis 初始化 Redis 连接与分布式锁
// addr 为空或连接失败时不中断启动，相关功能退化为单机模式
func InitRedis(addr, password string, db int) {
	if addr == "" {
		log.Println("未配置 Redis，同步锁与授权缓存退化为进程内模式")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("警告: Redis 连接失败: %v，退化为进程内模式", err)
		return
	}

	rdb = client
	locker = redislock.New(client)
	log.Println("Redis 连接成功")
}

// GetClient 获取 Redis 客户端，未初始化时返回 nil
func GetClient() *redis.Client {
	return rdb
}

// GetLocker 获取分布式锁客户端，未初始化时返回 nil
func GetLocker() *redislock.Client {
	return locker
}
