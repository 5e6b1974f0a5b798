package cache

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"
	"github.com/redis/go-redis/v9"
)

var (
	rdb *redis.Client
)

// InitRedis 初始化Redis客户端。redis.address 未配置时跳过，
// 依赖缓存的路径自行退化为直读数据库。
func InitRedis(ctx context.Context) error {
	address := g.Cfg().MustGet(ctx, "redis.address", "").String()
	if address == "" {
		g.Log().Info(ctx, "redis.address not configured, cache disabled")
		return nil
	}
	password := g.Cfg().MustGet(ctx, "redis.password", "").String()
	db := g.Cfg().MustGet(ctx, "redis.db", 0).Int()
	maxRetries := g.Cfg().MustGet(ctx, "redis.maxRetries", 3).Int()
	poolSize := g.Cfg().MustGet(ctx, "redis.poolSize", 10).Int()
	minIdleConns := g.Cfg().MustGet(ctx, "redis.minIdleConns", 2).Int()

	rdb = redis.NewClient(&redis.Options{
		Addr:         address,
		Password:     password,
		DB:           db,
		MaxRetries:   maxRetries,
		PoolSize:     poolSize,
		MinIdleConns: minIdleConns,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		g.Log().Errorf(ctx, "Redis connection failed: %v", err)
		rdb = nil
		return err
	}

	g.Log().Infof(ctx, "Redis initialized successfully: %s, DB: %d", address, db)
	return nil
}

// GetRedisClient 获取Redis客户端；未初始化时返回 nil
func GetRedisClient() *redis.Client {
	return rdb
}

// CloseRedis 关闭Redis连接
func CloseRedis(ctx context.Context) error {
	if rdb == nil {
		return nil
	}
	err := rdb.Close()
	rdb = nil
	return err
}
