package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisClient 全局Redis客户端。为nil时设置缓存和调度去重直接退化为查库
var RedisClient *redis.Client

// InitRedis 建立Redis连接并做一次连通性检查
func InitRedis(conf Config) error {
	client := redis.NewClient(&redis.Options{
		Addr:         conf.GetRedisConnString(),
		Password:     conf.RedisPassword,
		DB:           conf.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis连接失败: %w", err)
	}

	RedisClient = client
	return nil
}
