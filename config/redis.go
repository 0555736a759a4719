package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	RedisClient *redis.Client
	Ctx         = context.Background()
)

// ConnectRedis opens the shared client used by the page-context cache and the
// rate limiter. Search traffic is read-heavy, so the pool is sized above the
// driver default.
func ConnectRedis() {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
		log.Println("⚠️  REDIS_URL not set, using local Redis:", redisURL)
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Fatalf("❌ Invalid REDIS_URL: %v", err)
	}
	opt.PoolSize = 20
	opt.MinIdleConns = 4

	RedisClient = redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(Ctx, 5*time.Second)
	defer cancel()
	res, err := RedisClient.Ping(pingCtx).Result()
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	fmt.Println("✅ Connected to Redis:", res)
}

func CloseRedis() {
	if RedisClient != nil {
		if err := RedisClient.Close(); err != nil {
			log.Printf("⚠️ Error closing Redis client: %v", err)
			return
		}
		log.Println("✅ Redis connection closed")
	}
}
