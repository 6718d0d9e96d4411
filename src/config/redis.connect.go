package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ConnectRedis returns a client in sentinel or standalone mode.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	var rdb *redis.Client

	if cfg.Mode == "sentinel" {
		var sentinels []string
		for _, addr := range strings.Split(cfg.Sentinels, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				sentinels = append(sentinels, addr)
			}
		}
		if len(sentinels) == 0 {
			return nil, fmt.Errorf("redis sentinel mode requires REDIS_SENTINELS")
		}

		rdb = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       cfg.MasterName,
			SentinelAddrs:    sentinels,
			Password:         cfg.Password,
			SentinelPassword: cfg.Password,
			DB:               0,
		})
	} else {
		rdb = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
			Password: cfg.Password,
			DB:       0,
		})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	pong, err := rdb.Ping(pingCtx).Result()
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis (%s mode): %w", cfg.Mode, err)
	}

	log.Info().Str("mode", cfg.Mode).Str("pong", pong).Msg("redis connected")
	return rdb, nil
}
