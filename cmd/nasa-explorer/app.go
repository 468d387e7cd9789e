package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/nasa-explorer-client/pkg/cache"
	"github.com/Sternrassler/nasa-explorer-client/pkg/client"
	"github.com/Sternrassler/nasa-explorer-client/pkg/config"
	"github.com/Sternrassler/nasa-explorer-client/pkg/explorer"
	"github.com/Sternrassler/nasa-explorer-client/pkg/logging"
	"github.com/Sternrassler/nasa-explorer-client/pkg/notify"
	"github.com/Sternrassler/nasa-explorer-client/pkg/query"
	"github.com/Sternrassler/nasa-explorer-client/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// app wires the explorer for one process.
type app struct {
	cfg      *config.Config
	redis    *redis.Client
	explorer *explorer.Explorer
	logger   zerolog.Logger
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := logging.NewLogger("cli")

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		redisClient = redis.NewClient(opt)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			redisClient.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Debug().Str("addr", opt.Addr).Msg("Connected to Redis")
	}

	clientCfg := client.DefaultConfig(cfg.APIURL)
	clientCfg.Timeout = cfg.Timeout
	clientCfg.LogRequests = cfg.Development()
	clientCfg.RateLimit = ratelimit.NewTracker(redisClient, logging.NewLogger("ratelimit"))

	api, err := client.New(clientCfg)
	if err != nil {
		if redisClient != nil {
			redisClient.Close()
		}
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	queryLogger := logging.NewLogger("query")
	queryCfg := query.Config{
		StaleTime: cfg.StaleTime,
		GCTime:    cfg.CacheTTL,
		Timeout:   cfg.Timeout,
		Notifier:  notify.NewLogNotifier(logging.NewLogger("notify")),
		Logger:    &queryLogger,
	}
	if redisClient != nil {
		queryCfg.Store = cache.NewManager(redisClient)
	}

	return &app{
		cfg:      cfg,
		redis:    redisClient,
		explorer: explorer.New(api, query.NewClient(queryCfg)),
		logger:   logger,
	}, nil
}

// Close releases the Redis connection.
func (a *app) Close() error {
	if a == nil || a.redis == nil {
		return nil
	}
	return a.redis.Close()
}
