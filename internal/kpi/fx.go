package kpi

import (
	"strings"
	"time"

	"github.com/plantpulse/plantpulse/internal/config"
	"github.com/plantpulse/plantpulse/internal/kpi/cache"
	"github.com/plantpulse/plantpulse/internal/kpi/otd"
	"github.com/plantpulse/plantpulse/internal/kpi/service"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("kpi.service",
	fx.Provide(newPolicy),
	fx.Provide(otd.NewEngine),
	fx.Provide(newTrendCache),
	fx.Provide(service.New),
)

func newPolicy(cfg config.Config) otd.Policy {
	policy := otd.DefaultPolicy()
	if cfg.OTD.DefaultLeadTimeDays > 0 {
		policy.DefaultLeadTime = time.Duration(cfg.OTD.DefaultLeadTimeDays) * 24 * time.Hour
	}
	if cfg.OTD.GraceDays > 0 {
		policy.Grace = time.Duration(cfg.OTD.GraceDays) * 24 * time.Hour
	}
	return policy
}

// newTrendCache returns a nil cache when redis is not configured; the
// service treats that as cache-off.
func newTrendCache(cfg config.Config, log *zap.Logger) *cache.TrendCache {
	addr := strings.TrimSpace(cfg.RedisAddr)
	ttl := time.Duration(cfg.OTD.TrendCacheTTLSeconds) * time.Second
	if addr == "" || ttl <= 0 {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})
	return cache.New(client, ttl, log)
}
