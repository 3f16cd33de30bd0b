// Package cache 提供基于 Redis 的配置缓存
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	apperrors "github.com/shopeval/shopeval/pkg/errors"
	"github.com/shopeval/shopeval/pkg/evaluation"
	"github.com/shopeval/shopeval/pkg/logger"
	"github.com/shopeval/shopeval/pkg/model"
)

const keyPrefix = "shopeval:config"

// 缓存查询结果
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// Recorder 缓存指标记录
type Recorder interface {
	RecordCacheLookup(kind, result string)
}

type noopRecorder struct{}

func (noopRecorder) RecordCacheLookup(string, string) {}

// ConfigCache 包装配置来源，规则与系数以 JSON 形式缓存在 Redis
// Redis 不可用时直接读取底层来源，不影响评估
type ConfigCache struct {
	redis    *redis.Client
	source   evaluation.ConfigSource
	ttl      time.Duration
	recorder Recorder
	log      *zerolog.Logger
}

var _ evaluation.ConfigSource = (*ConfigCache)(nil)

// Option 配置缓存选项
type Option func(*ConfigCache)

// WithRecorder 设置指标记录器
func WithRecorder(r Recorder) Option {
	return func(c *ConfigCache) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithLogger 设置日志
func WithLogger(l *zerolog.Logger) Option {
	return func(c *ConfigCache) {
		if l != nil {
			c.log = l
		}
	}
}

// NewConfigCache 创建配置缓存，ttl <= 0 时不写入缓存
func NewConfigCache(client *redis.Client, source evaluation.ConfigSource, ttl time.Duration, opts ...Option) *ConfigCache {
	c := &ConfigCache{
		redis:    client,
		source:   source,
		ttl:      ttl,
		recorder: noopRecorder{},
		log:      logger.Get(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RulesKey 规则缓存键
func RulesKey() string {
	return keyPrefix + ":rules"
}

// FactorsKey 系数缓存键（按生效日期区分）
func FactorsKey(asOf time.Time) string {
	return fmt.Sprintf("%s:factors:%s", keyPrefix, model.DateOnly(asOf).Format(model.DateLayout))
}

// ListRules 实现 evaluation.ConfigSource
func (c *ConfigCache) ListRules(ctx context.Context) ([]model.EligibilityRule, error) {
	var rules []model.EligibilityRule
	if c.get(ctx, "rules", RulesKey(), &rules) {
		return rules, nil
	}

	rules, err := c.source.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, RulesKey(), rules)
	return rules, nil
}

// ListFactors 实现 evaluation.ConfigSource
func (c *ConfigCache) ListFactors(ctx context.Context, asOf time.Time) ([]model.WorkHoursFactor, error) {
	key := FactorsKey(asOf)

	var factors []model.WorkHoursFactor
	if c.get(ctx, "factors", key, &factors) {
		return factors, nil
	}

	factors, err := c.source.ListFactors(ctx, asOf)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, factors)
	return factors, nil
}

// Invalidate 删除规则与指定日期的系数缓存
func (c *ConfigCache) Invalidate(ctx context.Context, asOf time.Time) error {
	if err := c.redis.Del(ctx, RulesKey(), FactorsKey(asOf)).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeCacheError, "删除配置缓存失败")
	}
	return nil
}

// get 读取缓存，未命中或出错时返回 false
func (c *ConfigCache) get(ctx context.Context, kind, key string, dest interface{}) bool {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.recorder.RecordCacheLookup(kind, ResultMiss)
			return false
		}
		c.recorder.RecordCacheLookup(kind, ResultError)
		c.log.Warn().Err(err).Str("key", key).Msg("读取配置缓存失败")
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		c.recorder.RecordCacheLookup(kind, ResultError)
		c.log.Warn().Err(err).Str("key", key).Msg("配置缓存内容无效")
		return false
	}

	c.recorder.RecordCacheLookup(kind, ResultHit)
	return true
}

func (c *ConfigCache) set(ctx context.Context, key string, value interface{}) {
	if c.ttl <= 0 {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("序列化配置缓存失败")
		return
	}

	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("写入配置缓存失败")
	}
}
