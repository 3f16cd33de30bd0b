package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/shopeval/shopeval/pkg/errors"
	"github.com/shopeval/shopeval/pkg/model"
)

type stubSource struct {
	rules   []model.EligibilityRule
	factors []model.WorkHoursFactor
	err     error
	calls   int
}

func (s *stubSource) ListRules(context.Context) ([]model.EligibilityRule, error) {
	s.calls++
	return s.rules, s.err
}

func (s *stubSource) ListFactors(context.Context, time.Time) ([]model.WorkHoursFactor, error) {
	s.calls++
	return s.factors, s.err
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) RecordCacheLookup(kind, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = make(map[string]int)
	}
	r.counts[kind+"/"+result]++
}

// unreachableClient 指向无监听端口的客户端，所有命令立即失败
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestKeys(t *testing.T) {
	asOf := time.Date(2026, 3, 9, 17, 30, 0, 0, time.UTC)

	assert.Equal(t, "shopeval:config:rules", RulesKey())
	assert.Equal(t, "shopeval:config:factors:2026-03-09", FactorsKey(asOf))
}

func TestConfigCache_RedisUnavailableFallsBack(t *testing.T) {
	client := unreachableClient()
	defer client.Close()

	source := &stubSource{
		rules:   []model.EligibilityRule{{RuleName: "labor rate ceiling", Priority: 1}},
		factors: []model.WorkHoursFactor{{FactorType: model.FactorCarType, FactorValue: "Tank", WorkType: model.WorkOther}},
	}
	rec := &countingRecorder{}
	nop := zerolog.Nop()
	c := NewConfigCache(client, source, time.Minute, WithRecorder(rec), WithLogger(&nop))

	rules, err := c.ListRules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "labor rate ceiling", rules[0].RuleName)

	factors, err := c.ListFactors(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Len(t, factors, 1)

	assert.Equal(t, 2, source.calls)
	assert.Equal(t, 1, rec.counts["rules/error"])
	assert.Equal(t, 1, rec.counts["factors/error"])
}

func TestConfigCache_SourceErrorPropagates(t *testing.T) {
	client := unreachableClient()
	defer client.Close()

	boom := errors.New("db down")
	nop := zerolog.Nop()
	c := NewConfigCache(client, &stubSource{err: boom}, 0, WithLogger(&nop))

	_, err := c.ListRules(context.Background())
	assert.ErrorIs(t, err, boom)

	_, err = c.ListFactors(context.Background(), time.Now())
	assert.ErrorIs(t, err, boom)
}

func TestConfigCache_Invalidate(t *testing.T) {
	client := unreachableClient()
	defer client.Close()

	nop := zerolog.Nop()
	c := NewConfigCache(client, &stubSource{}, time.Minute, WithLogger(&nop))

	err := c.Invalidate(context.Background(), time.Now())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeCacheError, apperrors.GetCode(err))
}
