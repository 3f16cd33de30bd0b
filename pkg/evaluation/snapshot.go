// Package evaluation 组装评估上下文，对多个候选维修厂并行执行资格评估与工时估算
package evaluation

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "github.com/shopeval/shopeval/pkg/errors"
	"github.com/shopeval/shopeval/pkg/eligibility"
	"github.com/shopeval/shopeval/pkg/estimator"
	"github.com/shopeval/shopeval/pkg/logger"
	"github.com/shopeval/shopeval/pkg/model"
)

// ConfigSource 规则与工时系数配置来源
type ConfigSource interface {
	ListRules(ctx context.Context) ([]model.EligibilityRule, error)
	ListFactors(ctx context.Context, asOf time.Time) ([]model.WorkHoursFactor, error)
}

// Snapshot 一致的配置快照，单次评估只使用一个快照
type Snapshot struct {
	Version   string
	LoadedAt  time.Time
	Evaluator *eligibility.Evaluator
	Estimator *estimator.Estimator
	Factors   *estimator.FactorTable
}

// RefreshRecorder 配置刷新指标记录
type RefreshRecorder interface {
	RecordConfigRefresh(success bool, rules, factors int)
}

// SnapshotStore 配置快照存储，刷新时原子替换
type SnapshotStore struct {
	source   ConfigSource
	current  atomic.Pointer[Snapshot]
	evalOpts []eligibility.Option
	estOpts  []estimator.Option
	recorder RefreshRecorder
	log      *zerolog.Logger
	now      func() time.Time
}

// StoreOption 快照存储选项
type StoreOption func(*SnapshotStore)

// WithEvaluatorOptions 构建评估器时使用的选项
func WithEvaluatorOptions(opts ...eligibility.Option) StoreOption {
	return func(s *SnapshotStore) {
		s.evalOpts = append(s.evalOpts, opts...)
	}
}

// WithEstimatorOptions 构建估算器时使用的选项
func WithEstimatorOptions(opts ...estimator.Option) StoreOption {
	return func(s *SnapshotStore) {
		s.estOpts = append(s.estOpts, opts...)
	}
}

// WithRefreshRecorder 指定刷新指标记录器
func WithRefreshRecorder(r RefreshRecorder) StoreOption {
	return func(s *SnapshotStore) {
		s.recorder = r
	}
}

// WithStoreLogger 指定日志器
func WithStoreLogger(l *zerolog.Logger) StoreOption {
	return func(s *SnapshotStore) {
		s.log = l
	}
}

// WithStoreClock 指定时钟
func WithStoreClock(now func() time.Time) StoreOption {
	return func(s *SnapshotStore) {
		s.now = now
	}
}

// NewSnapshotStore 创建快照存储，需调用 Refresh 加载首个快照
func NewSnapshotStore(source ConfigSource, opts ...StoreOption) *SnapshotStore {
	s := &SnapshotStore{
		source: source,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get()
	}
	return s
}

// Refresh 重新加载规则与系数，失败时保留上一个快照
func (s *SnapshotStore) Refresh(ctx context.Context) error {
	asOf := s.now()

	rules, err := s.source.ListRules(ctx)
	if err != nil {
		s.recordRefresh(false, 0, 0)
		return apperrors.ConfigUnavailable(fmt.Errorf("加载资格规则: %w", err))
	}
	factors, err := s.source.ListFactors(ctx, asOf)
	if err != nil {
		s.recordRefresh(false, 0, 0)
		return apperrors.ConfigUnavailable(fmt.Errorf("加载工时系数: %w", err))
	}

	table := estimator.NewFactorTable(factors, asOf)
	snap := &Snapshot{
		Version:   uuid.NewString(),
		LoadedAt:  asOf,
		Evaluator: eligibility.NewEvaluator(rules, s.evalOpts...),
		Estimator: estimator.New(table, s.estOpts...),
		Factors:   table,
	}
	s.current.Store(snap)
	s.recordRefresh(true, len(rules), table.Len())

	s.log.Info().
		Str("version", snap.Version).
		Int("rules", len(rules)).
		Int("factors", table.Len()).
		Msg("配置快照已刷新")

	return nil
}

// Current 返回当前快照，尚未加载时返回 nil
func (s *SnapshotStore) Current() *Snapshot {
	return s.current.Load()
}

// Run 按固定间隔刷新，直到 ctx 取消
func (s *SnapshotStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.log.Warn().Err(err).Msg("配置快照刷新失败，继续使用旧快照")
			}
		}
	}
}

func (s *SnapshotStore) recordRefresh(success bool, rules, factors int) {
	if s.recorder != nil {
		s.recorder.RecordConfigRefresh(success, rules, factors)
	}
}
