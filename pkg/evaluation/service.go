package evaluation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/shopeval/shopeval/pkg/errors"
	"github.com/shopeval/shopeval/pkg/eligibility"
	"github.com/shopeval/shopeval/pkg/estimator"
	"github.com/shopeval/shopeval/pkg/logger"
	"github.com/shopeval/shopeval/pkg/model"
)

// Candidate 候选维修厂及其评估所需数据
type Candidate struct {
	Shop         model.Shop                   `json:"shop"`
	Capabilities []model.ShopCapability       `json:"capabilities,omitempty"`
	Restrictions []model.CommodityRestriction `json:"restrictions,omitempty"`
	Backlog      *model.ShopBacklog           `json:"backlog,omitempty"`
}

// CandidateSource 车辆与候选维修厂数据来源
type CandidateSource interface {
	GetCar(ctx context.Context, carNumber string) (*model.Car, error)
	// ListCandidates shopCodes 为空时返回全部启用的维修厂
	ListCandidates(ctx context.Context, commodityCode string, shopCodes []string) ([]Candidate, error)
}

// ShopResult 单个维修厂的评估结果
type ShopResult struct {
	ShopCode         string                 `json:"shop_code"`
	ShopName         string                 `json:"shop_name"`
	Eligible         bool                   `json:"eligible"`
	PreferredNetwork bool                   `json:"preferred_network"`
	FailedRules      []model.FailedRule     `json:"failed_rules"`
	Hours            estimator.Hours        `json:"hours"`
	TotalHours       float64                `json:"total_hours"`
	Cost             estimator.CostEstimate `json:"cost"`
}

// BatchResult 单车多厂评估结果
type BatchResult struct {
	CarNumber       string       `json:"car_number"`
	SnapshotVersion string       `json:"snapshot_version"`
	EvaluatedAt     time.Time    `json:"evaluated_at"`
	Results         []ShopResult `json:"results"`
	Eligible        int          `json:"eligible"`
}

// Recorder 批量评估指标记录
type Recorder interface {
	RecordShopEvaluation(eligible bool)
	RecordBatch(shops int, duration time.Duration)
}

// Service 选厂评估服务
type Service struct {
	store    *SnapshotStore
	source   CandidateSource
	workers  int
	recorder Recorder
	log      *logger.EngineLogger
	now      func() time.Time
}

// ServiceOption 服务选项
type ServiceOption func(*Service)

// WithWorkers 并行评估的最大协程数
func WithWorkers(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithRecorder 指定指标记录器
func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithLogger 指定日志器
func WithLogger(l *zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = logger.NewEngineLogger(l, "evaluation")
	}
}

// WithClock 指定时钟
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService 创建评估服务，source 可为空（此时只能调用 EvaluateShops）
func NewService(store *SnapshotStore, source CandidateSource, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		source:  source,
		workers: 8,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.NewEngineLogger(nil, "evaluation")
	}
	return s
}

// EvaluateCar 加载车辆与候选维修厂后评估
func (s *Service) EvaluateCar(ctx context.Context, carNumber string, shopCodes []string, overrides model.Overrides) (*BatchResult, error) {
	if s.source == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "未配置候选数据来源")
	}

	car, err := s.source.GetCar(ctx, carNumber)
	if err != nil {
		return nil, err
	}
	if car == nil {
		return nil, apperrors.NotFound("车辆", carNumber)
	}

	candidates, err := s.source.ListCandidates(ctx, car.CommodityCode, shopCodes)
	if err != nil {
		return nil, err
	}

	return s.EvaluateShops(ctx, car, overrides, candidates)
}

// EvaluateShops 对全部候选维修厂并行评估
// 所有评估使用同一个配置快照；ctx 取消时返回错误
func (s *Service) EvaluateShops(ctx context.Context, car *model.Car, overrides model.Overrides, candidates []Candidate) (*BatchResult, error) {
	if car == nil {
		return nil, apperrors.InvalidInput("car", "不能为空")
	}
	snap := s.store.Current()
	if snap == nil {
		return nil, apperrors.New(apperrors.CodeConfigUnavailable, "配置快照尚未加载")
	}

	start := time.Now()
	evaluatedAt := s.now()
	results := make([]ShopResult, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range candidates {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.evaluateOne(gctx, snap, car, overrides, &candidates[i], evaluatedAt)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("评估被取消: %w", err)
	}

	SortResults(results, overrides.PrimaryNetworkOverride)

	batch := &BatchResult{
		CarNumber:       car.CarNumber,
		SnapshotVersion: snap.Version,
		EvaluatedAt:     evaluatedAt,
		Results:         results,
	}
	for _, r := range results {
		if r.Eligible {
			batch.Eligible++
		}
	}

	duration := time.Since(start)
	if s.recorder != nil {
		s.recorder.RecordBatch(len(results), duration)
	}
	s.log.BatchComplete(car.CarNumber, len(results), batch.Eligible, duration)

	return batch, nil
}

func (s *Service) evaluateOne(ctx context.Context, snap *Snapshot, car *model.Car, overrides model.Overrides, c *Candidate, asOf time.Time) ShopResult {
	start := time.Now()

	ec := &eligibility.EvaluationContext{
		Car:          car,
		Shop:         &c.Shop,
		Capabilities: c.Capabilities,
		Restrictions: c.Restrictions,
		Overrides:    overrides,
		Backlog:      c.Backlog,
		AsOf:         asOf,
	}
	verdict := snap.Evaluator.Evaluate(ec)

	hours := snap.Estimator.CalculateWorkHours(ctx, car, overrides)
	cost := estimator.EstimateCost(hours, &c.Shop)

	if s.recorder != nil {
		s.recorder.RecordShopEvaluation(verdict.Passed)
	}
	s.log.EvaluationComplete(car.CarNumber, c.Shop.ShopCode, verdict.Passed, len(verdict.FailedRules), time.Since(start))

	return ShopResult{
		ShopCode:         c.Shop.ShopCode,
		ShopName:         c.Shop.ShopName,
		Eligible:         verdict.Passed,
		PreferredNetwork: c.Shop.IsPreferredNetwork,
		FailedRules:      verdict.FailedRules,
		Hours:            hours,
		TotalHours:       estimator.TotalHours(hours),
		Cost:             cost,
	}
}

// SortResults 结果排序：合格在前；未指定主网络覆盖时优选网络在前；总费用低在前；最后按维修厂代码
func SortResults(results []ShopResult, primaryNetworkOverride bool) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Eligible != b.Eligible {
			return a.Eligible
		}
		if !primaryNetworkOverride && a.PreferredNetwork != b.PreferredNetwork {
			return a.PreferredNetwork
		}
		if c := a.Cost.TotalCost.Cmp(b.Cost.TotalCost); c != 0 {
			return c < 0
		}
		return a.ShopCode < b.ShopCode
	})
}
