package repository

import (
	"context"
	"time"

	"github.com/shopeval/shopeval/pkg/evaluation"
	"github.com/shopeval/shopeval/pkg/model"
)

// Store 聚合各仓储，作为评估服务的数据库数据来源
type Store struct {
	Rules   *RuleRepository
	Factors *FactorRepository
	Shops   *ShopRepository
	Cars    *CarRepository
}

var (
	_ evaluation.ConfigSource    = (*Store)(nil)
	_ evaluation.CandidateSource = (*Store)(nil)
)

// NewStore 创建仓储聚合
func NewStore(db DB) *Store {
	return &Store{
		Rules:   NewRuleRepository(db),
		Factors: NewFactorRepository(db),
		Shops:   NewShopRepository(db),
		Cars:    NewCarRepository(db),
	}
}

// ListRules 实现 evaluation.ConfigSource
func (s *Store) ListRules(ctx context.Context) ([]model.EligibilityRule, error) {
	return s.Rules.ListAll(ctx)
}

// ListFactors 实现 evaluation.ConfigSource
func (s *Store) ListFactors(ctx context.Context, asOf time.Time) ([]model.WorkHoursFactor, error) {
	return s.Factors.ListEffective(ctx, asOf)
}

// GetCar 实现 evaluation.CandidateSource
func (s *Store) GetCar(ctx context.Context, carNumber string) (*model.Car, error) {
	return s.Cars.GetByNumber(ctx, carNumber)
}

// ListCandidates 实现 evaluation.CandidateSource
// 能力、限制、积压按维修厂代码批量查询后组装
func (s *Store) ListCandidates(ctx context.Context, commodityCode string, shopCodes []string) ([]evaluation.Candidate, error) {
	filter := DefaultShopFilter()
	if len(shopCodes) > 0 {
		filter = filter.WithCodes(shopCodes)
		filter.ActiveOnly = false
		if len(shopCodes) > filter.Limit {
			filter.Limit = len(shopCodes)
		}
	}

	shops, err := s.Shops.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(shops) == 0 {
		return nil, nil
	}

	codes := make([]string, len(shops))
	for i := range shops {
		codes[i] = shops[i].ShopCode
	}

	caps, err := s.Shops.Capabilities(ctx, codes)
	if err != nil {
		return nil, err
	}
	restrictions, err := s.Shops.Restrictions(ctx, commodityCode, codes)
	if err != nil {
		return nil, err
	}
	backlogs, err := s.Shops.LatestBacklogs(ctx, codes)
	if err != nil {
		return nil, err
	}

	candidates := make([]evaluation.Candidate, 0, len(shops))
	for _, shop := range shops {
		candidates = append(candidates, evaluation.Candidate{
			Shop:         shop,
			Capabilities: caps[shop.ShopCode],
			Restrictions: restrictions[shop.ShopCode],
			Backlog:      backlogs[shop.ShopCode],
		})
	}
	return candidates, nil
}
