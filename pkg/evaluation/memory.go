package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/shopeval/shopeval/pkg/model"
)

// MemorySource 内存配置与候选数据来源，用于批处理文件输入和测试
type MemorySource struct {
	mu         sync.RWMutex
	rules      []model.EligibilityRule
	factors    []model.WorkHoursFactor
	cars       map[string]*model.Car
	candidates []Candidate
}

// NewMemorySource 创建内存数据来源
func NewMemorySource(rules []model.EligibilityRule, factors []model.WorkHoursFactor) *MemorySource {
	return &MemorySource{
		rules:   rules,
		factors: factors,
		cars:    make(map[string]*model.Car),
	}
}

// SetRules 替换规则
func (m *MemorySource) SetRules(rules []model.EligibilityRule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = rules
}

// AddCar 添加车辆
func (m *MemorySource) AddCar(car *model.Car) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cars[car.CarNumber] = car
}

// AddCandidate 添加候选维修厂
func (m *MemorySource) AddCandidate(c Candidate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.candidates = append(m.candidates, c)
}

// ListRules 实现 ConfigSource
func (m *MemorySource) ListRules(_ context.Context) ([]model.EligibilityRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.EligibilityRule(nil), m.rules...), nil
}

// ListFactors 实现 ConfigSource，生效日期过滤由 FactorTable 完成
func (m *MemorySource) ListFactors(_ context.Context, _ time.Time) ([]model.WorkHoursFactor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]model.WorkHoursFactor(nil), m.factors...), nil
}

// GetCar 实现 CandidateSource，不存在时返回 nil
func (m *MemorySource) GetCar(_ context.Context, carNumber string) (*model.Car, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cars[carNumber], nil
}

// ListCandidates 实现 CandidateSource
func (m *MemorySource) ListCandidates(_ context.Context, commodityCode string, shopCodes []string) ([]Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := make(map[string]bool, len(shopCodes))
	for _, code := range shopCodes {
		wanted[code] = true
	}

	var result []Candidate
	for _, c := range m.candidates {
		if len(wanted) > 0 && !wanted[c.Shop.ShopCode] {
			continue
		}
		if len(wanted) == 0 && !c.Shop.IsActive {
			continue
		}
		result = append(result, filterRestrictions(c, commodityCode))
	}
	return result, nil
}

// filterRestrictions 只保留与车辆货品相关的限制记录
func filterRestrictions(c Candidate, commodityCode string) Candidate {
	var kept []model.CommodityRestriction
	for _, r := range c.Restrictions {
		if r.CommodityCode == commodityCode {
			kept = append(kept, r)
		}
	}
	c.Restrictions = kept
	return c
}

// Fixture 批处理输入文件格式
type Fixture struct {
	Rules      []model.EligibilityRule `json:"rules"`
	Factors    []model.WorkHoursFactor `json:"factors"`
	Cars       []model.Car             `json:"cars"`
	Candidates []Candidate             `json:"candidates"`
}

// LoadFixture 从 JSON 输入构建内存数据来源
func LoadFixture(r io.Reader) (*MemorySource, error) {
	var f Fixture
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("解析输入文件失败: %w", err)
	}

	m := NewMemorySource(f.Rules, f.Factors)
	for i := range f.Cars {
		m.AddCar(&f.Cars[i])
	}
	for _, c := range f.Candidates {
		m.AddCandidate(c)
	}
	return m, nil
}
