package estimator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopeval/shopeval/pkg/model"
)

var asOf = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func factor(factorType, value string, wt model.WorkType, base, mult float64) model.WorkHoursFactor {
	return model.WorkHoursFactor{
		FactorType:    factorType,
		FactorValue:   value,
		WorkType:      wt,
		EffectiveDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseHours:     base,
		Multiplier:    mult,
	}
}

func newEstimator(factors ...model.WorkHoursFactor) *Estimator {
	nop := zerolog.Nop()
	return New(NewFactorTable(factors, asOf), WithLogger(&nop))
}

func intPtr(i int) *int { return &i }

func TestCalculateWorkHours_NoFactorsFallback(t *testing.T) {
	e := newEstimator()
	car := &model.Car{ProductCode: "UNKNOWN", MaterialType: "Carbon Steel"}

	h := e.CalculateWorkHours(context.Background(), car, model.Overrides{})

	assert.Equal(t, 4.0, h.Cleaning)
	assert.Zero(t, h.Flare)
	assert.Zero(t, h.Mechanical)
	assert.Zero(t, h.Blast)
	assert.Zero(t, h.Lining)
	assert.Zero(t, h.Paint)
	assert.Zero(t, h.Other)
}

func TestCalculateWorkHours_AsbestosKosherNitrogen(t *testing.T) {
	e := newEstimator()
	car := &model.Car{
		ProductCode:               "T105",
		MaterialType:              "Carbon Steel",
		HasAsbestos:               true,
		AsbestosAbatementRequired: true,
		NitrogenPadStage:          intPtr(3),
		CommodityCode:             "SUGAR",
		Commodity:                 &model.Commodity{Code: "SUGAR", RequiresKosher: true},
	}

	h := e.CalculateWorkHours(context.Background(), car, model.Overrides{InteriorBlast: true, ExteriorPaint: true})

	d := StandardDefaults()
	assert.Greater(t, h.Mechanical, 0.0)
	assert.Greater(t, h.Blast, 0.0)
	assert.Equal(t, d.PaintHours, h.Paint)
	assert.Equal(t, d.FlareHours, h.Flare)
	assert.Equal(t, 11.0, h.Other)
	assert.Equal(t, d.CleaningHours+d.KosherHours, h.Cleaning)
}

func TestCalculateWorkHours_Idempotent(t *testing.T) {
	e := newEstimator(
		factor(model.FactorCarType, "T105", model.WorkCleaning, 6.3, 0),
		factor(model.FactorCarType, "T105", model.WorkMechanical, 2.2, 0),
		factor(model.FactorMaterial, "Stainless", model.WorkCleaning, 0, 1.15),
	)
	car := &model.Car{ProductCode: "T105", MaterialType: "Stainless", NitrogenPadStage: intPtr(2)}
	ov := model.Overrides{NewLining: true, LiningType: "Epoxy", InteriorBlast: true}

	first := e.CalculateWorkHours(context.Background(), car, ov)
	second := e.CalculateWorkHours(context.Background(), car, ov)

	assert.Equal(t, first, second)
}

func TestCalculateWorkHours_FactorsApplied(t *testing.T) {
	e := newEstimator(
		factor(model.FactorCarType, "T105", model.WorkCleaning, 6, 0),
		factor(model.FactorCarType, "T105", model.WorkMechanical, 3, 0),
		factor(model.FactorCarType, "T105", model.WorkBlast, 5, 0),
		factor(model.FactorMaterial, "Stainless", model.WorkCleaning, 0, 1.5),
		factor(model.FactorMaterial, "Stainless", model.WorkBlast, 0, 2),
		factor(model.FactorCleaningClass, "A", model.WorkCleaning, 0, 1.2),
		factor(model.FactorLining, "Epoxy", model.WorkLining, 30, 0),
		factor(model.FactorLining, "Phenolic", model.WorkLining, 40, 0),
		factor(model.FactorSpecial, model.SpecialNitrogen, model.WorkOther, 1.5, 0),
	)
	car := &model.Car{
		ProductCode:      "T105",
		MaterialType:     "Stainless",
		LiningType:       "Phenolic",
		NitrogenPadStage: intPtr(2),
		Commodity:        &model.Commodity{Code: "CORN", CleaningClass: "A"},
	}

	h := e.CalculateWorkHours(context.Background(), car, model.Overrides{LiningType: "Epoxy", InteriorBlast: true})

	// 6 × 1.5 × 1.2
	assert.Equal(t, 10.8, h.Cleaning)
	// 机械无材质系数，已有工时不被覆盖
	assert.Equal(t, 3.0, h.Mechanical)
	// 5 × 2 (步骤2) × 2 (步骤5)
	assert.Equal(t, 20.0, h.Blast)
	assert.Equal(t, 30.0, h.Lining)
	assert.Equal(t, 2.0, h.Flare)
	assert.Equal(t, 3.0, h.Other)
	assert.Zero(t, h.Paint)
}

func TestCalculateWorkHours_LiningDefaultAndMechanicalFloor(t *testing.T) {
	e := newEstimator(factor(model.FactorCarType, "H100", model.WorkCleaning, 2, 0))
	car := &model.Car{ProductCode: "H100", MaterialType: "Aluminum"}

	h := e.CalculateWorkHours(context.Background(), car, model.Overrides{NewLining: true})

	assert.Equal(t, 2.0, h.Cleaning)
	assert.Equal(t, StandardDefaults().LiningHours, h.Lining)
	assert.Equal(t, StandardDefaults().MechanicalHours, h.Mechanical)
}

func TestCalculateWorkHours_PaintOverwrites(t *testing.T) {
	e := newEstimator(factor(model.FactorCarType, "H100", model.WorkPaint, 30, 0))
	car := &model.Car{ProductCode: "H100"}

	h := e.CalculateWorkHours(context.Background(), car, model.Overrides{ExteriorPaint: true})

	assert.Equal(t, 12.0, h.Paint)
	assert.Zero(t, h.Cleaning, "product code rows exist, so no cleaning fallback")
}

func TestCalculateWorkHours_Rounding(t *testing.T) {
	e := newEstimator(
		factor(model.FactorCarType, "T105", model.WorkCleaning, 3.33, 0),
		factor(model.FactorMaterial, "Stainless", model.WorkCleaning, 0, 1.07),
	)

	h := e.CalculateWorkHours(context.Background(), &model.Car{ProductCode: "T105", MaterialType: "Stainless"}, model.Overrides{})

	// 3.33 × 1.07 = 3.5631
	assert.Equal(t, 3.6, h.Cleaning)
}

func TestCalculateWorkHours_CustomDefaults(t *testing.T) {
	d := StandardDefaults()
	d.CleaningHours = 7.5
	d.PaintHours = 20
	nop := zerolog.Nop()
	e := New(nil, WithDefaults(d), WithLogger(&nop))

	h := e.CalculateWorkHours(context.Background(), &model.Car{}, model.Overrides{ExteriorPaint: true})

	assert.Equal(t, 7.5, h.Cleaning)
	assert.Equal(t, 20.0, h.Paint)
	assert.Equal(t, d, e.Defaults())
}

type failingLookup struct{}

func (failingLookup) Lookup(context.Context, string, string, model.WorkType) (*model.WorkHoursFactor, error) {
	return nil, errors.New("connection refused")
}

func (failingLookup) LookupAll(context.Context, string, string) ([]model.WorkHoursFactor, error) {
	return nil, errors.New("connection refused")
}

type fallbackCounter struct {
	count int
}

func (c *fallbackCounter) RecordFactorFallback(string, string) { c.count++ }

func TestCalculateWorkHours_LookupErrorsFallBack(t *testing.T) {
	nop := zerolog.Nop()
	rec := &fallbackCounter{}
	e := New(failingLookup{}, WithLogger(&nop), WithRecorder(rec))
	car := &model.Car{ProductCode: "T105", MaterialType: "Stainless", AsbestosAbatementRequired: true}

	h := e.CalculateWorkHours(context.Background(), car, model.Overrides{KosherCleaning: true})

	assert.Equal(t, 6.0, h.Cleaning)
	assert.Equal(t, 8.0, h.Other)
	assert.Positive(t, rec.count)
}

func TestCalculateWorkHours_NonPositiveBaseRowsIgnored(t *testing.T) {
	tests := []struct {
		name       string
		factors    []model.WorkHoursFactor
		overrides  model.Overrides
		cleaning   float64
		mechanical float64
		blast      float64
	}{
		{
			name: "全部为负数回退清洗默认值",
			factors: []model.WorkHoursFactor{
				factor(model.FactorCarType, "T105", model.WorkCleaning, -5, 0),
				factor(model.FactorCarType, "T105", model.WorkMechanical, -3, 0),
			},
			cleaning: 4,
		},
		{
			name: "零值记录跳过",
			factors: []model.WorkHoursFactor{
				factor(model.FactorCarType, "T105", model.WorkCleaning, 0, 0),
				factor(model.FactorCarType, "T105", model.WorkMechanical, 3, 0),
			},
			mechanical: 3,
		},
		{
			name: "负数机械工时不阻止机械下限",
			factors: []model.WorkHoursFactor{
				factor(model.FactorCarType, "T105", model.WorkMechanical, -3, 0),
			},
			overrides:  model.Overrides{InteriorBlast: true},
			cleaning:   4,
			mechanical: 4,
			blast:      8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEstimator(tt.factors...)
			car := &model.Car{ProductCode: "T105", MaterialType: "Carbon Steel"}

			h := e.CalculateWorkHours(context.Background(), car, tt.overrides)

			assert.Equal(t, tt.cleaning, h.Cleaning)
			assert.Equal(t, tt.mechanical, h.Mechanical)
			assert.Equal(t, tt.blast, h.Blast)
			for _, wt := range model.WorkTypes {
				assert.GreaterOrEqual(t, h.Get(wt), 0.0, string(wt))
			}

			cost := EstimateCost(h, &model.Shop{LaborRate: 95, MaterialMultiplier: 1.1})
			assert.False(t, cost.TotalCost.IsNegative())
		})
	}
}

func TestHoursTotal(t *testing.T) {
	h := Hours{Cleaning: 6, Flare: 2, Mechanical: 4, Blast: 8, Lining: 0, Paint: 12, Other: 11}

	assert.Equal(t, 43.0, h.Total())
	assert.Equal(t, h.Total(), TotalHours(h))
	assert.Equal(t, 8.0, h.Get(model.WorkBlast))
	assert.Zero(t, h.Get(model.WorkType("welding")))
}

func TestFactorTable_LatestEffective(t *testing.T) {
	old := factor(model.FactorLining, "Epoxy", model.WorkLining, 20, 0)
	newer := factor(model.FactorLining, "Epoxy", model.WorkLining, 26, 0)
	newer.EffectiveDate = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	future := factor(model.FactorLining, "Epoxy", model.WorkLining, 99, 0)
	future.EffectiveDate = time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	table := NewFactorTable([]model.WorkHoursFactor{newer, future, old}, asOf)

	f, err := table.Lookup(context.Background(), model.FactorLining, "Epoxy", model.WorkLining)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Equal(t, 26.0, f.BaseHours)
	assert.Equal(t, 1, table.Len())

	missing, err := table.Lookup(context.Background(), model.FactorLining, "Rubber", model.WorkLining)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFactorTable_LocalAsOf(t *testing.T) {
	tomorrow := factor(model.FactorLining, "Epoxy", model.WorkLining, 30, 0)
	tomorrow.EffectiveDate = time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)

	// 纽约时间 6 月 1 日晚上
	evening := time.Date(2026, 6, 1, 21, 0, 0, 0, time.FixedZone("EDT", -4*3600))
	table := NewFactorTable([]model.WorkHoursFactor{tomorrow}, evening)

	assert.Zero(t, table.Len())
	assert.Equal(t, "2026-06-01", table.AsOf().Format(model.DateLayout))
}

func TestFactorTable_LookupAllOrdered(t *testing.T) {
	table := NewFactorTable([]model.WorkHoursFactor{
		factor(model.FactorCarType, "T105", model.WorkOther, 1, 0),
		factor(model.FactorCarType, "T105", model.WorkCleaning, 6, 0),
		factor(model.FactorCarType, "T106", model.WorkCleaning, 9, 0),
	}, asOf)

	rows, err := table.LookupAll(context.Background(), model.FactorCarType, "T105")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, model.WorkCleaning, rows[0].WorkType)
	assert.Equal(t, model.WorkOther, rows[1].WorkType)
}
