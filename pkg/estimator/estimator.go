// Package estimator 计算车辆维修工时与费用
//
// 系数表由外部维护，缺失或异常的系数一律回退到默认值，不向调用方返回错误。
package estimator

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopeval/shopeval/pkg/logger"
	"github.com/shopeval/shopeval/pkg/model"
)

// Defaults 系数缺失时使用的默认工时
type Defaults struct {
	CleaningHours         float64 `yaml:"cleaning_hours" json:"cleaning_hours"`
	LiningHours           float64 `yaml:"lining_hours" json:"lining_hours"`
	BlastHours            float64 `yaml:"blast_hours" json:"blast_hours"`
	PaintHours            float64 `yaml:"paint_hours" json:"paint_hours"`
	MechanicalHours       float64 `yaml:"mechanical_hours" json:"mechanical_hours"`
	FlareHours            float64 `yaml:"flare_hours" json:"flare_hours"`
	NitrogenPerStageHours float64 `yaml:"nitrogen_per_stage_hours" json:"nitrogen_per_stage_hours"`
	KosherHours           float64 `yaml:"kosher_hours" json:"kosher_hours"`
	AsbestosHours         float64 `yaml:"asbestos_hours" json:"asbestos_hours"`
	CleaningClass         string  `yaml:"cleaning_class" json:"cleaning_class"`
}

// StandardDefaults 返回标准默认值
func StandardDefaults() Defaults {
	return Defaults{
		CleaningHours:         4.0,
		LiningHours:           24.0,
		BlastHours:            8.0,
		PaintHours:            12.0,
		MechanicalHours:       4.0,
		FlareHours:            2.0,
		NitrogenPerStageHours: 1.0,
		KosherHours:           2.0,
		AsbestosHours:         8.0,
		CleaningClass:         "C",
	}
}

// Hours 各工时类别的工时
type Hours struct {
	Cleaning   float64 `json:"cleaning"`
	Flare      float64 `json:"flare"`
	Mechanical float64 `json:"mechanical"`
	Blast      float64 `json:"blast"`
	Lining     float64 `json:"lining"`
	Paint      float64 `json:"paint"`
	Other      float64 `json:"other"`
}

// bucket 返回工时类别对应的字段，未知类别返回 nil
func (h *Hours) bucket(wt model.WorkType) *float64 {
	switch wt {
	case model.WorkCleaning:
		return &h.Cleaning
	case model.WorkFlare:
		return &h.Flare
	case model.WorkMechanical:
		return &h.Mechanical
	case model.WorkBlast:
		return &h.Blast
	case model.WorkLining:
		return &h.Lining
	case model.WorkPaint:
		return &h.Paint
	case model.WorkOther:
		return &h.Other
	}
	return nil
}

// Get 返回某工时类别的工时
func (h Hours) Get(wt model.WorkType) float64 {
	if b := h.bucket(wt); b != nil {
		return *b
	}
	return 0
}

// Total 工时合计
func (h Hours) Total() float64 {
	return h.Cleaning + h.Flare + h.Mechanical + h.Blast + h.Lining + h.Paint + h.Other
}

// TotalHours 工时合计（纯求和，不缓存）
func TotalHours(h Hours) float64 {
	return h.Total()
}

// Recorder 系数回退指标记录
type Recorder interface {
	RecordFactorFallback(factorType, workType string)
}

type noopRecorder struct{}

func (noopRecorder) RecordFactorFallback(string, string) {}

// Estimator 工时估算器
type Estimator struct {
	lookup   FactorLookup
	defaults Defaults
	log      *logger.EngineLogger
	recorder Recorder
}

// Option 估算器选项
type Option func(*Estimator)

// WithDefaults 指定默认值
func WithDefaults(d Defaults) Option {
	return func(e *Estimator) {
		e.defaults = d
	}
}

// WithLogger 指定日志器
func WithLogger(l *zerolog.Logger) Option {
	return func(e *Estimator) {
		e.log = logger.NewEngineLogger(l, "estimator")
	}
}

// WithRecorder 指定指标记录器
func WithRecorder(r Recorder) Option {
	return func(e *Estimator) {
		if r != nil {
			e.recorder = r
		}
	}
}

// New 创建估算器，lookup 为空时所有系数均按缺失处理
func New(lookup FactorLookup, opts ...Option) *Estimator {
	if lookup == nil {
		lookup = NewFactorTable(nil, time.Now())
	}
	e := &Estimator{
		lookup:   lookup,
		defaults: StandardDefaults(),
		recorder: noopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.NewEngineLogger(nil, "estimator")
	}
	return e
}

// Defaults 返回当前默认值
func (e *Estimator) Defaults() Defaults {
	return e.defaults
}

// CalculateWorkHours 计算各类别工时
// 步骤顺序固定，后续步骤依赖前面步骤设置的非零值
func (e *Estimator) CalculateWorkHours(ctx context.Context, car *model.Car, overrides model.Overrides) Hours {
	var h Hours
	if car == nil {
		car = &model.Car{}
	}
	d := e.defaults

	// 1. 按产品代码累加基础工时，跳过非正数记录；无可用记录时只给清洗默认工时
	rows, err := e.lookup.LookupAll(ctx, model.FactorCarType, car.ProductCode)
	if err != nil {
		e.log.FactorLookupError(model.FactorCarType, car.ProductCode, err)
		rows = nil
	}
	usable := 0
	for _, row := range rows {
		b := h.bucket(row.WorkType)
		if b == nil || row.BaseHours <= 0 {
			continue
		}
		*b += row.BaseHours
		usable++
	}
	if usable == 0 {
		e.fallback(model.FactorCarType, car.ProductCode, model.WorkCleaning, d.CleaningHours)
		h.Cleaning += d.CleaningHours
	}

	// 2. 材质系数
	for _, wt := range model.WorkTypes {
		b := h.bucket(wt)
		if *b != 0 {
			*b *= e.multiplier(ctx, model.FactorMaterial, car.MaterialType, wt)
		}
	}

	// 3. 清洗等级系数
	class := d.CleaningClass
	if car.Commodity != nil && car.Commodity.CleaningClass != "" {
		class = car.Commodity.CleaningClass
	}
	h.Cleaning *= e.multiplier(ctx, model.FactorCleaningClass, class, model.WorkCleaning)

	// 4. 内衬：覆盖的内衬类型优先
	if overrides.NewLining || car.HasLining() {
		liningType := overrides.EffectiveLiningType(car)
		h.Lining += e.baseHours(ctx, model.FactorLining, liningType, model.WorkLining, d.LiningHours)
	}

	// 5. 内部喷砂
	if overrides.InteriorBlast {
		if h.Blast == 0 {
			h.Blast = d.BlastHours
		}
		h.Blast *= e.multiplier(ctx, model.FactorMaterial, car.MaterialType, model.WorkBlast)
	}

	// 6. 外部喷漆（覆盖，不累加）
	if overrides.ExteriorPaint {
		h.Paint = d.PaintHours
	}

	// 7. 喷砂或内衬作业需要机械配合
	if (h.Blast != 0 || h.Lining != 0) && h.Mechanical == 0 {
		h.Mechanical = d.MechanicalHours
	}

	// 8. 氮气垫
	if stage := car.NitrogenStage(); stage > 0 {
		h.Flare = d.FlareHours
		perStage := e.baseHours(ctx, model.FactorSpecial, model.SpecialNitrogen, model.WorkOther, d.NitrogenPerStageHours)
		h.Other += perStage * float64(stage)
	}

	// 9. 犹太洁食清洗
	if car.RequiresKosher() || overrides.KosherCleaning {
		h.Cleaning += e.baseHours(ctx, model.FactorSpecial, model.SpecialKosher, model.WorkCleaning, d.KosherHours)
	}

	// 10. 石棉处理
	if car.AsbestosAbatementRequired {
		h.Other += e.baseHours(ctx, model.FactorSpecial, model.SpecialAsbestos, model.WorkOther, d.AsbestosHours)
	}

	// 11. 保留一位小数
	for _, wt := range model.WorkTypes {
		b := h.bucket(wt)
		*b = round1(*b)
	}

	return h
}

// multiplier 查询系数倍率，缺失或非正数时为 1.0
func (e *Estimator) multiplier(ctx context.Context, factorType, factorValue string, wt model.WorkType) float64 {
	f := e.find(ctx, factorType, factorValue, wt)
	if f == nil || f.Multiplier <= 0 {
		e.fallback(factorType, factorValue, wt, 1.0)
		return 1.0
	}
	return f.Multiplier
}

// baseHours 查询基础工时，缺失或非正数时使用默认值
func (e *Estimator) baseHours(ctx context.Context, factorType, factorValue string, wt model.WorkType, def float64) float64 {
	f := e.find(ctx, factorType, factorValue, wt)
	if f == nil || f.BaseHours <= 0 {
		e.fallback(factorType, factorValue, wt, def)
		return def
	}
	return f.BaseHours
}

func (e *Estimator) find(ctx context.Context, factorType, factorValue string, wt model.WorkType) *model.WorkHoursFactor {
	if factorValue == "" {
		return nil
	}
	f, err := e.lookup.Lookup(ctx, factorType, factorValue, wt)
	if err != nil {
		e.log.FactorLookupError(factorType, factorValue, err)
		return nil
	}
	return f
}

func (e *Estimator) fallback(factorType, factorValue string, wt model.WorkType, value float64) {
	e.log.FactorFallback(factorType, factorValue, string(wt), value)
	e.recorder.RecordFactorFallback(factorType, string(wt))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
