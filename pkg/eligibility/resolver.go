package eligibility

import (
	"strings"

	apperrors "github.com/shopeval/shopeval/pkg/errors"
	"github.com/shopeval/shopeval/pkg/model"
)

// accessor 字段取值函数，第二个返回值为 false 表示值缺失
type accessor[T any] func(*T) (interface{}, bool)

func optString[T any](get func(*T) string) accessor[T] {
	return func(v *T) (interface{}, bool) {
		s := get(v)
		if s == "" {
			return nil, false
		}
		return s, true
	}
}

func always[T any](get func(*T) interface{}) accessor[T] {
	return func(v *T) (interface{}, bool) {
		return get(v), true
	}
}

func optInt[T any](get func(*T) *int) accessor[T] {
	return func(v *T) (interface{}, bool) {
		p := get(v)
		if p == nil {
			return nil, false
		}
		return *p, true
	}
}

var carFields = map[string]accessor[model.Car]{
	"car_number":                  optString(func(c *model.Car) string { return c.CarNumber }),
	"car_type":                    optString(func(c *model.Car) string { return c.CarType }),
	"product_code":                optString(func(c *model.Car) string { return c.ProductCode }),
	"material_type":               optString(func(c *model.Car) string { return c.MaterialType }),
	"stencil_class":               optString(func(c *model.Car) string { return c.StencilClass }),
	"lining_type":                 optString(func(c *model.Car) string { return c.LiningType }),
	"commodity_code":              optString(func(c *model.Car) string { return c.CommodityCode }),
	"owner_code":                  optString(func(c *model.Car) string { return c.OwnerCode }),
	"lessee_code":                 optString(func(c *model.Car) string { return c.LesseeCode }),
	"has_asbestos":                always(func(c *model.Car) interface{} { return c.HasAsbestos }),
	"asbestos_abatement_required": always(func(c *model.Car) interface{} { return c.AsbestosAbatementRequired }),
	"nitrogen_pad_stage":          optInt(func(c *model.Car) *int { return c.NitrogenPadStage }),
}

var shopFields = map[string]accessor[model.Shop]{
	"shop_code":            optString(func(s *model.Shop) string { return s.ShopCode }),
	"shop_name":            optString(func(s *model.Shop) string { return s.ShopName }),
	"region":               optString(func(s *model.Shop) string { return s.Location.Region }),
	"city":                 optString(func(s *model.Shop) string { return s.Location.City }),
	"state":                optString(func(s *model.Shop) string { return s.Location.State }),
	"labor_rate":           always(func(s *model.Shop) interface{} { return s.LaborRate }),
	"material_multiplier":  always(func(s *model.Shop) interface{} { return s.MaterialMultiplier }),
	"is_preferred_network": always(func(s *model.Shop) interface{} { return s.IsPreferredNetwork }),
	"is_active":            always(func(s *model.Shop) interface{} { return s.IsActive }),
	"latitude":             always(func(s *model.Shop) interface{} { return s.Location.Latitude }),
	"longitude":            always(func(s *model.Shop) interface{} { return s.Location.Longitude }),
}

var backlogFields = map[string]accessor[model.ShopBacklog]{
	"shop_code":             optString(func(b *model.ShopBacklog) string { return b.ShopCode }),
	"snapshot_date":         optString(func(b *model.ShopBacklog) string { return formatDate(b) }),
	"hours_backlog":         always(func(b *model.ShopBacklog) interface{} { return b.HoursBacklog }),
	"cars_backlog":          always(func(b *model.ShopBacklog) interface{} { return b.CarsBacklog }),
	"cars_en_route_0_6":     always(func(b *model.ShopBacklog) interface{} { return b.CarsEnRoute0To6 }),
	"cars_en_route_7_14":    always(func(b *model.ShopBacklog) interface{} { return b.CarsEnRoute7To14 }),
	"cars_en_route_15_plus": always(func(b *model.ShopBacklog) interface{} { return b.CarsEnRoute15Plus }),
	// 计算字段，不存储
	"cars_en_route_total": always(func(b *model.ShopBacklog) interface{} { return b.CarsEnRouteTotal() }),
}

var overrideFields = map[string]accessor[model.Overrides]{
	"exterior_paint":  always(func(o *model.Overrides) interface{} { return o.ExteriorPaint }),
	"new_lining":      always(func(o *model.Overrides) interface{} { return o.NewLining }),
	"interior_blast":  always(func(o *model.Overrides) interface{} { return o.InteriorBlast }),
	"kosher_cleaning": always(func(o *model.Overrides) interface{} { return o.KosherCleaning }),
	"primary_network": always(func(o *model.Overrides) interface{} { return o.PrimaryNetworkOverride }),
	"lining_type":     optString(func(o *model.Overrides) string { return o.LiningType }),
	"blast_type":      optString(func(o *model.Overrides) string { return o.BlastType }),
}

var commodityFields = map[string]accessor[model.Commodity]{
	"commodity_code":    optString(func(c *model.Commodity) string { return c.Code }),
	"code":              optString(func(c *model.Commodity) string { return c.Code }),
	"description":       optString(func(c *model.Commodity) string { return c.Description }),
	"cleaning_class":    optString(func(c *model.Commodity) string { return c.CleaningClass }),
	"hazmat_class":      optString(func(c *model.Commodity) string { return c.HazmatClass }),
	"recommended_price": always(func(c *model.Commodity) interface{} { return c.RecommendedPrice }),
	"requires_kosher":   always(func(c *model.Commodity) interface{} { return c.RequiresKosher }),
	"requires_nitrogen": always(func(c *model.Commodity) interface{} { return c.RequiresNitrogen }),
	"nitrogen_stage":    optInt(func(c *model.Commodity) *int { return c.NitrogenStage }),
}

func formatDate(b *model.ShopBacklog) string {
	if b.SnapshotDate.IsZero() {
		return ""
	}
	return b.SnapshotDate.Format(model.DateLayout)
}

// lookup 字段名不存在返回错误，对象为空返回缺失
func lookup[T any](fields map[string]accessor[T], obj *T, name, path string) (interface{}, bool, error) {
	get, ok := fields[name]
	if !ok {
		return nil, false, apperrors.UnknownField(path)
	}
	if obj == nil {
		return nil, false, nil
	}
	v, present := get(obj)
	return v, present, nil
}

// Resolve 按点分路径解析上下文字段
// 中间对象为空时返回缺失（不是错误），未知的根或字段返回 UNKNOWN_FIELD 错误
func (ec *EvaluationContext) Resolve(path string) (interface{}, bool, error) {
	parts := strings.Split(path, ".")

	switch {
	case len(parts) == 2 && parts[0] == "car":
		return lookup(carFields, ec.Car, parts[1], path)
	case len(parts) == 3 && parts[0] == "car" && parts[1] == "commodity":
		return lookup(commodityFields, ec.commodity(), parts[2], path)
	case len(parts) == 2 && parts[0] == "commodity":
		return lookup(commodityFields, ec.commodity(), parts[1], path)
	case len(parts) == 2 && parts[0] == "shop":
		return lookup(shopFields, ec.Shop, parts[1], path)
	case len(parts) == 2 && parts[0] == "backlog":
		return lookup(backlogFields, ec.Backlog, parts[1], path)
	case len(parts) == 2 && parts[0] == "overrides":
		return lookup(overrideFields, &ec.Overrides, parts[1], path)
	}

	return nil, false, apperrors.UnknownField(path)
}
