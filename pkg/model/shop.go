package model

import (
	"time"
)

// CapabilityType 能力类型（开放集合，以下为常用值）
type CapabilityType = string

const (
	CapabilityCarType       CapabilityType = "car_type"
	CapabilityMaterial      CapabilityType = "material"
	CapabilityLining        CapabilityType = "lining"
	CapabilityCertification CapabilityType = "certification"
	CapabilityNitrogenStage CapabilityType = "nitrogen_stage"
	CapabilityService       CapabilityType = "service"
	CapabilitySpecial       CapabilityType = "special"
)

// 货品限制代码
const (
	RestrictionUnrestricted = "Y"   // 不限制
	RestrictionBlocked      = "N"   // 禁止
	RestrictionReview1      = "RC1" // 需审核（一级）
	RestrictionReview2      = "RC2" // 需审核（二级）
	RestrictionReview3      = "RC3" // 需审核（三级）
)

// Shop 维修厂
type Shop struct {
	BaseModel
	ShopCode           string   `json:"shop_code" db:"shop_code"`
	ShopName           string   `json:"shop_name" db:"shop_name"`
	LaborRate          float64  `json:"labor_rate" db:"labor_rate"`
	MaterialMultiplier float64  `json:"material_multiplier" db:"material_multiplier"`
	IsPreferredNetwork bool     `json:"is_preferred_network" db:"is_preferred_network"`
	IsActive           bool     `json:"is_active" db:"is_active"`
	Location           Location `json:"location" db:"-"`
}

// ShopCapability 维修厂能力
type ShopCapability struct {
	BaseModel
	ShopCode        string     `json:"shop_code" db:"shop_code"`
	CapabilityType  string     `json:"capability_type" db:"capability_type"`
	CapabilityValue string     `json:"capability_value" db:"capability_value"`
	IsActive        bool       `json:"is_active" db:"is_active"`
	CertifiedDate   *time.Time `json:"certified_date,omitempty" db:"certified_date"`
	ExpirationDate  *time.Time `json:"expiration_date,omitempty" db:"expiration_date"`
}

// IsEffective 检查能力在指定日期是否有效（启用且未过期）
func (c *ShopCapability) IsEffective(asOf time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.ExpirationDate != nil && DateOnly(*c.ExpirationDate).Before(DateOnly(asOf)) {
		return false
	}
	return true
}

// Matches 类型与值精确匹配（区分大小写）
func (c *ShopCapability) Matches(capType, value string) bool {
	return c.CapabilityType == capType && c.CapabilityValue == value
}

// HasCapability 检查能力列表中是否存在有效且匹配的能力
func HasCapability(caps []ShopCapability, capType, value string, asOf time.Time) bool {
	for i := range caps {
		if caps[i].Matches(capType, value) && caps[i].IsEffective(asOf) {
			return true
		}
	}
	return false
}

// CommodityRestriction 货品-维修厂限制
// 不存在记录表示不限制（默认允许）
type CommodityRestriction struct {
	CommodityCode   string `json:"commodity_code" db:"commodity_code"`
	ShopCode        string `json:"shop_code" db:"shop_code"`
	RestrictionCode string `json:"restriction_code" db:"restriction_code"`
	Reason          string `json:"restriction_reason,omitempty" db:"restriction_reason"`
}

// FindRestriction 查找 (货品, 维修厂) 的限制记录
func FindRestriction(restrictions []CommodityRestriction, commodityCode, shopCode string) *CommodityRestriction {
	for i := range restrictions {
		r := &restrictions[i]
		if r.CommodityCode == commodityCode && r.ShopCode == shopCode {
			return r
		}
	}
	return nil
}

// ShopBacklog 维修厂积压快照
type ShopBacklog struct {
	ShopCode          string    `json:"shop_code" db:"shop_code"`
	SnapshotDate      time.Time `json:"snapshot_date" db:"snapshot_date"`
	HoursBacklog      float64   `json:"hours_backlog" db:"hours_backlog"`
	CarsBacklog       int       `json:"cars_backlog" db:"cars_backlog"`
	CarsEnRoute0To6   int       `json:"cars_en_route_0_6" db:"cars_en_route_0_6"`
	CarsEnRoute7To14  int       `json:"cars_en_route_7_14" db:"cars_en_route_7_14"`
	CarsEnRoute15Plus int       `json:"cars_en_route_15_plus" db:"cars_en_route_15_plus"`
}

// CarsEnRouteTotal 在途车辆总数（实时计算，不存储）
func (b *ShopBacklog) CarsEnRouteTotal() int {
	return b.CarsEnRoute0To6 + b.CarsEnRoute7To14 + b.CarsEnRoute15Plus
}
