package model

// Car 铁路车辆（只读输入，由车队管理流程维护）
type Car struct {
	BaseModel
	CarNumber    string `json:"car_number" db:"car_number"`
	CarType      string `json:"car_type" db:"car_type"`
	ProductCode  string `json:"product_code" db:"product_code"`
	MaterialType string `json:"material_type" db:"material_type"`
	StencilClass string `json:"stencil_class" db:"stencil_class"`

	// 可空字段：空字符串表示未设置
	LiningType    string `json:"lining_type,omitempty" db:"lining_type"`
	CommodityCode string `json:"commodity_code,omitempty" db:"commodity_code"`

	HasAsbestos               bool `json:"has_asbestos" db:"has_asbestos"`
	AsbestosAbatementRequired bool `json:"asbestos_abatement_required" db:"asbestos_abatement_required"`

	// 氮气垫级别（序数，可空）
	NitrogenPadStage *int `json:"nitrogen_pad_stage,omitempty" db:"nitrogen_pad_stage"`

	OwnerCode  string `json:"owner_code,omitempty" db:"owner_code"`
	LesseeCode string `json:"lessee_code,omitempty" db:"lessee_code"`

	// 关联货品（未分配货品时为 nil）
	Commodity *Commodity `json:"commodity,omitempty" db:"-"`
}

// HasCommodity 是否已分配货品
func (c *Car) HasCommodity() bool {
	return c.CommodityCode != ""
}

// HasLining 是否已有内衬
func (c *Car) HasLining() bool {
	return c.LiningType != ""
}

// NitrogenStage 返回氮气垫级别，未设置时返回 0
func (c *Car) NitrogenStage() int {
	if c.NitrogenPadStage == nil {
		return 0
	}
	return *c.NitrogenPadStage
}

// RequiresKosher 货品是否要求犹太洁食清洗
func (c *Car) RequiresKosher() bool {
	return c.Commodity != nil && c.Commodity.RequiresKosher
}

// Commodity 货品
type Commodity struct {
	Code             string  `json:"commodity_code" db:"commodity_code"`
	Description      string  `json:"description,omitempty" db:"description"`
	CleaningClass    string  `json:"cleaning_class,omitempty" db:"cleaning_class"`
	RecommendedPrice float64 `json:"recommended_price" db:"recommended_price"`
	HazmatClass      string  `json:"hazmat_class,omitempty" db:"hazmat_class"`
	RequiresKosher   bool    `json:"requires_kosher" db:"requires_kosher"`
	RequiresNitrogen bool    `json:"requires_nitrogen" db:"requires_nitrogen"`
	NitrogenStage    *int    `json:"nitrogen_stage,omitempty" db:"nitrogen_stage"`
}

// Overrides 评估覆盖选项（由调用方提供）
type Overrides struct {
	ExteriorPaint          bool `json:"exterior_paint"`
	NewLining              bool `json:"new_lining"`
	InteriorBlast          bool `json:"interior_blast"`
	KosherCleaning         bool `json:"kosher_cleaning"`
	PrimaryNetworkOverride bool `json:"primary_network"`

	// 扩展覆盖
	LiningType string `json:"lining_type,omitempty"`
	BlastType  string `json:"blast_type,omitempty"`
}

// EffectiveLiningType 覆盖优先于车辆自身内衬类型
func (o Overrides) EffectiveLiningType(car *Car) string {
	if o.LiningType != "" {
		return o.LiningType
	}
	if car == nil {
		return ""
	}
	return car.LiningType
}
