// Package eligibility 实现维修厂资格规则评估
//
// 规则由外部配置，条件文档在构造时一次性解析为封闭的条件类型，
// 评估时逐条执行。单条规则的内部错误按放行处理并记录日志。
package eligibility

import (
	"time"

	"github.com/shopeval/shopeval/pkg/model"
)

// EvaluationContext 单次 (车辆, 维修厂) 评估的上下文，每次评估新建
type EvaluationContext struct {
	Car          *model.Car
	Shop         *model.Shop
	Capabilities []model.ShopCapability
	Restrictions []model.CommodityRestriction
	Overrides    model.Overrides
	Backlog      *model.ShopBacklog // 可选

	// AsOf 能力有效期判断日期，零值表示评估当天
	AsOf time.Time
}

// commodityCode 车辆货品代码，未分配时返回空
func (ec *EvaluationContext) commodityCode() string {
	if ec.Car == nil {
		return ""
	}
	return ec.Car.CommodityCode
}

// shopCode 维修厂代码
func (ec *EvaluationContext) shopCode() string {
	if ec.Shop == nil {
		return ""
	}
	return ec.Shop.ShopCode
}

// commodity 关联货品，可能为 nil
func (ec *EvaluationContext) commodity() *model.Commodity {
	if ec.Car == nil {
		return nil
	}
	return ec.Car.Commodity
}

// hasCapability 检查维修厂是否具备有效能力
func (ec *EvaluationContext) hasCapability(capType, value string) bool {
	return model.HasCapability(ec.Capabilities, capType, value, ec.AsOf)
}

// findRestriction 查找当前车辆货品在当前维修厂的限制记录
func findRestriction(ec *EvaluationContext, commodityCode string) *model.CommodityRestriction {
	return model.FindRestriction(ec.Restrictions, commodityCode, ec.shopCode())
}
