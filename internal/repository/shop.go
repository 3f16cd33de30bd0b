package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	apperrors "github.com/shopeval/shopeval/pkg/errors"
	"github.com/shopeval/shopeval/pkg/model"
)

// ShopRepository 维修厂仓储（维修厂、能力、货品限制、积压快照）
type ShopRepository struct {
	db DB
}

// NewShopRepository 创建维修厂仓储
func NewShopRepository(db DB) *ShopRepository {
	return &ShopRepository{db: db}
}

// List 按过滤器查询维修厂
func (r *ShopRepository) List(ctx context.Context, filter ShopFilter) ([]model.Shop, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	conditions = append(conditions, "1 = 1")

	if len(filter.Codes) > 0 {
		conditions = append(conditions, fmt.Sprintf("shop_code = ANY($%d)", argIndex))
		args = append(args, pq.Array(filter.Codes))
		argIndex++
	}

	if filter.Region != "" {
		conditions = append(conditions, fmt.Sprintf("region = $%d", argIndex))
		args = append(args, filter.Region)
		argIndex++
	}

	if filter.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}

	if filter.PreferredOnly {
		conditions = append(conditions, "is_preferred_network = TRUE")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultShopFilter().Limit
	}

	query := fmt.Sprintf(`
		SELECT id, shop_code, shop_name, labor_rate, material_multiplier,
			is_preferred_network, is_active, region, city, state, latitude, longitude
		FROM shops
		WHERE %s
		ORDER BY shop_code ASC
		LIMIT $%d
	`, strings.Join(conditions, " AND "), argIndex)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Database(err, "查询维修厂")
	}
	defer rows.Close()

	var shops []model.Shop
	for rows.Next() {
		var (
			s                   model.Shop
			region, city, state sql.NullString
			lat, lon            sql.NullFloat64
		)
		if err := rows.Scan(
			&s.ID, &s.ShopCode, &s.ShopName, &s.LaborRate, &s.MaterialMultiplier,
			&s.IsPreferredNetwork, &s.IsActive, &region, &city, &state, &lat, &lon,
		); err != nil {
			return nil, fmt.Errorf("扫描维修厂失败: %w", err)
		}
		s.Location = model.Location{
			Region:    nullString(region),
			City:      nullString(city),
			State:     nullString(state),
			Latitude:  nullFloat(lat),
			Longitude: nullFloat(lon),
		}
		shops = append(shops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Database(err, "遍历维修厂")
	}

	return shops, nil
}

// Capabilities 查询维修厂能力（含未启用与已过期记录，有效性由评估时判断）
func (r *ShopRepository) Capabilities(ctx context.Context, shopCodes []string) (map[string][]model.ShopCapability, error) {
	query := `
		SELECT id, shop_code, capability_type, capability_value, is_active, certified_date, expiration_date
		FROM shop_capabilities
		WHERE shop_code = ANY($1)
		ORDER BY shop_code, capability_type, capability_value
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(shopCodes))
	if err != nil {
		return nil, apperrors.Database(err, "查询维修厂能力")
	}
	defer rows.Close()

	result := make(map[string][]model.ShopCapability, len(shopCodes))
	for rows.Next() {
		var (
			c                  model.ShopCapability
			certified, expires sql.NullTime
		)
		if err := rows.Scan(
			&c.ID, &c.ShopCode, &c.CapabilityType, &c.CapabilityValue, &c.IsActive, &certified, &expires,
		); err != nil {
			return nil, fmt.Errorf("扫描维修厂能力失败: %w", err)
		}
		if certified.Valid {
			c.CertifiedDate = &certified.Time
		}
		if expires.Valid {
			c.ExpirationDate = &expires.Time
		}
		result[c.ShopCode] = append(result[c.ShopCode], c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Database(err, "遍历维修厂能力")
	}

	return result, nil
}

// Restrictions 查询某货品在指定维修厂的限制记录
func (r *ShopRepository) Restrictions(ctx context.Context, commodityCode string, shopCodes []string) (map[string][]model.CommodityRestriction, error) {
	result := make(map[string][]model.CommodityRestriction)
	if commodityCode == "" {
		return result, nil
	}

	query := `
		SELECT commodity_code, shop_code, restriction_code, restriction_reason
		FROM commodity_restrictions
		WHERE commodity_code = $1 AND shop_code = ANY($2)
	`

	rows, err := r.db.QueryContext(ctx, query, commodityCode, pq.Array(shopCodes))
	if err != nil {
		return nil, apperrors.Database(err, "查询货品限制")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cr     model.CommodityRestriction
			reason sql.NullString
		)
		if err := rows.Scan(&cr.CommodityCode, &cr.ShopCode, &cr.RestrictionCode, &reason); err != nil {
			return nil, fmt.Errorf("扫描货品限制失败: %w", err)
		}
		cr.Reason = nullString(reason)
		result[cr.ShopCode] = append(result[cr.ShopCode], cr)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Database(err, "遍历货品限制")
	}

	return result, nil
}

// LatestBacklogs 查询每个维修厂最新的积压快照
func (r *ShopRepository) LatestBacklogs(ctx context.Context, shopCodes []string) (map[string]*model.ShopBacklog, error) {
	query := `
		SELECT DISTINCT ON (shop_code)
			shop_code, snapshot_date, hours_backlog, cars_backlog,
			cars_en_route_0_6, cars_en_route_7_14, cars_en_route_15_plus
		FROM shop_backlog
		WHERE shop_code = ANY($1)
		ORDER BY shop_code, snapshot_date DESC
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(shopCodes))
	if err != nil {
		return nil, apperrors.Database(err, "查询积压快照")
	}
	defer rows.Close()

	result := make(map[string]*model.ShopBacklog, len(shopCodes))
	for rows.Next() {
		b := &model.ShopBacklog{}
		if err := rows.Scan(
			&b.ShopCode, &b.SnapshotDate, &b.HoursBacklog, &b.CarsBacklog,
			&b.CarsEnRoute0To6, &b.CarsEnRoute7To14, &b.CarsEnRoute15Plus,
		); err != nil {
			return nil, fmt.Errorf("扫描积压快照失败: %w", err)
		}
		result[b.ShopCode] = b
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Database(err, "遍历积压快照")
	}

	return result, nil
}
