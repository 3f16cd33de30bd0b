package repository

import (
	"context"
	"database/sql"

	apperrors "github.com/shopeval/shopeval/pkg/errors"
	"github.com/shopeval/shopeval/pkg/model"
)

// CarRepository 车辆仓储
type CarRepository struct {
	db DB
}

// NewCarRepository 创建车辆仓储
func NewCarRepository(db DB) *CarRepository {
	return &CarRepository{db: db}
}

// GetByNumber 根据车号获取车辆及其货品，不存在时返回 nil
func (r *CarRepository) GetByNumber(ctx context.Context, carNumber string) (*model.Car, error) {
	query := `
		SELECT c.id, c.car_number, c.car_type, c.product_code, c.material_type, c.stencil_class,
			c.lining_type, c.commodity_code, c.has_asbestos, c.asbestos_abatement_required,
			c.nitrogen_pad_stage, c.owner_code, c.lessee_code, c.created_at, c.updated_at,
			m.commodity_code, m.description, m.cleaning_class, m.recommended_price, m.hazmat_class,
			m.requires_kosher, m.requires_nitrogen, m.nitrogen_stage
		FROM cars c
		LEFT JOIN commodities m ON m.commodity_code = c.commodity_code
		WHERE c.car_number = $1
	`

	var (
		car                                  model.Car
		carType, product, material, stencil  sql.NullString
		lining, commodityCode, owner, lessee sql.NullString
		stage                                sql.NullInt64
		mCode, mDesc, mClass, mHazmat        sql.NullString
		mPrice                               sql.NullFloat64
		mKosher, mNitrogen                   sql.NullBool
		mStage                               sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, carNumber).Scan(
		&car.ID, &car.CarNumber, &carType, &product, &material, &stencil,
		&lining, &commodityCode, &car.HasAsbestos, &car.AsbestosAbatementRequired,
		&stage, &owner, &lessee, &car.CreatedAt, &car.UpdatedAt,
		&mCode, &mDesc, &mClass, &mPrice, &mHazmat,
		&mKosher, &mNitrogen, &mStage,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Database(err, "查询车辆")
	}

	car.CarType = nullString(carType)
	car.ProductCode = nullString(product)
	car.MaterialType = nullString(material)
	car.StencilClass = nullString(stencil)
	car.LiningType = nullString(lining)
	car.CommodityCode = nullString(commodityCode)
	car.NitrogenPadStage = nullInt(stage)
	car.OwnerCode = nullString(owner)
	car.LesseeCode = nullString(lessee)

	if mCode.Valid {
		car.Commodity = &model.Commodity{
			Code:             mCode.String,
			Description:      nullString(mDesc),
			CleaningClass:    nullString(mClass),
			RecommendedPrice: nullFloat(mPrice),
			HazmatClass:      nullString(mHazmat),
			RequiresKosher:   mKosher.Valid && mKosher.Bool,
			RequiresNitrogen: mNitrogen.Valid && mNitrogen.Bool,
			NitrogenStage:    nullInt(mStage),
		}
	}

	return &car, nil
}
