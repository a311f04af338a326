package mysql

import (
	"context"

	checkDomain "water-chiller-check/internal/domain/check"

	"gorm.io/gorm"
)

type ResultRepository struct{ db *gorm.DB }

func NewResultRepository(db *gorm.DB) *ResultRepository { return &ResultRepository{db: db} }

func (r *ResultRepository) CreateBatch(ctx context.Context, rows []checkDomain.MeasurementRow) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *ResultRepository) ListByHeader(ctx context.Context, headerID uint64) ([]checkDomain.MeasurementRow, error) {
	var out []checkDomain.MeasurementRow
	res := r.db.WithContext(ctx).
		Where("check_header_id = ?", headerID).
		Order("machine_no ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *ResultRepository) GetByID(ctx context.Context, headerID, rowID uint64) (*checkDomain.MeasurementRow, error) {
	var out checkDomain.MeasurementRow
	res := r.db.WithContext(ctx).
		Where("id = ? AND check_header_id = ?", rowID, headerID).
		First(&out)
	return &out, res.Error
}

// SaveReadings writes all nine reading columns, nils included.
func (r *ResultRepository) SaveReadings(ctx context.Context, row *checkDomain.MeasurementRow) error {
	return r.db.WithContext(ctx).
		Model(row).
		Select(checkDomain.ReadingColumns).
		Updates(row).Error
}
