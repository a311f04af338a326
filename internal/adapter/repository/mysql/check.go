package mysql

import (
	"context"
	"time"

	checkDomain "water-chiller-check/internal/domain/check"

	"gorm.io/gorm"
)

type CheckRepository struct{ db *gorm.DB }

func NewCheckRepository(db *gorm.DB) *CheckRepository { return &CheckRepository{db: db} }

func (r *CheckRepository) Create(ctx context.Context, h *checkDomain.CheckHeader) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *CheckRepository) Save(ctx context.Context, h *checkDomain.CheckHeader) error {
	return r.db.WithContext(ctx).
		Model(h).
		Select("check_date", "weekday", "notes").
		Updates(h).Error
}

func (r *CheckRepository) SetApprovedBy(ctx context.Context, id uint64, approver string) error {
	// RowsAffected is not checked: MySQL reports 0 when the approver is unchanged.
	return r.db.WithContext(ctx).
		Model(&checkDomain.CheckHeader{}).
		Where("id = ?", id).
		Update("approved_by", approver).Error
}

func (r *CheckRepository) GetByCheckID(ctx context.Context, checkID string) (*checkDomain.CheckHeader, error) {
	var out checkDomain.CheckHeader
	res := r.db.WithContext(ctx).Where("check_id = ?", checkID).First(&out)
	return &out, res.Error
}

func (r *CheckRepository) ExistsForDate(ctx context.Context, date time.Time, checkedBy string) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).
		Model(&checkDomain.CheckHeader{}).
		Where("check_date = ?", date)
	if checkedBy != "" {
		q = q.Where("checked_by = ?", checkedBy)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *CheckRepository) List(ctx context.Context, f checkDomain.ListFilter) ([]checkDomain.CheckHeader, int64, error) {
	q := r.db.WithContext(ctx).Model(&checkDomain.CheckHeader{})
	// role scoping goes first so user filters can only narrow it
	if f.Owner != "" {
		q = q.Where("checked_by = ?", f.Owner)
	}
	if !f.Month.IsZero() {
		start := time.Date(f.Month.Year(), f.Month.Month(), 1, 0, 0, 0, 0, time.UTC)
		q = q.Where("check_date >= ? AND check_date < ?", start, start.AddDate(0, 1, 0))
	}
	if f.Search != "" {
		q = q.Where("checked_by LIKE ?", "%"+f.Search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []checkDomain.CheckHeader
	q = q.Order("check_date DESC, id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
