package checkmock

import (
	"context"
	"time"

	domain "water-chiller-check/internal/domain/check"
)

var (
	_ domain.HeaderRepository = (*HeaderRepo)(nil)
	_ domain.ResultRepository = (*ResultRepo)(nil)
)

// HeaderRepo is a function-backed mock that satisfies domain.HeaderRepository.
// Writes default to a nil error; reads default to gorm-style not found.
type HeaderRepo struct {
	CreateFn        func(ctx context.Context, h *domain.CheckHeader) error
	SaveFn          func(ctx context.Context, h *domain.CheckHeader) error
	SetApprovedByFn func(ctx context.Context, id uint64, approver string) error
	GetByCheckIDFn  func(ctx context.Context, checkID string) (*domain.CheckHeader, error)
	ExistsForDateFn func(ctx context.Context, date time.Time, checkedBy string) (bool, error)
	ListFn          func(ctx context.Context, f domain.ListFilter) ([]domain.CheckHeader, int64, error)
}

func (m *HeaderRepo) Create(ctx context.Context, h *domain.CheckHeader) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, h)
	}
	return nil
}

func (m *HeaderRepo) Save(ctx context.Context, h *domain.CheckHeader) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, h)
	}
	return nil
}

func (m *HeaderRepo) SetApprovedBy(ctx context.Context, id uint64, approver string) error {
	if m.SetApprovedByFn != nil {
		return m.SetApprovedByFn(ctx, id, approver)
	}
	return nil
}

func (m *HeaderRepo) GetByCheckID(ctx context.Context, checkID string) (*domain.CheckHeader, error) {
	if m.GetByCheckIDFn != nil {
		return m.GetByCheckIDFn(ctx, checkID)
	}
	return nil, errNotFound
}

func (m *HeaderRepo) ExistsForDate(ctx context.Context, date time.Time, checkedBy string) (bool, error) {
	if m.ExistsForDateFn != nil {
		return m.ExistsForDateFn(ctx, date, checkedBy)
	}
	return false, nil
}

func (m *HeaderRepo) List(ctx context.Context, f domain.ListFilter) ([]domain.CheckHeader, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	return nil, 0, nil
}

// ResultRepo is a function-backed mock that satisfies domain.ResultRepository.
type ResultRepo struct {
	CreateBatchFn  func(ctx context.Context, rows []domain.MeasurementRow) error
	ListByHeaderFn func(ctx context.Context, headerID uint64) ([]domain.MeasurementRow, error)
	GetByIDFn      func(ctx context.Context, headerID, rowID uint64) (*domain.MeasurementRow, error)
	SaveReadingsFn func(ctx context.Context, r *domain.MeasurementRow) error
}

func (m *ResultRepo) CreateBatch(ctx context.Context, rows []domain.MeasurementRow) error {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, rows)
	}
	return nil
}

func (m *ResultRepo) ListByHeader(ctx context.Context, headerID uint64) ([]domain.MeasurementRow, error) {
	if m.ListByHeaderFn != nil {
		return m.ListByHeaderFn(ctx, headerID)
	}
	return nil, nil
}

func (m *ResultRepo) GetByID(ctx context.Context, headerID, rowID uint64) (*domain.MeasurementRow, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, headerID, rowID)
	}
	return nil, errNotFound
}

func (m *ResultRepo) SaveReadings(ctx context.Context, r *domain.MeasurementRow) error {
	if m.SaveReadingsFn != nil {
		return m.SaveReadingsFn(ctx, r)
	}
	return nil
}
