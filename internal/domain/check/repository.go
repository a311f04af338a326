package check

import (
	"context"
	"time"
)

// ListFilter narrows the header listing. Zero values mean "no filter".
type ListFilter struct {
	// Owner restricts to headers checked by this username (role scoping).
	Owner string
	// Month, when non-zero, keeps headers within that calendar month.
	Month time.Time
	// Search is a substring match on checked_by.
	Search string
	Limit  int
	Offset int
}

type HeaderRepository interface {
	Create(ctx context.Context, h *CheckHeader) error
	// Save persists the editable header fields (date, weekday, notes).
	Save(ctx context.Context, h *CheckHeader) error
	SetApprovedBy(ctx context.Context, id uint64, approver string) error
	GetByCheckID(ctx context.Context, checkID string) (*CheckHeader, error)
	// ExistsForDate checks for a header on date; empty checkedBy means any author.
	ExistsForDate(ctx context.Context, date time.Time, checkedBy string) (bool, error)
	List(ctx context.Context, f ListFilter) ([]CheckHeader, int64, error)
}

type ResultRepository interface {
	CreateBatch(ctx context.Context, rows []MeasurementRow) error
	ListByHeader(ctx context.Context, headerID uint64) ([]MeasurementRow, error)
	// GetByID returns the row only when it belongs to headerID.
	GetByID(ctx context.Context, headerID, rowID uint64) (*MeasurementRow, error)
	SaveReadings(ctx context.Context, r *MeasurementRow) error
}
