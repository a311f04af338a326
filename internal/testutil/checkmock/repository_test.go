package checkmock

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "water-chiller-check/internal/domain/check"

	"gorm.io/gorm"
)

func TestHeaderRepo_Create(t *testing.T) {
	ctx := context.Background()
	h := &domain.CheckHeader{CheckID: "c1"}

	called := false
	wantErr := errors.New("boom")
	m := &HeaderRepo{
		CreateFn: func(gotCtx context.Context, got *domain.CheckHeader) error {
			called = true
			if gotCtx != ctx || got != h {
				t.Fatalf("Create args not forwarded")
			}
			return wantErr
		},
	}
	if err := m.Create(ctx, h); !errors.Is(err, wantErr) {
		t.Fatalf("Create: want %v, got %v", wantErr, err)
	}
	if !called {
		t.Fatalf("CreateFn not called")
	}

	// Default (nil func) → no-op, nil error
	m = &HeaderRepo{}
	if err := m.Create(ctx, h); err != nil {
		t.Fatalf("Create default: want nil, got %v", err)
	}
}

func TestHeaderRepo_GetByCheckID(t *testing.T) {
	ctx := context.Background()
	want := &domain.CheckHeader{CheckID: "c2"}

	m := &HeaderRepo{
		GetByCheckIDFn: func(_ context.Context, checkID string) (*domain.CheckHeader, error) {
			if checkID != "c2" {
				t.Fatalf("GetByCheckID: checkID mismatch: got %s", checkID)
			}
			return want, nil
		},
	}
	got, err := m.GetByCheckID(ctx, "c2")
	if err != nil || got != want {
		t.Fatalf("GetByCheckID: got (%v, %v)", got, err)
	}

	m = &HeaderRepo{}
	if _, err := m.GetByCheckID(ctx, "c2"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetByCheckID default: want ErrRecordNotFound, got %v", err)
	}
}

func TestHeaderRepo_ExistsForDate(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	m := &HeaderRepo{
		ExistsForDateFn: func(_ context.Context, date time.Time, checkedBy string) (bool, error) {
			return date.Equal(day) && checkedBy == "budi", nil
		},
	}
	ok, err := m.ExistsForDate(ctx, day, "budi")
	if err != nil || !ok {
		t.Fatalf("ExistsForDate: got (%v, %v)", ok, err)
	}

	m = &HeaderRepo{}
	if ok, err := m.ExistsForDate(ctx, day, ""); ok || err != nil {
		t.Fatalf("ExistsForDate default: got (%v, %v)", ok, err)
	}
}

func TestHeaderRepo_Defaults(t *testing.T) {
	ctx := context.Background()
	m := &HeaderRepo{}
	if err := m.Save(ctx, &domain.CheckHeader{}); err != nil {
		t.Fatalf("Save default: %v", err)
	}
	if err := m.SetApprovedBy(ctx, 1, "sari"); err != nil {
		t.Fatalf("SetApprovedBy default: %v", err)
	}
	items, total, err := m.List(ctx, domain.ListFilter{})
	if items != nil || total != 0 || err != nil {
		t.Fatalf("List default: got (%v, %d, %v)", items, total, err)
	}
}

func TestResultRepo_GetByID(t *testing.T) {
	ctx := context.Background()
	want := &domain.MeasurementRow{ID: 9, CheckHeaderID: 3}

	m := &ResultRepo{
		GetByIDFn: func(_ context.Context, headerID, rowID uint64) (*domain.MeasurementRow, error) {
			if headerID != 3 || rowID != 9 {
				t.Fatalf("GetByID: ids not forwarded: %d/%d", headerID, rowID)
			}
			return want, nil
		},
	}
	got, err := m.GetByID(ctx, 3, 9)
	if err != nil || got != want {
		t.Fatalf("GetByID: got (%v, %v)", got, err)
	}

	m = &ResultRepo{}
	if _, err := m.GetByID(ctx, 3, 9); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetByID default: want ErrRecordNotFound, got %v", err)
	}
}

func TestResultRepo_CreateBatch(t *testing.T) {
	ctx := context.Background()
	var got int
	m := &ResultRepo{
		CreateBatchFn: func(_ context.Context, rows []domain.MeasurementRow) error {
			got = len(rows)
			return nil
		},
	}
	if err := m.CreateBatch(ctx, domain.NewRows(1, nil)); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	if got != domain.MachineCount {
		t.Fatalf("CreateBatch: got %d rows, want %d", got, domain.MachineCount)
	}

	m = &ResultRepo{}
	if err := m.SaveReadings(ctx, &domain.MeasurementRow{}); err != nil {
		t.Fatalf("SaveReadings default: %v", err)
	}
	if rows, err := m.ListByHeader(ctx, 1); rows != nil || err != nil {
		t.Fatalf("ListByHeader default: got (%v, %v)", rows, err)
	}
}
