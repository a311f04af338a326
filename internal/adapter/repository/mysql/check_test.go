package mysql

import (
	"context"
	"errors"
	"testing"

	checkDomain "water-chiller-check/internal/domain/check"

	"gorm.io/gorm"
)

func TestCreateAndGetByCheckID(t *testing.T) {
	db := openTestDB(t)
	repo := NewCheckRepository(db)
	ctx := context.Background()

	h := makeHeader(day(2024, 3, 1), "budi")
	if err := repo.Create(ctx, h); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if h.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByCheckID(ctx, h.CheckID)
	if err != nil {
		t.Fatalf("GetByCheckID: %v", err)
	}
	if got.CheckedBy != "budi" || !got.CheckDate.Equal(day(2024, 3, 1)) {
		t.Errorf("unexpected header: %+v", got)
	}
	if got.ApprovedBy != nil || got.Notes != nil {
		t.Errorf("nullable columns should be nil: %+v", got)
	}
}

func TestGetByCheckID_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewCheckRepository(db)

	_, err := repo.GetByCheckID(context.Background(), "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestSave_OnlyEditableFields(t *testing.T) {
	db := openTestDB(t)
	repo := NewCheckRepository(db)
	ctx := context.Background()

	h := seedHeader(t, db, day(2024, 3, 1), "budi")
	if err := repo.SetApprovedBy(ctx, h.ID, "sari"); err != nil {
		t.Fatalf("SetApprovedBy: %v", err)
	}

	// stale copy: approved_by and checked_by must survive Save
	h.CheckDate = day(2024, 3, 2)
	h.Weekday = "Saturday"
	h.Notes = ptr("pump 7 noisy")
	h.CheckedBy = "intruder"
	if err := repo.Save(ctx, h); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByCheckID(ctx, h.CheckID)
	if err != nil {
		t.Fatalf("GetByCheckID: %v", err)
	}
	if !got.CheckDate.Equal(day(2024, 3, 2)) || got.Weekday != "Saturday" || got.Notes == nil || *got.Notes != "pump 7 noisy" {
		t.Errorf("editable fields not saved: %+v", got)
	}
	if got.CheckedBy != "budi" {
		t.Errorf("checked_by changed to %q", got.CheckedBy)
	}
	if got.ApprovedBy == nil || *got.ApprovedBy != "sari" {
		t.Errorf("approved_by lost: %+v", got.ApprovedBy)
	}
}

func TestSetApprovedBy_Overwrites(t *testing.T) {
	db := openTestDB(t)
	repo := NewCheckRepository(db)
	ctx := context.Background()

	h := seedHeader(t, db, day(2024, 3, 1), "budi")
	for _, who := range []string{"sari", "sari", "admin"} {
		if err := repo.SetApprovedBy(ctx, h.ID, who); err != nil {
			t.Fatalf("SetApprovedBy(%s): %v", who, err)
		}
	}
	got, _ := repo.GetByCheckID(ctx, h.CheckID)
	if !got.Approved() || *got.ApprovedBy != "admin" {
		t.Fatalf("approved_by = %v, want admin", got.ApprovedBy)
	}
}

func TestExistsForDate(t *testing.T) {
	db := openTestDB(t)
	repo := NewCheckRepository(db)
	ctx := context.Background()

	seedHeader(t, db, day(2024, 3, 1), "budi")

	tests := []struct {
		name      string
		checkedBy string
		date      int
		want      bool
	}{
		{"same author same date", "budi", 1, true},
		{"other author scoped", "andi", 1, false},
		{"global scope", "", 1, true},
		{"other date", "budi", 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ExistsForDate(ctx, day(2024, 3, tt.date), tt.checkedBy)
			if err != nil {
				t.Fatalf("ExistsForDate: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestList_FiltersOrderAndPaging(t *testing.T) {
	db := openTestDB(t)
	repo := NewCheckRepository(db)
	ctx := context.Background()

	// march: budi 1..12, andi 5; april: budi 1
	for d := 1; d <= 12; d++ {
		seedHeader(t, db, day(2024, 3, d), "budi")
	}
	seedHeader(t, db, day(2024, 3, 5), "andi")
	seedHeader(t, db, day(2024, 4, 1), "budi")

	t.Run("owner scope", func(t *testing.T) {
		got, total, err := repo.List(ctx, checkDomain.ListFilter{Owner: "andi"})
		if err != nil {
			t.Fatal(err)
		}
		if total != 1 || len(got) != 1 || got[0].CheckedBy != "andi" {
			t.Fatalf("unexpected: total=%d rows=%+v", total, got)
		}
	})

	t.Run("owner scope wins over search", func(t *testing.T) {
		_, total, err := repo.List(ctx, checkDomain.ListFilter{Owner: "andi", Search: "bud"})
		if err != nil {
			t.Fatal(err)
		}
		if total != 0 {
			t.Fatalf("checker scope leaked: total=%d", total)
		}
	})

	t.Run("month filter", func(t *testing.T) {
		_, total, err := repo.List(ctx, checkDomain.ListFilter{Month: day(2024, 4, 20)})
		if err != nil {
			t.Fatal(err)
		}
		if total != 1 {
			t.Fatalf("april total = %d, want 1", total)
		}
	})

	t.Run("search is substring", func(t *testing.T) {
		_, total, err := repo.List(ctx, checkDomain.ListFilter{Search: "ud"})
		if err != nil {
			t.Fatal(err)
		}
		if total != 13 {
			t.Fatalf("total = %d, want 13", total)
		}
	})

	t.Run("date desc with paging", func(t *testing.T) {
		page1, total, err := repo.List(ctx, checkDomain.ListFilter{Limit: 10})
		if err != nil {
			t.Fatal(err)
		}
		if total != 14 || len(page1) != 10 {
			t.Fatalf("total=%d len=%d", total, len(page1))
		}
		if !page1[0].CheckDate.Equal(day(2024, 4, 1)) {
			t.Fatalf("first row date = %v, want 2024-04-01", page1[0].CheckDate)
		}
		for i := 1; i < len(page1); i++ {
			if page1[i].CheckDate.After(page1[i-1].CheckDate) {
				t.Fatalf("not sorted desc at %d", i)
			}
		}
		page2, _, err := repo.List(ctx, checkDomain.ListFilter{Limit: 10, Offset: 10})
		if err != nil {
			t.Fatal(err)
		}
		if len(page2) != 4 {
			t.Fatalf("page2 len = %d, want 4", len(page2))
		}
	})
}
