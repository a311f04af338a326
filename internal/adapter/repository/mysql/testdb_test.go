package mysql

import (
	"context"
	"testing"
	"time"

	checkDomain "water-chiller-check/internal/domain/check"
	"water-chiller-check/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with both check tables.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// every new connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&checkDomain.CheckHeader{}, &checkDomain.MeasurementRow{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func makeHeader(date time.Time, checkedBy string) *checkDomain.CheckHeader {
	return &checkDomain.CheckHeader{
		CheckID:   id.NewID32(),
		CheckDate: date,
		Weekday:   date.Weekday().String(),
		CheckedBy: checkedBy,
	}
}

func seedHeader(t *testing.T, db *gorm.DB, date time.Time, checkedBy string) *checkDomain.CheckHeader {
	t.Helper()
	h := makeHeader(date, checkedBy)
	if err := NewCheckRepository(db).Create(context.Background(), h); err != nil {
		t.Fatalf("seed header: %v", err)
	}
	return h
}

func ptr[T any](v T) *T { return &v }
