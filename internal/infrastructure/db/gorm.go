package db

import (
	"fmt"
	"time"

	"water-chiller-check/internal/domain/check"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// UniqueDateIndex backs the (date, author) invariant in strict write mode.
const UniqueDateIndex = "ux_water_chiller_checks_date_author"

// Open picks the dialector for driver ("mysql" or "sqlite").
func Open(driver, dsn string, log *zap.Logger) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch driver {
	case "mysql":
		dial = mysql.Open(dsn)
	case "sqlite":
		dial = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	db, err := OpenGormWithDialector(dial)
	if err != nil {
		return nil, err
	}
	log.Info("gorm: connected", zap.String("driver", driver))
	return db, nil
}

func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// pinged explicitly below
		DisableAutomaticPing: true,
		// surface duplicate keys as gorm.ErrDuplicatedKey
		TranslateError: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates both check tables. With strict set, it also adds the
// unique (check_date, checked_by) index.
func Migrate(db *gorm.DB, strict bool) error {
	if err := db.AutoMigrate(&check.CheckHeader{}, &check.MeasurementRow{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if !strict || db.Migrator().HasIndex(&check.CheckHeader{}, UniqueDateIndex) {
		return nil
	}
	stmt := fmt.Sprintf("CREATE UNIQUE INDEX %s ON %s (check_date, checked_by)",
		UniqueDateIndex, check.CheckHeader{}.TableName())
	if err := db.Exec(stmt).Error; err != nil {
		return fmt.Errorf("create %s: %w", UniqueDateIndex, err)
	}
	return nil
}
