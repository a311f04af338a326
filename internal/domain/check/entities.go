package check

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// MachineCount is the number of chillers covered by one check.
const MachineCount = 32

// ReadingLimit bounds a temperature reading; decimal(6,2) holds |v| < 10000.
const ReadingLimit = 10000

var (
	ErrNotFound      = errors.New("check not found")
	ErrDuplicateDate = errors.New("check for this date already exists")
)

// Table: water_chiller_checks
type CheckHeader struct {
	// Internal numeric PK
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Public identifier (32-char lowercase hex)
	CheckID    string    `gorm:"column:check_id;type:char(32);not null;uniqueIndex:ux_water_chiller_checks_check_id"`
	CheckDate  time.Time `gorm:"column:check_date;type:date;not null;index:idx_water_chiller_checks_date_author,priority:1"`
	Weekday    string    `gorm:"column:weekday;size:20;not null"`
	CheckedBy  string    `gorm:"column:checked_by;size:64;not null;index:idx_water_chiller_checks_date_author,priority:2"`
	ApprovedBy *string   `gorm:"column:approved_by;size:64"`
	Notes      *string   `gorm:"column:notes;type:text"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (CheckHeader) TableName() string { return "water_chiller_checks" }

// Approved reports whether an approver has signed the check.
func (h *CheckHeader) Approved() bool { return h.ApprovedBy != nil && *h.ApprovedBy != "" }

// Readings holds the nine per-machine measurements. Nil means not recorded.
type Readings struct {
	CompressorTemp      *float64 `gorm:"column:compressor_temp;type:decimal(6,2)" json:"compressor_temp"`
	CableTemp           *float64 `gorm:"column:cable_temp;type:decimal(6,2)" json:"cable_temp"`
	BreakerTemp         *float64 `gorm:"column:breaker_temp;type:decimal(6,2)" json:"breaker_temp"`
	WaterTemp           *float64 `gorm:"column:water_temp;type:decimal(6,2)" json:"water_temp"`
	PumpTemp            *float64 `gorm:"column:pump_temp;type:decimal(6,2)" json:"pump_temp"`
	EvaporatorStatus    *string  `gorm:"column:evaporator_status;size:50" json:"evaporator"`
	EvaporatorFanStatus *string  `gorm:"column:evaporator_fan_status;size:50" json:"evaporator_fan"`
	RefrigerantStatus   *string  `gorm:"column:refrigerant_status;size:50" json:"refrigerant"`
	WaterStatus         *string  `gorm:"column:water_status;size:50" json:"water"`
}

// ReadingColumns lists the columns an update is allowed to touch.
var ReadingColumns = []string{
	"compressor_temp", "cable_temp", "breaker_temp", "water_temp", "pump_temp",
	"evaporator_status", "evaporator_fan_status", "refrigerant_status", "water_status",
}

// Table: water_chiller_results
type MeasurementRow struct {
	ID            uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	CheckHeaderID uint64 `gorm:"column:check_header_id;not null;index"`
	MachineNo     int    `gorm:"column:machine_no;not null"`
	MachineCode   string `gorm:"column:machine_code;size:8;not null"`
	Readings      `gorm:"embedded"`
}

func (MeasurementRow) TableName() string { return "water_chiller_results" }

// MachineCode returns the chiller label for a 1-based machine index.
func MachineCode(i int) string { return "CH" + strconv.Itoa(i) }

// NewRows builds the fixed set of rows for a new check, one per machine.
// readings is keyed by machine index; missing machines get empty readings.
func NewRows(headerID uint64, readings map[int]Readings) []MeasurementRow {
	rows := make([]MeasurementRow, 0, MachineCount)
	for i := 1; i <= MachineCount; i++ {
		rows = append(rows, MeasurementRow{
			CheckHeaderID: headerID,
			MachineNo:     i,
			MachineCode:   MachineCode(i),
			Readings:      readings[i],
		})
	}
	return rows
}

// ParseReading parses a typed temperature. Blank input yields nil. A decimal
// comma is accepted. NaN, infinities and values outside ReadingLimit are
// rejected.
func ParseReading(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= ReadingLimit {
		return nil, false
	}
	return &f, true
}
