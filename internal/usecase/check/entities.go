package check

import (
	"time"

	domainCheck "water-chiller-check/internal/domain/check"
)

// ReadingInput carries one machine's submitted values as typed in the form.
// Blank values become NULL.
type ReadingInput struct {
	CompressorTemp string
	CableTemp      string
	BreakerTemp    string
	WaterTemp      string
	PumpTemp       string
	Evaporator     string
	EvaporatorFan  string
	Refrigerant    string
	Water          string
}

type CreateInput struct {
	Date    time.Time
	Weekday string
	Notes   string
	// keyed by machine index 1..32
	Readings map[int]ReadingInput
}

type UpdateInput struct {
	Date    time.Time
	Weekday string
	Notes   string
	// keyed by measurement row id
	Readings map[uint64]ReadingInput
}

type ListInput struct {
	Month  string
	Search string
	Page   int
}

type CheckDTO struct {
	CheckID    string    `json:"check_id"`
	Date       string    `json:"date"`
	Weekday    string    `json:"weekday"`
	CheckedBy  string    `json:"checked_by"`
	ApprovedBy *string   `json:"approved_by"`
	Notes      *string   `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}

type RowDTO struct {
	ID          uint64 `json:"id"`
	MachineNo   int    `json:"machine_no"`
	MachineCode string `json:"machine_code"`
	domainCheck.Readings
}

type DetailDTO struct {
	Check CheckDTO `json:"check"`
	Rows  []RowDTO `json:"rows"`
}

type PageDTO struct {
	Items    []CheckDTO `json:"items"`
	Page     int        `json:"page"`
	PerPage  int        `json:"per_page"`
	Total    int64      `json:"total"`
	LastPage int        `json:"last_page"`
}

// FileDTO is a rendered report ready to download.
type FileDTO struct {
	FileName    string
	ContentType string
	Body        []byte
}

func toCheckDTO(h *domainCheck.CheckHeader) CheckDTO {
	return CheckDTO{
		CheckID:    h.CheckID,
		Date:       h.CheckDate.Format(dateLayout),
		Weekday:    h.Weekday,
		CheckedBy:  h.CheckedBy,
		ApprovedBy: h.ApprovedBy,
		Notes:      h.Notes,
		CreatedAt:  h.CreatedAt,
	}
}

func toRowDTOs(rows []domainCheck.MeasurementRow) []RowDTO {
	out := make([]RowDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, RowDTO{ID: r.ID, MachineNo: r.MachineNo, MachineCode: r.MachineCode, Readings: r.Readings})
	}
	return out
}
