// Package report turns a check into a printable form.
//
// Layout is a pure function from a header and its rows to a Document; the
// renderers (PDF, XLSX) only know how to draw a Document.
package report

import (
	"strconv"
	"time"

	"water-chiller-check/internal/domain/check"
)

const (
	Title      = "Water Chiller Form"
	filePrefix = "Water Chiller Form_"
	emptyCell  = "-"
)

type Orientation string

const (
	Landscape Orientation = "L"
	Portrait  Orientation = "P"
)

type Field struct {
	Label string
	Value string
}

type Column struct {
	Title string
	// Width in millimetres on an A4 page.
	Width float64
}

// Document is a renderer-agnostic description of the form.
type Document struct {
	Title       string
	Orientation Orientation
	PageSize    string
	Meta        []Field
	Columns     []Column
	Rows        [][]string
	Notes       string
	Signatures  []Field
}

// Columns of the measurement table; widths sum to 277mm (A4 landscape, 10mm margins).
var tableColumns = []Column{
	{"No", 10},
	{"Machine", 19},
	{"Compressor Temp (°C)", 28},
	{"Cable Temp (°C)", 26},
	{"MCB Temp (°C)", 26},
	{"Water Temp (°C)", 26},
	{"Pump Temp (°C)", 26},
	{"Evaporator", 29},
	{"Evaporator Fan", 29},
	{"Freon", 29},
	{"Water", 29},
}

func Layout(h check.CheckHeader, rows []check.MeasurementRow) Document {
	doc := Document{
		Title:       Title,
		Orientation: Landscape,
		PageSize:    "A4",
		Meta: []Field{
			{"Date", h.CheckDate.Format("02-01-2006")},
			{"Day", h.Weekday},
			{"Checked by", h.CheckedBy},
			{"Status", status(h)},
		},
		Columns: append([]Column(nil), tableColumns...),
		Rows:    make([][]string, 0, len(rows)),
		Signatures: []Field{
			{"Checked by", h.CheckedBy},
			{"Approved by", deref(h.ApprovedBy)},
		},
	}
	if h.Notes != nil {
		doc.Notes = *h.Notes
	}
	for i, r := range rows {
		doc.Rows = append(doc.Rows, []string{
			strconv.Itoa(i + 1),
			r.MachineCode,
			num(r.CompressorTemp),
			num(r.CableTemp),
			num(r.BreakerTemp),
			num(r.WaterTemp),
			num(r.PumpTemp),
			text(r.EvaporatorStatus),
			text(r.EvaporatorFanStatus),
			text(r.RefrigerantStatus),
			text(r.WaterStatus),
		})
	}
	return doc
}

// FileName is the download name for a check dated date, e.g.
// "Water Chiller Form_01-03-2024.pdf".
func FileName(date time.Time, ext string) string {
	return filePrefix + date.Format("02-01-2006") + "." + ext
}

func status(h check.CheckHeader) string {
	if h.Approved() {
		return "Approved"
	}
	return "Pending approval"
}

func num(v *float64) string {
	if v == nil {
		return emptyCell
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func text(v *string) string {
	if v == nil || *v == "" {
		return emptyCell
	}
	return *v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
