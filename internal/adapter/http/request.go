package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	uc "water-chiller-check/internal/usecase/check"

	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

// reading accepts either a JSON string or a JSON number, so API clients can
// send 41.5 while forms send "41.5".
type reading string

func (r *reading) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*r = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = reading(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*r = reading(n.String())
	}
	return nil
}

type readingRequest struct {
	CompressorTemp reading `json:"compressor_temp" validate:"temperature"`
	CableTemp      reading `json:"cable_temp" validate:"temperature"`
	BreakerTemp    reading `json:"breaker_temp" validate:"temperature"`
	WaterTemp      reading `json:"water_temp" validate:"temperature"`
	PumpTemp       reading `json:"pump_temp" validate:"temperature"`
	Evaporator     string  `json:"evaporator" validate:"max=50"`
	EvaporatorFan  string  `json:"evaporator_fan" validate:"max=50"`
	Refrigerant    string  `json:"refrigerant" validate:"max=50"`
	Water          string  `json:"water" validate:"max=50"`
}

func (r readingRequest) input() uc.ReadingInput {
	return uc.ReadingInput{
		CompressorTemp: string(r.CompressorTemp),
		CableTemp:      string(r.CableTemp),
		BreakerTemp:    string(r.BreakerTemp),
		WaterTemp:      string(r.WaterTemp),
		PumpTemp:       string(r.PumpTemp),
		Evaporator:     r.Evaporator,
		EvaporatorFan:  r.EvaporatorFan,
		Refrigerant:    r.Refrigerant,
		Water:          r.Water,
	}
}

// checkRequest is the create/update submission. Readings are keyed by
// machine index on create and by row id on update.
type checkRequest struct {
	Date     string                    `json:"date" validate:"required,datetime=2006-01-02"`
	Weekday  string                    `json:"weekday" validate:"required,max=20"`
	Notes    string                    `json:"notes"`
	Readings map[string]readingRequest `json:"readings" validate:"dive,keys,posint,endkeys"`

	update bool
}

var reIndexed = regexp.MustCompile(`^([a-z_]+)\[([^\]]*)\]$`)

// readingSetters maps form field names to their slot in readingRequest.
var readingSetters = map[string]func(*readingRequest, string){
	"compressor_temp": func(r *readingRequest, v string) { r.CompressorTemp = reading(v) },
	"cable_temp":      func(r *readingRequest, v string) { r.CableTemp = reading(v) },
	"breaker_temp":    func(r *readingRequest, v string) { r.BreakerTemp = reading(v) },
	"water_temp":      func(r *readingRequest, v string) { r.WaterTemp = reading(v) },
	"pump_temp":       func(r *readingRequest, v string) { r.PumpTemp = reading(v) },
	"evaporator":      func(r *readingRequest, v string) { r.Evaporator = v },
	"evaporator_fan":  func(r *readingRequest, v string) { r.EvaporatorFan = v },
	"refrigerant":     func(r *readingRequest, v string) { r.Refrigerant = v },
	"water":           func(r *readingRequest, v string) { r.Water = v },
}

// bindCheck decodes a JSON body or an HTML form into checkRequest.
// On update forms only rows listed in machine_code[<rowID>] are taken.
func bindCheck(c echo.Context, update bool) (checkRequest, error) {
	var req checkRequest
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
			return req, errors.New("invalid body")
		}
	} else {
		form, err := c.FormParams()
		if err != nil {
			return req, errors.New("invalid form")
		}
		req = fromForm(form, update)
	}
	req.update = update
	req.Date = strings.TrimSpace(req.Date)
	req.Weekday = strings.TrimSpace(req.Weekday)
	return req, nil
}

func fromForm(form url.Values, update bool) checkRequest {
	req := checkRequest{
		Date:     form.Get("date"),
		Weekday:  form.Get("weekday"),
		Notes:    form.Get("notes"),
		Readings: map[string]readingRequest{},
	}
	referenced := map[string]bool{}
	for key := range form {
		if m := reIndexed.FindStringSubmatch(key); m != nil && m[1] == "machine_code" {
			referenced[m[2]] = true
		}
	}
	for key, values := range form {
		m := reIndexed.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		set, ok := readingSetters[m[1]]
		if !ok || (update && !referenced[m[2]]) {
			continue
		}
		r := req.Readings[m[2]]
		set(&r, values[0])
		req.Readings[m[2]] = r
	}
	// a referenced row with every field blank is still overwritten with nulls
	for k := range referenced {
		if _, ok := req.Readings[k]; !ok && update {
			req.Readings[k] = readingRequest{}
		}
	}
	return req
}

func (r checkRequest) date() time.Time {
	t, _ := time.Parse(dateLayout, r.Date)
	return t
}

func (r checkRequest) createInput() uc.CreateInput {
	in := uc.CreateInput{Date: r.date(), Weekday: r.Weekday, Notes: r.Notes, Readings: map[int]uc.ReadingInput{}}
	for k, v := range r.Readings {
		if i, err := strconv.Atoi(k); err == nil {
			in.Readings[i] = v.input()
		}
	}
	return in
}

func (r checkRequest) updateInput() uc.UpdateInput {
	in := uc.UpdateInput{Date: r.date(), Weekday: r.Weekday, Notes: r.Notes, Readings: map[uint64]uc.ReadingInput{}}
	for k, v := range r.Readings {
		if n, err := strconv.ParseUint(k, 10, 64); err == nil {
			in.Readings[n] = v.input()
		}
	}
	return in
}
