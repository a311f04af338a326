package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"water-chiller-check/internal/domain/actor"
	domain "water-chiller-check/internal/domain/check"
	"water-chiller-check/internal/infrastructure/cache"
	uc "water-chiller-check/internal/usecase/check"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Flasher stores one-shot messages shown on the actor's next page.
type Flasher interface {
	Put(ctx context.Context, owner string, f cache.Flash) error
	Pop(ctx context.Context, owner string) ([]cache.Flash, error)
}

type CheckHandler struct {
	uc    *uc.Usecase
	flash Flasher
	log   *zap.Logger
}

func NewCheckHandler(usecase *uc.Usecase, flash Flasher, log *zap.Logger) *CheckHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &CheckHandler{uc: usecase, flash: flash, log: log}
}

// ---- view models ----

type view struct {
	Title   string
	Actor   actor.Actor
	Flashes []cache.Flash
	Errors  []FieldError
	Data    any
}

type pageLink struct {
	Label  string
	URL    string
	Active bool
}

type listView struct {
	Page       *uc.PageDTO
	Month      string
	Search     string
	Links      []pageLink
	CanCreate  bool
	CanEdit    bool
	CanApprove bool
}

type formRow struct {
	No     int
	Key    string
	Code   string
	Values readingRequest
}

type formView struct {
	Action    string
	Edit      bool
	RequestID string
	Date      string
	Weekday   string
	Notes     string
	Rows      []formRow
}

type showView struct {
	Detail *uc.DetailDTO
}

// ---- handlers ----

func (h *CheckHandler) List(c echo.Context) error {
	a := currentActor(c)
	page, _ := strconv.Atoi(c.QueryParam("page"))
	in := uc.ListInput{Month: c.QueryParam("bulan"), Search: c.QueryParam("search"), Page: page}

	res, err := h.uc.List(c.Request().Context(), a, in)
	if err != nil {
		return h.fail(c, err)
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, res)
	}
	return h.render(c, http.StatusOK, "list.html", "Water chiller checks", nil, listView{
		Page:       res,
		Month:      in.Month,
		Search:     in.Search,
		Links:      pageLinks(c.Request().URL, res),
		CanCreate:  a.Can(actor.ActionCreate),
		CanEdit:    a.Can(actor.ActionEdit),
		CanApprove: a.Can(actor.ActionApprove),
	})
}

func (h *CheckHandler) CreateForm(c echo.Context) error {
	return h.render(c, http.StatusOK, "form.html", "New check", nil, createForm(checkRequest{
		Date:    time.Now().UTC().Format(dateLayout),
		Weekday: time.Now().UTC().Weekday().String(),
	}))
}

func (h *CheckHandler) Create(c echo.Context) error {
	a := currentActor(c)
	req, err := bindCheck(c, false)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		details := ToFieldErrors(err)
		if wantsJSON(c) {
			return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: details})
		}
		return h.render(c, http.StatusUnprocessableEntity, "form.html", "New check", details, createForm(req))
	}

	dto, err := h.uc.Create(c.Request().Context(), a, req.createInput())
	if errors.Is(err, domain.ErrDuplicateDate) && !wantsJSON(c) {
		h.put(c, a, cache.FlashWarning, "A check for "+req.Date+" already exists.")
		return c.Redirect(http.StatusSeeOther, "/water-chiller/create")
	}
	if err != nil {
		return h.fail(c, err)
	}
	if wantsJSON(c) {
		c.Response().Header().Set(echo.HeaderLocation, "/water-chiller/"+dto.CheckID)
		return c.JSON(http.StatusCreated, dto)
	}
	h.put(c, a, cache.FlashSuccess, "Check for "+dto.Date+" saved.")
	return c.Redirect(http.StatusSeeOther, "/water-chiller")
}

func (h *CheckHandler) EditForm(c echo.Context) error {
	detail, err := h.uc.Get(c.Request().Context(), currentActor(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, detail)
	}
	return h.render(c, http.StatusOK, "form.html", "Edit check", nil, editForm(detail, nil))
}

func (h *CheckHandler) Update(c echo.Context) error {
	a := currentActor(c)
	checkID := c.Param("id")
	req, err := bindCheck(c, true)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}
	if err := c.Validate(&req); err != nil {
		details := ToFieldErrors(err)
		if wantsJSON(c) {
			return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation failed", Details: details})
		}
		detail, gerr := h.uc.Get(c.Request().Context(), a, checkID)
		if gerr != nil {
			return h.fail(c, gerr)
		}
		return h.render(c, http.StatusUnprocessableEntity, "form.html", "Edit check", details, editForm(detail, &req))
	}

	dto, err := h.uc.Update(c.Request().Context(), a, checkID, req.updateInput())
	if errors.Is(err, domain.ErrDuplicateDate) && !wantsJSON(c) {
		h.put(c, a, cache.FlashWarning, "A check for "+req.Date+" already exists.")
		return c.Redirect(http.StatusSeeOther, "/water-chiller/"+checkID+"/edit")
	}
	if err != nil {
		return h.fail(c, err)
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, dto)
	}
	h.put(c, a, cache.FlashSuccess, "Check for "+dto.Date+" updated.")
	return c.Redirect(http.StatusSeeOther, "/water-chiller")
}

func (h *CheckHandler) Show(c echo.Context) error {
	detail, err := h.uc.Get(c.Request().Context(), currentActor(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, detail)
	}
	return h.render(c, http.StatusOK, "show.html", "Check "+detail.Check.Date, nil, showView{Detail: detail})
}

func (h *CheckHandler) Approve(c echo.Context) error {
	a := currentActor(c)
	dto, err := h.uc.Approve(c.Request().Context(), a, c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if wantsJSON(c) {
		return c.JSON(http.StatusOK, dto)
	}
	h.put(c, a, cache.FlashSuccess, "Check for "+dto.Date+" approved.")
	return c.Redirect(http.StatusSeeOther, "/water-chiller")
}

func (h *CheckHandler) ExportPDF(c echo.Context) error  { return h.export(c, "pdf") }
func (h *CheckHandler) ExportXLSX(c echo.Context) error { return h.export(c, "xlsx") }

func (h *CheckHandler) export(c echo.Context, format string) error {
	f, err := h.uc.Export(c.Request().Context(), currentActor(c), c.Param("id"), format)
	if err != nil {
		return h.fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", f.FileName))
	return c.Blob(http.StatusOK, f.ContentType, f.Body)
}

// ---- helpers ----

// fail maps use case errors to a status, as JSON or an error page.
func (h *CheckHandler) fail(c echo.Context, err error) error {
	var (
		status  int
		msg     string
		details []FieldError
	)
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, uc.ErrUnsupportedFormat):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, domain.ErrDuplicateDate):
		status, msg = http.StatusConflict, "a check for this date already exists"
	case errors.Is(err, uc.ErrInvalidInput):
		status, msg = http.StatusUnprocessableEntity, "validation failed"
		details = []FieldError{{Field: "_", Message: err.Error()}}
	default:
		h.log.Error("request failed",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Path()),
			zap.Error(err))
		status, msg = http.StatusInternalServerError, "internal error"
	}
	if wantsJSON(c) {
		return c.JSON(status, ErrorResponse{Error: msg, Details: details})
	}
	return h.render(c, status, "error.html", http.StatusText(status), details, msg)
}

func (h *CheckHandler) render(c echo.Context, status int, page, title string, errs []FieldError, data any) error {
	a := currentActor(c)
	v := view{Title: title, Actor: a, Errors: errs, Data: data}
	if h.flash != nil {
		flashes, err := h.flash.Pop(c.Request().Context(), a.Username)
		if err != nil {
			h.log.Warn("failed to pop flashes", zap.String("actor", a.Username), zap.Error(err))
		}
		v.Flashes = flashes
	}
	return c.Render(status, page, v)
}

func (h *CheckHandler) put(c echo.Context, a actor.Actor, level cache.FlashLevel, msg string) {
	if h.flash == nil {
		return
	}
	if err := h.flash.Put(c.Request().Context(), a.Username, cache.Flash{Level: level, Message: msg}); err != nil {
		h.log.Warn("failed to store flash", zap.String("actor", a.Username), zap.Error(err))
	}
}

func currentActor(c echo.Context) actor.Actor {
	a, _ := actor.FromContext(c.Request().Context())
	return a
}

func wantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// pageLinks keeps every active query parameter and only swaps page.
func pageLinks(u *url.URL, p *uc.PageDTO) []pageLink {
	links := make([]pageLink, 0, p.LastPage)
	for i := 1; i <= p.LastPage; i++ {
		q := u.Query()
		q.Set("page", strconv.Itoa(i))
		links = append(links, pageLink{
			Label:  strconv.Itoa(i),
			URL:    u.Path + "?" + q.Encode(),
			Active: i == p.Page,
		})
	}
	return links
}

func createForm(req checkRequest) formView {
	v := formView{
		Action:    "/water-chiller",
		RequestID: uuid.NewString(),
		Date:      req.Date,
		Weekday:   req.Weekday,
		Notes:     req.Notes,
		Rows:      make([]formRow, 0, domain.MachineCount),
	}
	for i := 1; i <= domain.MachineCount; i++ {
		key := strconv.Itoa(i)
		v.Rows = append(v.Rows, formRow{No: i, Key: key, Code: domain.MachineCode(i), Values: req.Readings[key]})
	}
	return v
}

// editForm shows the stored rows, overlaid with a rejected submission when given.
func editForm(d *uc.DetailDTO, submitted *checkRequest) formView {
	v := formView{
		Action:    "/water-chiller/" + d.Check.CheckID,
		Edit:      true,
		RequestID: uuid.NewString(),
		Date:      d.Check.Date,
		Weekday:   d.Check.Weekday,
		Rows:      make([]formRow, 0, len(d.Rows)),
	}
	if d.Check.Notes != nil {
		v.Notes = *d.Check.Notes
	}
	if submitted != nil {
		v.Date, v.Weekday, v.Notes = submitted.Date, submitted.Weekday, submitted.Notes
	}
	for _, r := range d.Rows {
		key := strconv.FormatUint(r.ID, 10)
		values := fromReadings(r.Readings)
		if submitted != nil {
			if s, ok := submitted.Readings[key]; ok {
				values = s
			}
		}
		v.Rows = append(v.Rows, formRow{No: r.MachineNo, Key: key, Code: r.MachineCode, Values: values})
	}
	return v
}

func fromReadings(r domain.Readings) readingRequest {
	num := func(v *float64) reading {
		if v == nil {
			return ""
		}
		return reading(strconv.FormatFloat(*v, 'f', -1, 64))
	}
	str := func(v *string) string {
		if v == nil {
			return ""
		}
		return *v
	}
	return readingRequest{
		CompressorTemp: num(r.CompressorTemp),
		CableTemp:      num(r.CableTemp),
		BreakerTemp:    num(r.BreakerTemp),
		WaterTemp:      num(r.WaterTemp),
		PumpTemp:       num(r.PumpTemp),
		Evaporator:     str(r.EvaporatorStatus),
		EvaporatorFan:  str(r.EvaporatorFanStatus),
		Refrigerant:    str(r.RefrigerantStatus),
		Water:          str(r.WaterStatus),
	}
}
