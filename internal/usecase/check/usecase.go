package check

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"water-chiller-check/internal/domain/actor"
	domainCheck "water-chiller-check/internal/domain/check"
	"water-chiller-check/internal/domain/uow"
	"water-chiller-check/internal/infrastructure/metrics"
	"water-chiller-check/internal/report"
	"water-chiller-check/pkg/id"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	PageSize   = 10
	dateLayout = "2006-01-02"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnsupportedFormat = errors.New("unsupported report format")
)

type Options struct {
	// Strict runs create/update in a transaction and relies on the unique
	// (date, author) index; otherwise writes are sequential and non-atomic.
	Strict bool
	// OwnershipCheck hides other authors' checks from checkers on
	// show/edit/update/export.
	OwnershipCheck bool
}

type Usecase struct {
	headers   domainCheck.HeaderRepository
	results   domainCheck.ResultRepository
	uow       uow.UnitOfWork
	opts      Options
	renderers map[string]report.Renderer
	metrics   metrics.Recorder
	log       *zap.Logger
}

func NewUsecase(headers domainCheck.HeaderRepository, results domainCheck.ResultRepository, tx uow.UnitOfWork, opts Options) *Usecase {
	return &Usecase{
		headers: headers,
		results: results,
		uow:     tx,
		opts:    opts,
		renderers: map[string]report.Renderer{
			"pdf":  report.PDFRenderer{},
			"xlsx": report.XLSXRenderer{},
		},
		metrics: metrics.Nop{},
		log:     zap.NewNop(),
	}
}

func (u *Usecase) WithMetrics(m metrics.Recorder) *Usecase { u.metrics = m; return u }
func (u *Usecase) WithLogger(l *zap.Logger) *Usecase      { u.log = l; return u }

// WithRenderer registers (or replaces) the renderer for an export format.
func (u *Usecase) WithRenderer(format string, r report.Renderer) *Usecase {
	u.renderers[format] = r
	return u
}

func (u *Usecase) List(ctx context.Context, a actor.Actor, in ListInput) (*PageDTO, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	f := domainCheck.ListFilter{
		Search: strings.TrimSpace(in.Search),
		Limit:  PageSize,
		Offset: (page - 1) * PageSize,
	}
	// checkers only ever see their own checks, whatever the filters say
	if a.IsChecker() {
		f.Owner = a.Username
	}
	if m, ok := ParseMonth(in.Month); ok {
		f.Month = m
	}

	items, total, err := u.headers.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := &PageDTO{
		Items:    make([]CheckDTO, 0, len(items)),
		Page:     page,
		PerPage:  PageSize,
		Total:    total,
		LastPage: int((total + PageSize - 1) / PageSize),
	}
	if out.LastPage == 0 {
		out.LastPage = 1
	}
	for i := range items {
		out.Items = append(out.Items, toCheckDTO(&items[i]))
	}
	return out, nil
}

func (u *Usecase) Create(ctx context.Context, a actor.Actor, in CreateInput) (*CheckDTO, error) {
	if in.Date.IsZero() || strings.TrimSpace(in.Weekday) == "" {
		return nil, ErrInvalidInput
	}
	readings := make(map[int]domainCheck.Readings, domainCheck.MachineCount)
	for i, ri := range in.Readings {
		if i < 1 || i > domainCheck.MachineCount {
			return nil, fmt.Errorf("%w: no machine %d", ErrInvalidInput, i)
		}
		r, err := normalize(ri)
		if err != nil {
			return nil, fmt.Errorf("machine %s: %w", domainCheck.MachineCode(i), err)
		}
		readings[i] = r
	}

	h := &domainCheck.CheckHeader{
		CheckID:   id.NewID32(),
		CheckDate: dateOnly(in.Date),
		Weekday:   strings.TrimSpace(in.Weekday),
		CheckedBy: a.Username,
		Notes:     optional(in.Notes),
	}
	// checkers collide only with themselves; everyone else with any author
	scope := ""
	if a.IsChecker() {
		scope = a.Username
	}

	var err error
	if u.opts.Strict {
		if u.uow == nil {
			return nil, errors.New("strict write mode requires a unit of work")
		}
		err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
			return insertCheck(ctx, r.Headers, r.Results, h, readings, scope)
		})
	} else {
		err = insertCheck(ctx, u.headers, u.results, h, readings, scope)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = domainCheck.ErrDuplicateDate
	}
	if errors.Is(err, domainCheck.ErrDuplicateDate) {
		u.metrics.DuplicateRejected()
		u.log.Info("duplicate check rejected",
			zap.String("date", h.CheckDate.Format(dateLayout)),
			zap.String("checked_by", a.Username))
		return nil, domainCheck.ErrDuplicateDate
	}
	if err != nil {
		return nil, err
	}

	u.metrics.CheckCreated()
	u.log.Info("check created",
		zap.String("check_id", h.CheckID),
		zap.String("date", h.CheckDate.Format(dateLayout)),
		zap.String("checked_by", a.Username))
	dto := toCheckDTO(h)
	return &dto, nil
}

// insertCheck is the check-then-insert sequence. Without a surrounding
// transaction two concurrent callers can both pass the existence check.
func insertCheck(ctx context.Context, headers domainCheck.HeaderRepository, results domainCheck.ResultRepository,
	h *domainCheck.CheckHeader, readings map[int]domainCheck.Readings, scope string) error {
	exists, err := headers.ExistsForDate(ctx, h.CheckDate, scope)
	if err != nil {
		return err
	}
	if exists {
		return domainCheck.ErrDuplicateDate
	}
	if err := headers.Create(ctx, h); err != nil {
		return err
	}
	return results.CreateBatch(ctx, domainCheck.NewRows(h.ID, readings))
}

// Get loads a check with all its rows, for the edit form and the detail page.
func (u *Usecase) Get(ctx context.Context, a actor.Actor, checkID string) (*DetailDTO, error) {
	h, rows, err := u.load(ctx, a, checkID)
	if err != nil {
		return nil, err
	}
	return &DetailDTO{Check: toCheckDTO(h), Rows: toRowDTOs(rows)}, nil
}

func (u *Usecase) Update(ctx context.Context, a actor.Actor, checkID string, in UpdateInput) (*CheckDTO, error) {
	if in.Date.IsZero() || strings.TrimSpace(in.Weekday) == "" {
		return nil, ErrInvalidInput
	}
	// parse everything before the first write
	readings := make(map[uint64]domainCheck.Readings, len(in.Readings))
	rowIDs := make([]uint64, 0, len(in.Readings))
	for rowID, ri := range in.Readings {
		r, err := normalize(ri)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowID, err)
		}
		readings[rowID] = r
		rowIDs = append(rowIDs, rowID)
	}
	sort.Slice(rowIDs, func(i, j int) bool { return rowIDs[i] < rowIDs[j] })

	apply := func(r uow.Repos, h *domainCheck.CheckHeader) error {
		if !u.visible(a, h) {
			return domainCheck.ErrNotFound
		}
		h.CheckDate = dateOnly(in.Date)
		h.Weekday = strings.TrimSpace(in.Weekday)
		h.Notes = optional(in.Notes)
		if err := r.Headers.Save(ctx, h); err != nil {
			return err
		}
		for _, rowID := range rowIDs {
			row, err := r.Results.GetByID(ctx, h.ID, rowID)
			if err != nil {
				return err
			}
			row.Readings = readings[rowID]
			if err := r.Results.SaveReadings(ctx, row); err != nil {
				return err
			}
		}
		return nil
	}

	var (
		h   *domainCheck.CheckHeader
		err error
	)
	if u.opts.Strict {
		if u.uow == nil {
			return nil, errors.New("strict write mode requires a unit of work")
		}
		err = u.uow.WithinCheckTx(ctx, checkID, func(r uow.Repos, locked *domainCheck.CheckHeader) error {
			h = locked
			return apply(r, locked)
		})
	} else {
		// rows are written one by one; a bad row id mid-way leaves earlier rows updated
		h, err = u.headers.GetByCheckID(ctx, checkID)
		if err == nil {
			err = apply(uow.Repos{Headers: u.headers, Results: u.results}, h)
		}
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, domainCheck.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, domainCheck.ErrDuplicateDate
	case err != nil:
		return nil, err
	}

	u.metrics.CheckUpdated()
	u.log.Info("check updated",
		zap.String("check_id", h.CheckID),
		zap.String("by", a.Username),
		zap.Int("rows", len(rowIDs)))
	dto := toCheckDTO(h)
	return &dto, nil
}

// Approve records a as the approver. It neither blocks self-approval nor
// re-approval; the latest approver wins.
func (u *Usecase) Approve(ctx context.Context, a actor.Actor, checkID string) (*CheckDTO, error) {
	h, err := u.header(ctx, a, checkID)
	if err != nil {
		return nil, err
	}
	if err := u.headers.SetApprovedBy(ctx, h.ID, a.Username); err != nil {
		return nil, err
	}
	approver := a.Username
	h.ApprovedBy = &approver

	u.metrics.CheckApproved()
	u.log.Info("check approved", zap.String("check_id", h.CheckID), zap.String("approved_by", approver))
	dto := toCheckDTO(h)
	return &dto, nil
}

// Export renders the check in format ("pdf" or "xlsx"). Nothing is cached.
func (u *Usecase) Export(ctx context.Context, a actor.Actor, checkID, format string) (*FileDTO, error) {
	r, ok := u.renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	h, rows, err := u.load(ctx, a, checkID)
	if err != nil {
		return nil, err
	}
	body, err := r.Render(report.Layout(*h, rows))
	if err != nil {
		return nil, err
	}
	u.metrics.ReportExported(format)
	return &FileDTO{
		FileName:    report.FileName(h.CheckDate, r.Extension()),
		ContentType: r.ContentType(),
		Body:        body,
	}, nil
}

func (u *Usecase) header(ctx context.Context, a actor.Actor, checkID string) (*domainCheck.CheckHeader, error) {
	if !id.Valid(checkID) {
		return nil, domainCheck.ErrNotFound
	}
	h, err := u.headers.GetByCheckID(ctx, checkID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainCheck.ErrNotFound
		}
		return nil, err
	}
	if !u.visible(a, h) {
		return nil, domainCheck.ErrNotFound
	}
	return h, nil
}

func (u *Usecase) load(ctx context.Context, a actor.Actor, checkID string) (*domainCheck.CheckHeader, []domainCheck.MeasurementRow, error) {
	h, err := u.header(ctx, a, checkID)
	if err != nil {
		return nil, nil, err
	}
	rows, err := u.results.ListByHeader(ctx, h.ID)
	if err != nil {
		return nil, nil, err
	}
	return h, rows, nil
}

func (u *Usecase) visible(a actor.Actor, h *domainCheck.CheckHeader) bool {
	return !u.opts.OwnershipCheck || !a.IsChecker() || h.CheckedBy == a.Username
}

// ParseMonth accepts "2006-01", "2006-01-02" or RFC3339 and returns the first
// day of that month. Anything else is treated as no filter.
func ParseMonth(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01", dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func normalize(in ReadingInput) (domainCheck.Readings, error) {
	var (
		out domainCheck.Readings
		err error
	)
	temps := []struct {
		dst **float64
		raw string
	}{
		{&out.CompressorTemp, in.CompressorTemp},
		{&out.CableTemp, in.CableTemp},
		{&out.BreakerTemp, in.BreakerTemp},
		{&out.WaterTemp, in.WaterTemp},
		{&out.PumpTemp, in.PumpTemp},
	}
	for _, t := range temps {
		if *t.dst, err = optionalFloat(t.raw); err != nil {
			return domainCheck.Readings{}, err
		}
	}
	out.EvaporatorStatus = optional(in.Evaporator)
	out.EvaporatorFanStatus = optional(in.EvaporatorFan)
	out.RefrigerantStatus = optional(in.Refrigerant)
	out.WaterStatus = optional(in.Water)
	return out, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func optionalFloat(s string) (*float64, error) {
	f, ok := domainCheck.ParseReading(s)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a reading", ErrInvalidInput, strings.TrimSpace(s))
	}
	return f, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
