package uow

import (
	"context"

	"water-chiller-check/internal/domain/check"
)

type Repos struct {
	Headers check.HeaderRepository
	Results check.ResultRepository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: load the header first, then pass it in
	WithinCheckTx(ctx context.Context, checkID string, fn func(r Repos, h *check.CheckHeader) error) error
}
