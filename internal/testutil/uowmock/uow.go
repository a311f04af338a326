package uowmock

import (
	"context"
	"errors"

	"water-chiller-check/internal/domain/check"
	"water-chiller-check/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn      func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinCheckTxFn func(ctx context.Context, checkID string, fn func(r uow.Repos, h *check.CheckHeader) error) error
}

// Passthrough runs every callback directly against repos, with h as the
// locked header for WithinCheckTx.
func Passthrough(repos uow.Repos, h *check.CheckHeader) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error {
			return fn(repos)
		},
		WithinCheckTxFn: func(_ context.Context, _ string, fn func(uow.Repos, *check.CheckHeader) error) error {
			return fn(repos, h)
		},
	}
}

func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinCheckTx(fn func(context.Context, string, func(uow.Repos, *check.CheckHeader) error) error) *UoW {
	m.WithinCheckTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinCheckTx(ctx context.Context, checkID string, fn func(r uow.Repos, h *check.CheckHeader) error) error {
	if m.WithinCheckTxFn != nil {
		return m.WithinCheckTxFn(ctx, checkID, fn)
	}
	return errUnimplemented
}
