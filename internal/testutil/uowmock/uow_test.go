package uowmock

import (
	"context"
	"errors"
	"testing"

	"water-chiller-check/internal/domain/check"
	"water-chiller-check/internal/domain/uow"
	"water-chiller-check/internal/testutil/checkmock"
)

func TestUoW_WithinTx_Happy(t *testing.T) {
	ctx := context.Background()

	headers := &checkmock.HeaderRepo{}
	results := &checkmock.ResultRepo{}
	repos := uow.Repos{Headers: headers, Results: results}

	innerCalled := false
	m := &UoW{
		WithinTxFn: func(gotCtx context.Context, fn func(r uow.Repos) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinTx: ctx mismatch")
			}
			return fn(repos)
		},
	}

	err := m.WithinTx(ctx, func(r uow.Repos) error {
		innerCalled = true
		if r.Headers != headers || r.Results != results {
			t.Fatalf("WithinTx: repos not forwarded correctly")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTx: unexpected err: %v", err)
	}
	if !innerCalled {
		t.Fatalf("WithinTx: inner fn not called")
	}
}

func TestUoW_WithinTx_PropagatesError(t *testing.T) {
	sentinel := errors.New("boom")
	m := New().WithWithinTx(func(context.Context, func(uow.Repos) error) error { return sentinel })
	if err := m.WithinTx(context.Background(), func(uow.Repos) error { return nil }); !errors.Is(err, sentinel) {
		t.Fatalf("WithinTx: want %v, got %v", sentinel, err)
	}
}

func TestUoW_Default_Unimplemented(t *testing.T) {
	ctx := context.Background()
	m := &UoW{}
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: want errUnimplemented, got %v", err)
	}
	if err := m.WithinCheckTx(ctx, "x", func(uow.Repos, *check.CheckHeader) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinCheckTx default: want errUnimplemented, got %v", err)
	}
}

func TestPassthrough(t *testing.T) {
	ctx := context.Background()
	repos := uow.Repos{Headers: &checkmock.HeaderRepo{}, Results: &checkmock.ResultRepo{}}
	lock := &check.CheckHeader{ID: 7, CheckID: "c7"}
	m := Passthrough(repos, lock)

	var got *check.CheckHeader
	err := m.WithinCheckTx(ctx, "c7", func(r uow.Repos, h *check.CheckHeader) error {
		if r.Headers != repos.Headers {
			t.Fatalf("WithinCheckTx: repos not forwarded")
		}
		got = h
		return nil
	})
	if err != nil {
		t.Fatalf("WithinCheckTx: unexpected err: %v", err)
	}
	if got != lock {
		t.Fatalf("WithinCheckTx: header not forwarded: %+v", got)
	}

	sentinel := errors.New("stop")
	if err := m.WithinTx(ctx, func(uow.Repos) error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("WithinTx: want %v, got %v", sentinel, err)
	}
}

func TestUoW_FluentSetters_And_Reset(t *testing.T) {
	m := New()
	m.WithWithinTx(func(context.Context, func(uow.Repos) error) error { return nil }).
		WithWithinCheckTx(func(context.Context, string, func(uow.Repos, *check.CheckHeader) error) error { return nil })
	if m.WithinTxFn == nil || m.WithinCheckTxFn == nil {
		t.Fatalf("fluent setters didn't assign funcs")
	}
	m.Reset()
	if m.WithinTxFn != nil || m.WithinCheckTxFn != nil {
		t.Fatalf("Reset should clear function fields")
	}
}
