package actor

import (
	"context"
	"errors"
	"strings"
)

type Role string

const (
	RoleChecker  Role = "checker"
	RoleApprover Role = "approver"
	RoleAdmin    Role = "admin"
)

type Action string

const (
	ActionList    Action = "list"
	ActionCreate  Action = "create"
	ActionEdit    Action = "edit"
	ActionShow    Action = "show"
	ActionApprove Action = "approve"
	ActionExport  Action = "export"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

var permissions = map[Role]map[Action]bool{
	RoleChecker: {
		ActionList: true, ActionCreate: true, ActionEdit: true,
		ActionShow: true, ActionExport: true,
	},
	RoleApprover: {
		ActionList: true, ActionShow: true, ActionApprove: true, ActionExport: true,
	},
	RoleAdmin: {
		ActionList: true, ActionCreate: true, ActionEdit: true,
		ActionShow: true, ActionApprove: true, ActionExport: true,
	},
}

// Actor is the authenticated user a request acts on behalf of.
type Actor struct {
	Username string
	Role     Role
}

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := permissions[r]
	return r, ok
}

func New(username, role string) (Actor, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Actor{}, ErrUnauthenticated
	}
	r, ok := ParseRole(role)
	if !ok {
		return Actor{}, ErrUnauthenticated
	}
	return Actor{Username: username, Role: r}, nil
}

// IsChecker reports whether the actor only sees its own checks.
func (a Actor) IsChecker() bool { return a.Role == RoleChecker }

func (a Actor) Can(act Action) bool { return permissions[a.Role][act] }

// Authorize returns ErrForbidden when the role lacks the action.
func Authorize(a Actor, act Action) error {
	if a.Username == "" {
		return ErrUnauthenticated
	}
	if !a.Can(act) {
		return ErrForbidden
	}
	return nil
}

type ctxKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

func FromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(ctxKey{}).(Actor)
	return a, ok
}
