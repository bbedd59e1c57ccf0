package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextOperatorKey ctxKey = "operator"

const (
	OperatorRoleStaff   = "staff"
	OperatorRoleManager = "manager"
	OperatorRoleAdmin   = "admin"
)

// Operator is the authenticated dashboard user acting on the API.
type Operator struct {
	Subject string `json:"subject"`
	Role    string `json:"role"`
}

func (o *Operator) HasAnyRole(roles ...string) bool {
	if o == nil {
		return false
	}
	for _, r := range roles {
		if o.Role == r {
			return true
		}
	}
	return false
}

func IsKnownOperatorRole(role string) bool {
	switch role {
	case OperatorRoleStaff, OperatorRoleManager, OperatorRoleAdmin:
		return true
	}
	return false
}

func OperatorFromContext(ctx context.Context) (*Operator, bool) {
	if ctx == nil {
		return nil, false
	}
	op, ok := ctx.Value(ContextOperatorKey).(*Operator)
	return op, ok && op != nil
}

func ContextWithOperator(ctx context.Context, op *Operator) context.Context {
	return context.WithValue(ctx, ContextOperatorKey, op)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
