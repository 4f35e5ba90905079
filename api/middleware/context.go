package middleware

import (
	"context"

	"github.com/shopsphere/shopsphere-backend/pkg/auth/session"
)

type contextKey string

const (
	ctxUserID    contextKey = "user_id"
	ctxRole      contextKey = "actor_role"
	ctxPrincipal contextKey = "principal"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// PrincipalFromContext returns the full identity snapshot seeded by Auth.
func PrincipalFromContext(ctx context.Context) *session.Principal {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxPrincipal).(*session.Principal); ok {
		return v
	}
	return nil
}

// WithPrincipal injects the principal and its derived fields into the context.
func WithPrincipal(ctx context.Context, principal *session.Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if principal == nil {
		return ctx
	}
	ctx = context.WithValue(ctx, ctxPrincipal, principal)
	ctx = context.WithValue(ctx, ctxUserID, principal.UserID.String())
	return context.WithValue(ctx, ctxRole, string(principal.Role))
}
