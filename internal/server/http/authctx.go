package httpserver

import (
	"context"

	"github.com/and161185/cargodesk/internal/model"
)

type ctxKey string

const claimsKey ctxKey = "cd.claims"

// WithClaims stores the authenticated identity in context.
func WithClaims(ctx context.Context, c model.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromCtx fetches the authenticated identity from context.
func ClaimsFromCtx(ctx context.Context) (model.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return model.Claims{}, false
	}
	c, ok := v.(model.Claims)
	return c, ok
}
