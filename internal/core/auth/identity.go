package auth

import (
	"context"
	"strings"
)

// Identity is the authenticated principal attached to a request context.
type Identity struct {
	ID    string
	Email string
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFromContext returns nil for unauthenticated requests.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKey{}).(*Identity)
	return id
}

// DeriveIdentity turns an Authorization header into an identity, or nil.
// This boundary never fails: a missing header, a non-Bearer scheme or an
// invalid token all yield an unauthenticated request. Resolvers that need
// an identity reject its absence themselves.
func (j *JWTer) DeriveIdentity(authorization string) *Identity {
	const prefix = "Bearer "
	if !strings.HasPrefix(authorization, prefix) {
		return nil
	}
	claims, err := j.Parse(strings.TrimPrefix(authorization, prefix))
	if err != nil {
		return nil
	}
	return &Identity{ID: claims.UID, Email: claims.Email}
}
