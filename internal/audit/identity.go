package audit

import (
	"context"
	"strings"
)

// SystemIdentity is recorded when no authenticated caller is present,
// e.g. for scheduled jobs.
const SystemIdentity = "System"

type identityKey struct{}

// WithIdentity returns a context carrying the caller identity stamped on
// audit fields.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the caller identity, or SystemIdentity when
// none is set.
func IdentityFromContext(ctx context.Context) string {
	if ctx == nil {
		return SystemIdentity
	}
	identity, _ := ctx.Value(identityKey{}).(string)
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return SystemIdentity
	}
	return identity
}
