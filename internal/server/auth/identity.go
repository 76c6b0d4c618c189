package auth

import "context"

// Identity is the per-request trust assertion. The zero value is anonymous.
type Identity struct {
	Authenticated bool
	UserID        string
	Email         string
}

type ctxKey string

const identityKey ctxKey = "identity"

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity stored in ctx, or an anonymous
// one when the authenticator never ran.
func IdentityFromContext(ctx context.Context) Identity {
	id, ok := ctx.Value(identityKey).(Identity)
	if !ok {
		return Identity{}
	}
	return id
}
