// Package identity resolves who is making a request.
//
// A request carries an optional bearer credential. It resolves to exactly one of
// an authenticated Principal, Anonymous (no credential) or Invalid (a credential
// was presented but is malformed, expired, revoked or carries an unknown role).
// Read paths treat Invalid like Anonymous; actions that need a caller reject both.
package identity

import (
	"context"

	"github.com/google/uuid"

	"devdir/internal/model"
)

// Kind classifies a resolved credential.
type Kind int

const (
	KindAnonymous Kind = iota
	KindInvalid
	KindAuthenticated
)

func (k Kind) String() string {
	switch k {
	case KindAuthenticated:
		return "authenticated"
	case KindInvalid:
		return "invalid"
	default:
		return "anonymous"
	}
}

// Principal is the caller of a single request. It is a value and never mutated.
type Principal struct {
	Kind   Kind
	UserID uuid.UUID
	Role   model.Role
}

// Anonymous is the principal of a request without a credential.
func Anonymous() Principal {
	return Principal{Kind: KindAnonymous}
}

// Invalid is the principal of a request whose credential could not be trusted.
func Invalid() Principal {
	return Principal{Kind: KindInvalid}
}

// Authenticated builds the principal of a verified credential.
func Authenticated(userID uuid.UUID, role model.Role) Principal {
	return Principal{Kind: KindAuthenticated, UserID: userID, Role: role}
}

// IsAuthenticated reports whether p carries a verified user and role.
func (p Principal) IsAuthenticated() bool {
	return p.Kind == KindAuthenticated
}

// HasRole reports whether p is authenticated with role r.
func (p Principal) HasRole(r model.Role) bool {
	return p.IsAuthenticated() && p.Role == r
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored in ctx, or Anonymous.
func FromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok {
		return p
	}
	return Anonymous()
}
