package auth

import "context"

type identityKey struct{}

// Identity is the authenticated caller of a request.
type Identity struct {
	TenantID string
	Role     Role
	Subject  string
}

// WithIdentity stores the caller identity in ctx.
func WithIdentity(ctx context.Context, tenantID string, role Role, subject string) context.Context {
	return context.WithValue(ctx, identityKey{}, Identity{TenantID: tenantID, Role: role, Subject: subject})
}

// IdentityFromContext returns the caller identity; ok is false for
// unauthenticated requests.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// TenantIDFromContext returns the caller tenant, or "".
func TenantIDFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.TenantID
}

// RoleFromContext returns the caller role, or "".
func RoleFromContext(ctx context.Context) Role {
	id, _ := IdentityFromContext(ctx)
	return id.Role
}

// SubjectFromContext returns the token subject, or "".
func SubjectFromContext(ctx context.Context) string {
	id, _ := IdentityFromContext(ctx)
	return id.Subject
}

// SameTenant reports whether the caller may act on tenantID. Requests that
// carry no identity pass; the middleware decides which routes need one.
func SameTenant(ctx context.Context, tenantID string) bool {
	caller := TenantIDFromContext(ctx)
	return caller == "" || tenantID == "" || caller == tenantID
}
