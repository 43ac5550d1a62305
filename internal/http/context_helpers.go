package httpx

import (
	"context"

	domainauth "github.com/campushub/eventhub/internal/domain/auth"
)

type claimsKey struct{}

type directoryReadKey struct{}

// SetClaimsInContext attaches the gate's verified claims. Nil leaves ctx as is.
func SetClaimsInContext(ctx context.Context, claims *domainauth.Token) context.Context {
	if claims == nil {
		return ctx
	}
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims the gate attached, if any. Public routes
// reached without a session have none.
func ClaimsFromContext(ctx context.Context) (*domainauth.Token, bool) {
	if claims, ok := ctx.Value(claimsKey{}).(*domainauth.Token); ok && claims != nil {
		return claims, true
	}
	return nil, false
}

// markDirectoryRead records that the gate already consulted the directory for
// this request, so handlers do not repeat the read.
func markDirectoryRead(ctx context.Context) context.Context {
	return context.WithValue(ctx, directoryReadKey{}, true)
}

func directoryReadFromContext(ctx context.Context) bool {
	read, _ := ctx.Value(directoryReadKey{}).(bool)
	return read
}
