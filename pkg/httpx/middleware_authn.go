package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/borealfin/portal/pkg/jwtx"
	"github.com/borealfin/portal/pkg/slogx"
)

// PortalAuthMiddleware verifies a bearer portal access token and injects the
// holder's identity into the request context.
func PortalAuthMiddleware(signer *jwtx.Signer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := signer.Verify(raw)
			if err != nil {
				if err == jwtx.ErrExpiredToken {
					writeBearerError(w, "token expired")
					return
				}
				log.Warn("portal token verify failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			ctx = contextWithSession(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithSession(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyPhone, c.Phone)
	ctx = context.WithValue(ctx, CtxKeyAppTokens, c.ApplicationTokens)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
