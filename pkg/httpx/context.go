package httpx

import "context"

type ctxKey string

const (
	// CtxKeyPhone is the normalized phone of an authenticated portal session.
	CtxKeyPhone ctxKey = "phone"
	// CtxKeyAppTokens lists the application tokens the session covers.
	CtxKeyAppTokens ctxKey = "app_tokens"
	// CtxKeyClaims carries the full jwtx.Claims when needed downstream.
	CtxKeyClaims ctxKey = "claims"
)

// PhoneFromCtx returns the authenticated normalized phone, or "".
func PhoneFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyPhone).(string); ok {
		return v
	}
	return ""
}

// AppTokensFromCtx returns the application tokens covered by the session.
func AppTokensFromCtx(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyAppTokens).([]string); ok {
		return v
	}
	return nil
}
