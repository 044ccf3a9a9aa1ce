package http

import (
	"context"

	"github.com/example/serenity-bookings/internal/application"
)

type contextKey string

const (
	principalContextKey  contextKey = "principal"
	bookingRefContextKey contextKey = "booking_ref"
	serviceIDContextKey  contextKey = "service_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithBookingRef injects the booking reference resolved from the request path.
func ContextWithBookingRef(ctx context.Context, ref string) context.Context {
	return context.WithValue(ctx, bookingRefContextKey, ref)
}

// BookingRefFromContext extracts a booking reference previously associated with the context.
func BookingRefFromContext(ctx context.Context) (string, bool) {
	ref, ok := ctx.Value(bookingRefContextKey).(string)
	return ref, ok
}

// ContextWithServiceID injects the catalog identifier resolved from the request path.
func ContextWithServiceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, serviceIDContextKey, id)
}

// ServiceIDFromContext extracts a catalog identifier previously associated with the context.
func ServiceIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(serviceIDContextKey).(string)
	return id, ok
}
