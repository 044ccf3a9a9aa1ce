// Package http provides HTTP handlers and middleware for the booking API.
//
// The router exposes the following endpoints:
//   - POST /api/auth/login: issues a bearer token. Body: {"email","password"}.
//     Response: {"token","expiresAt","user":{"id","email","role"}}.
//   - GET /api/calendar/slots?date=YYYY-MM-DD: the availability grid for a
//     date. Public.
//   - GET /api/services, GET /api/services/{id}: the public catalog.
//     Administrators may pass ?includeInactive=true to see deactivated
//     entries. POST /api/services, PUT /api/services/{id} and
//     DELETE /api/services/{id} manage the catalog and require admin
//     privileges.
//   - POST /api/bookings: public booking submission exchanging the
//     bookingDTO payload defined in booking_handler.go.
//     GET /api/bookings lists every booking (admin),
//     GET /api/bookings/me lists the caller's own bookings,
//     GET /api/bookings/{ref} resolves a booking by id or confirmation
//     token, GET /api/bookings/token/{token} by token only.
//     PUT /api/bookings/id/{id} and DELETE /api/bookings/id/{id} are admin
//     management operations; the update applies only the provided fields.
//   - POST /api/payments/create-intent and POST /api/payments/confirm drive
//     the card payment flow. The charge amount is always derived from the
//     stored booking price.
//   - POST /api/emails/confirmation re-sends the confirmation email for a
//     booking.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
