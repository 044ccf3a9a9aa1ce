package main

import (
	"context"

	"github.com/example/serenity-bookings/internal/application"
	"github.com/example/serenity-bookings/internal/persistence"
)

// The adapters below glue the persistence repositories to the interfaces the
// application services consume, converting between the two model sets.

type bookingRepositoryAdapter struct {
	repo persistence.BookingRepository
}

func newBookingRepositoryAdapter(repo persistence.BookingRepository) *bookingRepositoryAdapter {
	return &bookingRepositoryAdapter{repo: repo}
}

func (a *bookingRepositoryAdapter) CreateBooking(ctx context.Context, booking application.Booking) (application.Booking, error) {
	if err := a.repo.CreateBooking(ctx, toPersistenceBooking(booking)); err != nil {
		return application.Booking{}, err
	}
	return booking, nil
}

func (a *bookingRepositoryAdapter) UpdateBooking(ctx context.Context, booking application.Booking) (application.Booking, error) {
	if err := a.repo.UpdateBooking(ctx, toPersistenceBooking(booking)); err != nil {
		return application.Booking{}, err
	}
	return booking, nil
}

func (a *bookingRepositoryAdapter) GetBooking(ctx context.Context, id string) (application.Booking, error) {
	booking, err := a.repo.GetBooking(ctx, id)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(booking), nil
}

func (a *bookingRepositoryAdapter) GetBookingByToken(ctx context.Context, token string) (application.Booking, error) {
	booking, err := a.repo.GetBookingByToken(ctx, token)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(booking), nil
}

func (a *bookingRepositoryAdapter) GetBookingByRef(ctx context.Context, ref string) (application.Booking, error) {
	booking, err := a.repo.GetBookingByRef(ctx, ref)
	if err != nil {
		return application.Booking{}, err
	}
	return toApplicationBooking(booking), nil
}

func (a *bookingRepositoryAdapter) ListBookings(ctx context.Context) ([]application.Booking, error) {
	bookings, err := a.repo.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(bookings), nil
}

func (a *bookingRepositoryAdapter) ListBookingsByEmail(ctx context.Context, email string) ([]application.Booking, error) {
	bookings, err := a.repo.ListBookingsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return toApplicationBookings(bookings), nil
}

func (a *bookingRepositoryAdapter) DeleteBooking(ctx context.Context, id string) error {
	return a.repo.DeleteBooking(ctx, id)
}

type slotCalendarAdapter struct {
	repo persistence.BookingRepository
}

func newSlotCalendarAdapter(repo persistence.BookingRepository) *slotCalendarAdapter {
	return &slotCalendarAdapter{repo: repo}
}

func (a *slotCalendarAdapter) ListActiveBookingTimes(ctx context.Context, date string) ([]string, error) {
	return a.repo.ListActiveBookingTimes(ctx, date)
}

type serviceCatalogAdapter struct {
	repo persistence.ServiceRepository
}

func newServiceCatalogAdapter(repo persistence.ServiceRepository) *serviceCatalogAdapter {
	return &serviceCatalogAdapter{repo: repo}
}

func (a *serviceCatalogAdapter) CreateService(ctx context.Context, service application.Service) (application.Service, error) {
	if err := a.repo.CreateService(ctx, toPersistenceService(service)); err != nil {
		return application.Service{}, err
	}
	return service, nil
}

func (a *serviceCatalogAdapter) UpdateService(ctx context.Context, service application.Service) (application.Service, error) {
	if err := a.repo.UpdateService(ctx, toPersistenceService(service)); err != nil {
		return application.Service{}, err
	}
	return service, nil
}

func (a *serviceCatalogAdapter) GetService(ctx context.Context, id string) (application.Service, error) {
	service, err := a.repo.GetService(ctx, id)
	if err != nil {
		return application.Service{}, err
	}
	return toApplicationService(service), nil
}

func (a *serviceCatalogAdapter) ListServices(ctx context.Context, includeInactive bool) ([]application.Service, error) {
	services, err := a.repo.ListServices(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	out := make([]application.Service, 0, len(services))
	for _, service := range services {
		out = append(out, toApplicationService(service))
	}
	return out, nil
}

func (a *serviceCatalogAdapter) DeleteService(ctx context.Context, id string) error {
	return a.repo.DeleteService(ctx, id)
}

type credentialStoreAdapter struct {
	repo persistence.UserRepository
}

func newCredentialStoreAdapter(repo persistence.UserRepository) *credentialStoreAdapter {
	return &credentialStoreAdapter{repo: repo}
}

func (a *credentialStoreAdapter) CreateUser(ctx context.Context, user application.User) (application.User, error) {
	if err := a.repo.CreateUser(ctx, persistence.User(user)); err != nil {
		return application.User{}, err
	}
	return user, nil
}

func (a *credentialStoreAdapter) GetUser(ctx context.Context, id string) (application.User, error) {
	user, err := a.repo.GetUser(ctx, id)
	if err != nil {
		return application.User{}, err
	}
	return application.User(user), nil
}

func (a *credentialStoreAdapter) GetUserByEmail(ctx context.Context, email string) (application.User, error) {
	user, err := a.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return application.User{}, err
	}
	return application.User(user), nil
}

func toPersistenceBooking(booking application.Booking) persistence.Booking {
	return persistence.Booking(booking)
}

func toApplicationBooking(booking persistence.Booking) application.Booking {
	return application.Booking(booking)
}

func toApplicationBookings(bookings []persistence.Booking) []application.Booking {
	out := make([]application.Booking, 0, len(bookings))
	for _, booking := range bookings {
		out = append(out, toApplicationBooking(booking))
	}
	return out
}

func toPersistenceService(service application.Service) persistence.Service {
	return persistence.Service(service)
}

func toApplicationService(service persistence.Service) application.Service {
	return application.Service(service)
}
