package handler

import (
	"context"

	"github.com/gymboard/booking-service/internal/model"
	"github.com/gymboard/booking-service/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type BookingService interface {
	Resolve(ctx context.Context, sectionID string, date model.Date, bt model.BookingType) (model.SlotStatus, error)
	DisabledDates(ctx context.Context, sectionID, consumerID string, bt model.BookingType, horizonDays int) ([]model.Date, error)

	CreateReservation(ctx context.Context, req model.CreateReservationRequest) (model.Reservation, error)
	CancelReservation(ctx context.Context, consumerID, reservationUID string) error
	ListReservations(ctx context.Context, consumerID string) ([]model.Reservation, error)

	JoinWaitlist(ctx context.Context, req model.JoinWaitlistRequest) (model.WaitlistEntry, error)

	CanReserve(ctx context.Context, consumerID string, bt model.BookingType) (model.EntitlementDecision, error)
	Entitlements(ctx context.Context, consumerID string) (model.EntitlementSummary, error)
	GrantEntitlement(ctx context.Context, req model.GrantEntitlementRequest) (model.Entitlement, error)

	CreateSection(ctx context.Context, req model.CreateSectionRequest) (model.Section, error)
	GetSection(ctx context.Context, sectionID string) (model.Section, error)

	Subscribe(sectionID string) (<-chan model.InvalidationEvent, func())
}

var _ BookingService = (*service.Service)(nil)
