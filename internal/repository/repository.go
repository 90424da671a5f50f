package repository

import (
	"context"
	"time"

	"github.com/gymboard/booking-service/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type Repository interface {
	CreateSection(ctx context.Context, section model.Section) (model.Section, error)
	GetSection(ctx context.Context, sectionID string) (model.Section, error)

	CreateReservation(ctx context.Context, req model.CreateReservationRequest) (model.Reservation, error)
	CancelReservation(ctx context.Context, consumerID, reservationUID string, holdExpiresAt time.Time) (model.Reservation, *model.WaitlistEntry, error)
	ListReservations(ctx context.Context, consumerID string) ([]model.Reservation, error)
	SlotCounts(ctx context.Context, sectionID string, date model.Date, bt model.BookingType, now time.Time) (map[string]int, error)
	OccupancyRange(ctx context.Context, sectionID string, bt model.BookingType, from, to model.Date, now time.Time) ([]model.SlotOccupancy, error)

	GrantEntitlement(ctx context.Context, ent model.Entitlement) (model.Entitlement, error)
	ListEntitlements(ctx context.Context, consumerID string) ([]model.Entitlement, error)

	JoinWaitlist(ctx context.Context, entry model.WaitlistEntry) (model.WaitlistEntry, error)
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	sectionTableName      = `section`
	sectionHoursTableName = `section_hours`
	reservationTableName  = `reservation`
	entitlementTableName  = `entitlement`
	waitlistTableName     = `waitlist_entry`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
