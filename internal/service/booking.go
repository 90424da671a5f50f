package service

import (
	"context"
	"time"

	"github.com/gymboard/booking-service/internal/errs"
	"github.com/gymboard/booking-service/internal/model"

	"go.uber.org/zap"
)

// CreateReservation validates the requested slot against the section
// calendar, then delegates to the store for the atomic capacity check,
// entitlement consumption and insert. The slot-status read a consumer
// saw earlier is advisory only; the store re-checks at write time.
func (s *Service) CreateReservation(ctx context.Context, req model.CreateReservationRequest) (model.Reservation, error) {
	if !req.BookingType.Valid() {
		return model.Reservation{}, errs.ErrInvalidBookingType
	}
	if req.Date.Before(model.Today()) {
		return model.Reservation{}, errs.ErrInvalidDate
	}

	section, err := s.repo.GetSection(ctx, req.SectionID)
	if err != nil {
		return model.Reservation{}, err
	}
	slots := section.SlotsFor(req.Date)
	if len(slots) == 0 {
		return model.Reservation{}, errs.ErrSectionClosed
	}
	if !containsSlot(slots, req.TimeSlot) {
		return model.Reservation{}, errs.ErrInvalidDate
	}

	res, err := s.repo.CreateReservation(ctx, req)
	if err != nil {
		return model.Reservation{}, err
	}

	s.publishChange(ctx, model.BookingEvent{
		SectionID:   res.SectionID,
		Date:        res.Date,
		TimeSlot:    res.TimeSlot,
		BookingType: res.BookingType,
		Action:      model.ActionCreated,
	})
	return res, nil
}

// CancelReservation frees one capacity unit and hands it to the oldest
// waiting consumer before the slot re-enters ordinary availability. The
// store performs the cancel and the promotion hold as one transaction,
// so a concurrent create cannot claim the freed unit in between.
func (s *Service) CancelReservation(ctx context.Context, consumerID, reservationUID string) error {
	holdExpiresAt := time.Now().UTC().Add(s.booking.PromotionWindow)
	res, promoted, err := s.repo.CancelReservation(ctx, consumerID, reservationUID, holdExpiresAt)
	if err != nil {
		return err
	}

	if promoted != nil {
		s.logPromotion(promoted)
		s.publishChange(ctx, model.BookingEvent{
			SectionID:   res.SectionID,
			Date:        res.Date,
			TimeSlot:    res.TimeSlot,
			BookingType: res.BookingType,
			Action:      model.ActionPromoted,
		})
	}

	s.publishChange(ctx, model.BookingEvent{
		SectionID:   res.SectionID,
		Date:        res.Date,
		TimeSlot:    res.TimeSlot,
		BookingType: res.BookingType,
		Action:      model.ActionCancelled,
	})
	return nil
}

func (s *Service) ListReservations(ctx context.Context, consumerID string) ([]model.Reservation, error) {
	return s.repo.ListReservations(ctx, consumerID)
}

func (s *Service) CreateSection(ctx context.Context, req model.CreateSectionRequest) (model.Section, error) {
	hours, err := model.ParseWeeklyHours(req.WeeklyHours)
	if err != nil {
		return model.Section{}, errs.ErrInvalidDate
	}
	return s.repo.CreateSection(ctx, model.Section{
		Name:            req.Name,
		CapacityPerSlot: req.CapacityPerSlot,
		WeeklyHours:     hours,
	})
}

func (s *Service) GetSection(ctx context.Context, sectionID string) (model.Section, error) {
	return s.repo.GetSection(ctx, sectionID)
}

func containsSlot(slots []string, slot string) bool {
	for _, s := range slots {
		if s == slot {
			return true
		}
	}
	return false
}

func (s *Service) logPromotion(entry *model.WaitlistEntry) {
	// The notification collaborator is external; the decision to notify
	// is recorded here and carried by the promoted event.
	s.log.Info("waitlist entry promoted",
		zap.String("entry", entry.EntryUID),
		zap.String("consumer", entry.ConsumerID),
		zap.String("section", entry.SectionID),
		zap.String("date", entry.Date.String()),
		zap.String("slot", entry.TimeSlot),
	)
}
