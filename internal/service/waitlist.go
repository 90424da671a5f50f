package service

import (
	"context"

	"github.com/gymboard/booking-service/internal/errs"
	"github.com/gymboard/booking-service/internal/model"
)

// JoinWaitlist accepts a waitlist entry for a genuinely full slot.
// Calendar and type checks happen here; fullness is decided by the
// store inside the insert transaction, under the same section lock the
// create and cancel paths take, so a cancellation racing the join is
// seen. Joining a slot that still has room is a caller error; joining
// the same slot twice returns the existing waiting entry.
func (s *Service) JoinWaitlist(ctx context.Context, req model.JoinWaitlistRequest) (model.WaitlistEntry, error) {
	if !req.BookingType.Valid() {
		return model.WaitlistEntry{}, errs.ErrInvalidBookingType
	}
	if req.Date.Before(model.Today()) {
		return model.WaitlistEntry{}, errs.ErrInvalidDate
	}

	section, err := s.repo.GetSection(ctx, req.SectionID)
	if err != nil {
		return model.WaitlistEntry{}, err
	}
	slots := section.SlotsFor(req.Date)
	if len(slots) == 0 {
		return model.WaitlistEntry{}, errs.ErrSectionClosed
	}
	if !containsSlot(slots, req.TimeSlot) {
		return model.WaitlistEntry{}, errs.ErrInvalidDate
	}

	return s.repo.JoinWaitlist(ctx, model.WaitlistEntry{
		SectionID:   req.SectionID,
		Date:        req.Date,
		TimeSlot:    req.TimeSlot,
		BookingType: req.BookingType,
		ConsumerID:  req.ConsumerID,
	})
}
