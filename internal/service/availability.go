package service

import (
	"context"
	"time"

	"github.com/gymboard/booking-service/internal/errs"
	"github.com/gymboard/booking-service/internal/model"
)

// DisabledDates returns the calendar days in [today, today+horizon)
// the consumer cannot book at all: entitlement period ended, section
// closed that weekday, or no slots configured. A day whose slots are
// all full stays enabled — it still offers the waiting list.
//
// Occupancy for the whole horizon is fetched in one batched query and
// classified in memory instead of issuing a per-day lookup.
func (s *Service) DisabledDates(ctx context.Context, sectionID, consumerID string, bt model.BookingType, horizonDays int) ([]model.Date, error) {
	if !bt.Valid() {
		return nil, errs.ErrInvalidBookingType
	}
	if horizonDays <= 0 || horizonDays > s.booking.MaxHorizonDays {
		horizonDays = s.booking.MaxHorizonDays
	}

	section, err := s.repo.GetSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}

	ents, err := s.repo.ListEntitlements(ctx, consumerID)
	if err != nil {
		return nil, err
	}
	periodEnd, open := entitlementPeriodEnd(ents, bt)

	today := model.Today()
	end := today.AddDays(horizonDays)
	occupancy, err := s.repo.OccupancyRange(ctx, sectionID, bt, today, end, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	byDay := make(map[string]map[string]int, len(occupancy))
	for _, occ := range occupancy {
		day := occ.Date.String()
		if byDay[day] == nil {
			byDay[day] = make(map[string]int)
		}
		byDay[day][occ.TimeSlot] = occ.Count
	}

	disabled := make([]model.Date, 0)
	for day := today; day.Before(end); day = day.AddDays(1) {
		if !open && periodEnd != nil && day.After(*periodEnd) {
			disabled = append(disabled, day)
			continue
		}
		slots := section.SlotsFor(day)
		if len(slots) == 0 {
			disabled = append(disabled, day)
			continue
		}
		status := emptySlotStatus()
		classify(&status, slots, byDay[day.String()], section.CapacityPerSlot)
		if len(status.Available) == 0 && len(status.Full) == 0 {
			disabled = append(disabled, day)
		}
	}
	return disabled, nil
}

// entitlementPeriodEnd picks the expiry bound for the booking type:
// the latest period end among matching entitlements, or open=true when
// any matching entitlement has no period end at all. A consumer with no
// matching entitlement is not date-bounded here; balance gating happens
// at reservation time.
func entitlementPeriodEnd(ents []model.Entitlement, bt model.BookingType) (*model.Date, bool) {
	kinds := make(map[model.EntitlementKind]struct{})
	for _, kind := range model.KindsFor(bt) {
		kinds[kind] = struct{}{}
	}

	var latest *model.Date
	matched := false
	for i := range ents {
		ent := ents[i]
		if _, ok := kinds[ent.Kind]; !ok {
			continue
		}
		matched = true
		if ent.PeriodEnd == nil {
			return nil, true
		}
		if latest == nil || ent.PeriodEnd.After(*latest) {
			latest = ent.PeriodEnd
		}
	}
	if !matched {
		return nil, true
	}
	return latest, false
}
