package service

import (
	"context"
	"time"

	"github.com/gymboard/booking-service/internal/errs"
	"github.com/gymboard/booking-service/internal/model"
)

// Resolve enumerates the section's slots for the date and classifies
// each as available or full against capacity. Occupancy counts both
// confirmed reservations and live promotion holds, so a freed unit
// stays reserved for the promoted consumer until their window lapses.
// A closed weekday yields an empty result, not an error.
func (s *Service) Resolve(ctx context.Context, sectionID string, date model.Date, bt model.BookingType) (model.SlotStatus, error) {
	if !bt.Valid() {
		return model.SlotStatus{}, errs.ErrInvalidBookingType
	}

	if status, ok := s.cache.GetSlotStatus(ctx, sectionID, date, bt); ok {
		return status, nil
	}

	section, err := s.repo.GetSection(ctx, sectionID)
	if err != nil {
		return model.SlotStatus{}, err
	}

	slots := section.SlotsFor(date)
	status := emptySlotStatus()
	if len(slots) == 0 {
		return status, nil
	}

	counts, err := s.repo.SlotCounts(ctx, sectionID, date, bt, time.Now().UTC())
	if err != nil {
		return model.SlotStatus{}, err
	}
	classify(&status, slots, counts, section.CapacityPerSlot)

	s.cache.SetSlotStatus(ctx, sectionID, date, bt, status)
	return status, nil
}

func emptySlotStatus() model.SlotStatus {
	return model.SlotStatus{
		Available: []string{},
		Full:      []string{},
		Counts:    map[string]int{},
	}
}

// classify buckets slots in chronological order; slots themselves are
// already sorted by the section loader.
func classify(status *model.SlotStatus, slots []string, counts map[string]int, capacity int) {
	for _, slot := range slots {
		count := counts[slot]
		status.Counts[slot] = count
		if count >= capacity {
			status.Full = append(status.Full, slot)
		} else {
			status.Available = append(status.Available, slot)
		}
	}
}
