package service

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gymboard/booking-service/config"
	"github.com/gymboard/booking-service/internal/errs"
	"github.com/gymboard/booking-service/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fakeRepo is an in-memory Repository with the same observable
// semantics as the Postgres implementation: capacity counts confirmed
// reservations plus live promotion holds, entitlement consumption is
// all-or-nothing with the insert, and a waiting entry per consumer and
// slot is unique.
type fakeRepo struct {
	mu           sync.Mutex
	sections     map[string]model.Section
	reservations []model.Reservation
	entitlements []model.Entitlement
	waitlist     []model.WaitlistEntry
	nextID       int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sections: make(map[string]model.Section)}
}

func (f *fakeRepo) seq() int {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) CreateSection(_ context.Context, section model.Section) (model.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	section.ID = uuid.NewString()
	section.CreatedAt = time.Now().UTC()
	f.sections[section.ID] = section
	return section, nil
}

func (f *fakeRepo) GetSection(_ context.Context, sectionID string) (model.Section, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	section, ok := f.sections[sectionID]
	if !ok {
		return model.Section{}, errs.ErrNotFound
	}
	return section, nil
}

// occupied counts confirmed reservations and live promotion holds for
// one slot. excludeConsumer skips that consumer's own hold so the
// promoted consumer can claim the unit held for them.
func (f *fakeRepo) occupied(sectionID string, date model.Date, slot string, bt model.BookingType, now time.Time, excludeConsumer string) int {
	n := 0
	for _, r := range f.reservations {
		if r.SectionID == sectionID && r.Date.String() == date.String() &&
			r.TimeSlot == slot && r.BookingType == bt && r.Status == model.StatusConfirmed {
			n++
		}
	}
	for _, w := range f.waitlist {
		if w.SectionID == sectionID && w.Date.String() == date.String() &&
			w.TimeSlot == slot && w.BookingType == bt &&
			w.Status == model.WaitlistPromoted &&
			w.HoldExpiresAt != nil && w.HoldExpiresAt.After(now) &&
			w.ConsumerID != excludeConsumer {
			n++
		}
	}
	return n
}

func (f *fakeRepo) CreateReservation(_ context.Context, req model.CreateReservationRequest) (model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	section, ok := f.sections[req.SectionID]
	if !ok {
		return model.Reservation{}, errs.ErrNotFound
	}
	now := time.Now().UTC()
	if f.occupied(req.SectionID, req.Date, req.TimeSlot, req.BookingType, now, req.ConsumerID) >= section.CapacityPerSlot {
		return model.Reservation{}, errs.ErrSlotFull
	}
	if err := f.consume(req.ConsumerID, req.BookingType); err != nil {
		return model.Reservation{}, err
	}
	for i := range f.waitlist {
		w := &f.waitlist[i]
		if w.ConsumerID == req.ConsumerID && w.SectionID == req.SectionID &&
			w.Date.String() == req.Date.String() && w.TimeSlot == req.TimeSlot &&
			w.BookingType == req.BookingType && w.Status == model.WaitlistPromoted {
			w.Status = model.WaitlistFulfilled
			w.HoldExpiresAt = nil
		}
	}

	res := model.Reservation{
		ID:             f.seq(),
		ReservationUID: uuid.NewString(),
		SectionID:      req.SectionID,
		Date:           req.Date,
		TimeSlot:       req.TimeSlot,
		ConsumerID:     req.ConsumerID,
		BookingType:    req.BookingType,
		Status:         model.StatusConfirmed,
		CreatedAt:      now,
	}
	f.reservations = append(f.reservations, res)
	return res, nil
}

func (f *fakeRepo) consume(consumerID string, bt model.BookingType) error {
	today := model.Today()
	for _, kind := range model.KindsFor(bt) {
		for i := range f.entitlements {
			ent := &f.entitlements[i]
			if ent.ConsumerID != consumerID || ent.Kind != kind || ent.Expired(today) {
				continue
			}
			if ent.RemainingCount == nil {
				return nil
			}
			if *ent.RemainingCount > 0 {
				*ent.RemainingCount--
				return nil
			}
		}
	}
	return errs.ErrEntitlementExhausted
}

// CancelReservation mirrors the store: the cancel and the promotion of
// the oldest waiting entry happen under one lock, so no other caller
// can slip a reservation in between.
func (f *fakeRepo) CancelReservation(_ context.Context, consumerID, reservationUID string, holdExpiresAt time.Time) (model.Reservation, *model.WaitlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.reservations {
		r := &f.reservations[i]
		if r.ReservationUID != reservationUID || r.Status != model.StatusConfirmed {
			continue
		}
		if consumerID != "" && r.ConsumerID != consumerID {
			continue
		}
		r.Status = model.StatusCancelled

		now := time.Now().UTC()
		f.expireLapsedLocked(now)
		var promoted *model.WaitlistEntry
		if f.occupied(r.SectionID, r.Date, r.TimeSlot, r.BookingType, now, "") < f.sections[r.SectionID].CapacityPerSlot {
			promoted = f.promoteOldestLocked(r.SectionID, r.Date, r.TimeSlot, r.BookingType, holdExpiresAt)
		}
		return *r, promoted, nil
	}
	return model.Reservation{}, nil, errs.ErrNotFound
}

func (f *fakeRepo) ListReservations(_ context.Context, consumerID string) ([]model.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Reservation, 0)
	for _, r := range f.reservations {
		if r.ConsumerID == consumerID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepo) SlotCounts(_ context.Context, sectionID string, date model.Date, bt model.BookingType, now time.Time) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int)
	for _, r := range f.reservations {
		if r.SectionID == sectionID && r.Date.String() == date.String() &&
			r.BookingType == bt && r.Status == model.StatusConfirmed {
			counts[r.TimeSlot]++
		}
	}
	for _, w := range f.waitlist {
		if w.SectionID == sectionID && w.Date.String() == date.String() &&
			w.BookingType == bt && w.Status == model.WaitlistPromoted &&
			w.HoldExpiresAt != nil && w.HoldExpiresAt.After(now) {
			counts[w.TimeSlot]++
		}
	}
	return counts, nil
}

func (f *fakeRepo) OccupancyRange(_ context.Context, sectionID string, bt model.BookingType, from, to model.Date, now time.Time) ([]model.SlotOccupancy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	type key struct {
		day  string
		slot string
	}
	agg := make(map[key]*model.SlotOccupancy)
	add := func(date model.Date, slot string) {
		if date.Before(from) || !date.Before(to) {
			return
		}
		k := key{day: date.String(), slot: slot}
		if agg[k] == nil {
			agg[k] = &model.SlotOccupancy{Date: date, TimeSlot: slot}
		}
		agg[k].Count++
	}
	for _, r := range f.reservations {
		if r.SectionID == sectionID && r.BookingType == bt && r.Status == model.StatusConfirmed {
			add(r.Date, r.TimeSlot)
		}
	}
	for _, w := range f.waitlist {
		if w.SectionID == sectionID && w.BookingType == bt &&
			w.Status == model.WaitlistPromoted &&
			w.HoldExpiresAt != nil && w.HoldExpiresAt.After(now) {
			add(w.Date, w.TimeSlot)
		}
	}
	out := make([]model.SlotOccupancy, 0, len(agg))
	for _, occ := range agg {
		out = append(out, *occ)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.String() != out[j].Date.String() {
			return out[i].Date.String() < out[j].Date.String()
		}
		return out[i].TimeSlot < out[j].TimeSlot
	})
	return out, nil
}

func (f *fakeRepo) GrantEntitlement(_ context.Context, ent model.Entitlement) (model.Entitlement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ent.ID = f.seq()
	f.entitlements = append(f.entitlements, ent)
	return ent, nil
}

func (f *fakeRepo) ListEntitlements(_ context.Context, consumerID string) ([]model.Entitlement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Entitlement, 0)
	for _, ent := range f.entitlements {
		if ent.ConsumerID == consumerID {
			out = append(out, ent)
		}
	}
	return out, nil
}

// JoinWaitlist checks fullness under the same lock the create and
// cancel paths hold, matching the store's in-transaction check.
func (f *fakeRepo) JoinWaitlist(_ context.Context, entry model.WaitlistEntry) (model.WaitlistEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	section, ok := f.sections[entry.SectionID]
	if !ok {
		return model.WaitlistEntry{}, errs.ErrNotFound
	}
	for _, w := range f.waitlist {
		if w.ConsumerID == entry.ConsumerID && w.SectionID == entry.SectionID &&
			w.Date.String() == entry.Date.String() && w.TimeSlot == entry.TimeSlot &&
			w.BookingType == entry.BookingType && w.Status == model.WaitlistWaiting {
			return w, nil
		}
	}
	now := time.Now().UTC()
	f.expireLapsedLocked(now)
	if f.occupied(entry.SectionID, entry.Date, entry.TimeSlot, entry.BookingType, now, "") < section.CapacityPerSlot {
		return model.WaitlistEntry{}, errs.ErrSlotNotFull
	}
	entry.ID = f.seq()
	entry.EntryUID = uuid.NewString()
	entry.Status = model.WaitlistWaiting
	entry.CreatedAt = time.Now().UTC().Add(time.Duration(entry.ID) * time.Microsecond)
	f.waitlist = append(f.waitlist, entry)
	return entry, nil
}

func (f *fakeRepo) promoteOldestLocked(sectionID string, date model.Date, slot string, bt model.BookingType, holdExpiresAt time.Time) *model.WaitlistEntry {
	var oldest *model.WaitlistEntry
	for i := range f.waitlist {
		w := &f.waitlist[i]
		if w.SectionID != sectionID || w.Date.String() != date.String() ||
			w.TimeSlot != slot || w.BookingType != bt || w.Status != model.WaitlistWaiting {
			continue
		}
		if oldest == nil || w.CreatedAt.Before(oldest.CreatedAt) {
			oldest = w
		}
	}
	if oldest == nil {
		return nil
	}
	oldest.Status = model.WaitlistPromoted
	hold := holdExpiresAt
	oldest.HoldExpiresAt = &hold
	promoted := *oldest
	return &promoted
}

func (f *fakeRepo) expireLapsedLocked(now time.Time) {
	for i := range f.waitlist {
		w := &f.waitlist[i]
		if w.Status == model.WaitlistPromoted && w.HoldExpiresAt != nil && !w.HoldExpiresAt.After(now) {
			w.Status = model.WaitlistExpired
		}
	}
}

// ExpireLapsed lets tests age holds explicitly; the service paths run
// the sweep inside their own store calls.
func (f *fakeRepo) ExpireLapsed(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i := range f.waitlist {
		w := &f.waitlist[i]
		if w.Status == model.WaitlistPromoted && w.HoldExpiresAt != nil && !w.HoldExpiresAt.After(now) {
			n++
		}
	}
	f.expireLapsedLocked(now)
	return n, nil
}

func newTestService(repo *fakeRepo) *Service {
	log := zap.NewNop()
	return NewService(repo, NewNotifier(log), nil, nil, config.Booking{
		MaxHorizonDays:  365,
		PromotionWindow: time.Hour,
	}, log)
}

// openEveryDay builds weekly hours with the same slots on all seven
// weekdays, so tests do not depend on what weekday "tomorrow" is.
func openEveryDay(slots ...string) model.WeeklyHours {
	wh := make(model.WeeklyHours, 7)
	for day := time.Sunday; day <= time.Saturday; day++ {
		wh[day] = slots
	}
	return wh
}

func seedSection(repo *fakeRepo, capacity int, hours model.WeeklyHours) model.Section {
	section, _ := repo.CreateSection(context.Background(), model.Section{
		Name:            "crossfit",
		CapacityPerSlot: capacity,
		WeeklyHours:     hours,
	})
	return section
}

func grant(repo *fakeRepo, consumerID string, kind model.EntitlementKind, remaining *int, periodEnd *model.Date) {
	_, _ = repo.GrantEntitlement(context.Background(), model.Entitlement{
		ConsumerID:     consumerID,
		Kind:           kind,
		RemainingCount: remaining,
		PeriodEnd:      periodEnd,
	})
}

func intPtr(n int) *int { return &n }

func datePtr(d model.Date) *model.Date { return &d }

func consumerN(n int) string { return "consumer-" + strconv.Itoa(n) }
