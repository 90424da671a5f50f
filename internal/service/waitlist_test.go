package service

import (
	"context"
	"testing"
	"time"

	"github.com/gymboard/booking-service/internal/errs"
	"github.com/gymboard/booking-service/internal/model"

	"github.com/stretchr/testify/require"
)

// fillSlot books the slot up to capacity with throwaway consumers and
// returns the winning reservations.
func fillSlot(t *testing.T, svc *Service, repo *fakeRepo, section model.Section, date model.Date, slot string) []model.Reservation {
	t.Helper()
	out := make([]model.Reservation, 0, section.CapacityPerSlot)
	for i := 0; i < section.CapacityPerSlot; i++ {
		consumer := "filler-" + consumerN(i)
		grant(repo, consumer, model.KindVisitPackage, intPtr(1), nil)
		res, err := svc.CreateReservation(context.Background(), model.CreateReservationRequest{
			SectionID: section.ID, Date: date, TimeSlot: slot,
			BookingType: model.BookingGymVisit, ConsumerID: consumer,
		})
		require.NoError(t, err)
		out = append(out, res)
	}
	return out
}

func TestJoinWaitlist(t *testing.T) {
	ctx := context.Background()
	tomorrow := model.Today().AddDays(1)

	t.Run("rejected while slot has room", func(t *testing.T) {
		repo := newFakeRepo()
		section := seedSection(repo, 2, openEveryDay("10:00"))
		svc := newTestService(repo)

		_, err := svc.JoinWaitlist(ctx, model.JoinWaitlistRequest{
			SectionID: section.ID, Date: tomorrow, TimeSlot: "10:00",
			BookingType: model.BookingGymVisit, ConsumerID: "alice",
		})
		require.ErrorIs(t, err, errs.ErrSlotNotFull)
	})

	t.Run("rejected when a cancellation freed the slot before the insert", func(t *testing.T) {
		repo := newFakeRepo()
		section := seedSection(repo, 1, openEveryDay("10:00"))
		svc := newTestService(repo)
		reservations := fillSlot(t, svc, repo, section, tomorrow, "10:00")

		// the slot looked full when the consumer decided to join, but the
		// store re-checks occupancy at insert time
		require.NoError(t, svc.CancelReservation(ctx, "", reservations[0].ReservationUID))
		_, err := svc.JoinWaitlist(ctx, model.JoinWaitlistRequest{
			SectionID: section.ID, Date: tomorrow, TimeSlot: "10:00",
			BookingType: model.BookingGymVisit, ConsumerID: "alice",
		})
		require.ErrorIs(t, err, errs.ErrSlotNotFull)
	})

	t.Run("accepted once full, idempotent per consumer", func(t *testing.T) {
		repo := newFakeRepo()
		section := seedSection(repo, 1, openEveryDay("10:00"))
		svc := newTestService(repo)
		fillSlot(t, svc, repo, section, tomorrow, "10:00")

		first, err := svc.JoinWaitlist(ctx, model.JoinWaitlistRequest{
			SectionID: section.ID, Date: tomorrow, TimeSlot: "10:00",
			BookingType: model.BookingGymVisit, ConsumerID: "alice",
		})
		require.NoError(t, err)
		require.Equal(t, model.WaitlistWaiting, first.Status)

		again, err := svc.JoinWaitlist(ctx, model.JoinWaitlistRequest{
			SectionID: section.ID, Date: tomorrow, TimeSlot: "10:00",
			BookingType: model.BookingGymVisit, ConsumerID: "alice",
		})
		require.NoError(t, err)
		require.Equal(t, first.EntryUID, again.EntryUID)
	})
}

func TestCancelPromotesOldestWaiting(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	section := seedSection(repo, 1, openEveryDay("10:00"))
	svc := newTestService(repo)
	tomorrow := model.Today().AddDays(1)

	reservations := fillSlot(t, svc, repo, section, tomorrow, "10:00")

	for _, consumer := range []string{"first-waiter", "second-waiter"} {
		grant(repo, consumer, model.KindVisitPackage, intPtr(1), nil)
		_, err := svc.JoinWaitlist(ctx, model.JoinWaitlistRequest{
			SectionID: section.ID, Date: tomorrow, TimeSlot: "10:00",
			BookingType: model.BookingGymVisit, ConsumerID: consumer,
		})
		require.NoError(t, err)
	}

	require.NoError(t, svc.CancelReservation(ctx, "", reservations[0].ReservationUID))

	// oldest waiter holds the freed unit, the younger one keeps waiting
	var promoted, waiting int
	for _, w := range repo.waitlist {
		switch w.Status {
		case model.WaitlistPromoted:
			promoted++
			require.Equal(t, "first-waiter", w.ConsumerID)
			require.NotNil(t, w.HoldExpiresAt)
		case model.WaitlistWaiting:
			waiting++
			require.Equal(t, "second-waiter", w.ConsumerID)
		}
	}
	require.Equal(t, 1, promoted)
	require.Equal(t, 1, waiting)

	t.Run("hold keeps slot full for everyone else", func(t *testing.T) {
		status, err := svc.Resolve(ctx, section.ID, tomorrow, model.BookingGymVisit)
		require.NoError(t, err)
		require.Equal(t, []string{"10:00"}, status.Full)

		grant(repo, "stranger", model.KindVisitPackage, intPtr(1), nil)
		_, err = svc.CreateReservation(ctx, model.CreateReservationRequest{
			SectionID: section.ID, Date: tomorrow, TimeSlot: "10:00",
			BookingType: model.BookingGymVisit, ConsumerID: "stranger",
		})
		require.ErrorIs(t, err, errs.ErrSlotFull)
	})

	t.Run("promoted consumer claims the held unit", func(t *testing.T) {
		res, err := svc.CreateReservation(ctx, model.CreateReservationRequest{
			SectionID: section.ID, Date: tomorrow, TimeSlot: "10:00",
			BookingType: model.BookingGymVisit, ConsumerID: "first-waiter",
		})
		require.NoError(t, err)
		require.Equal(t, model.StatusConfirmed, res.Status)

		for _, w := range repo.waitlist {
			if w.ConsumerID == "first-waiter" {
				require.Equal(t, model.WaitlistFulfilled, w.Status)
				require.Nil(t, w.HoldExpiresAt)
			}
		}
	})
}

// A cancellation and a rival booking race for the freed unit. The hold
// commits together with the cancel, so whichever order they land in,
// the rival loses: either the slot is still full or the waiter's hold
// already occupies it. The waiter then books into their hold.
func TestCancelHandsUnitToWaiterUnderRacingCreate(t *testing.T) {
	ctx := context.Background()
	tomorrow := model.Today().AddDays(1)

	for round := 0; round < 10; round++ {
		repo := newFakeRepo()
		section := seedSection(repo, 1, openEveryDay("10:00"))
		svc := newTestService(repo)
		reservations := fillSlot(t, svc, repo, section, tomorrow, "10:00")

		grant(repo, "waiter", model.KindVisitPackage, intPtr(1), nil)
		_, err := svc.JoinWaitlist(ctx, model.JoinWaitlistRequest{
			SectionID: section.ID, Date: tomorrow, TimeSlot: "10:00",
			BookingType: model.BookingGymVisit, ConsumerID: "waiter",
		})
		require.NoError(t, err)
		grant(repo, "rival", model.KindVisitPackage, intPtr(1), nil)

		rivalErr := make(chan error, 1)
		go func() {
			_, err := svc.CreateReservation(ctx, model.CreateReservationRequest{
				SectionID: section.ID, Date: tomorrow, TimeSlot: "10:00",
				BookingType: model.BookingGymVisit, ConsumerID: "rival",
			})
			rivalErr <- err
		}()
		require.NoError(t, svc.CancelReservation(ctx, "", reservations[0].ReservationUID))
		require.ErrorIs(t, <-rivalErr, errs.ErrSlotFull)

		var promoted int
		for _, w := range repo.waitlist {
			if w.Status == model.WaitlistPromoted {
				promoted++
				require.Equal(t, "waiter", w.ConsumerID)
				require.NotNil(t, w.HoldExpiresAt)
			}
		}
		require.Equal(t, 1, promoted)

		res, err := svc.CreateReservation(ctx, model.CreateReservationRequest{
			SectionID: section.ID, Date: tomorrow, TimeSlot: "10:00",
			BookingType: model.BookingGymVisit, ConsumerID: "waiter",
		})
		require.NoError(t, err)
		require.Equal(t, model.StatusConfirmed, res.Status)
	}
}

func TestLapsedHoldReleasesUnit(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	section := seedSection(repo, 1, openEveryDay("10:00"))
	svc := newTestService(repo)
	tomorrow := model.Today().AddDays(1)

	reservations := fillSlot(t, svc, repo, section, tomorrow, "10:00")
	grant(repo, "slow-waiter", model.KindVisitPackage, intPtr(1), nil)
	_, err := svc.JoinWaitlist(ctx, model.JoinWaitlistRequest{
		SectionID: section.ID, Date: tomorrow, TimeSlot: "10:00",
		BookingType: model.BookingGymVisit, ConsumerID: "slow-waiter",
	})
	require.NoError(t, err)
	require.NoError(t, svc.CancelReservation(ctx, "", reservations[0].ReservationUID))

	// age the hold past its window
	for i := range repo.waitlist {
		if repo.waitlist[i].Status == model.WaitlistPromoted {
			past := time.Now().UTC().Add(-time.Minute)
			repo.waitlist[i].HoldExpiresAt = &past
		}
	}
	n, err := repo.ExpireLapsed(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	status, err := svc.Resolve(ctx, section.ID, tomorrow, model.BookingGymVisit)
	require.NoError(t, err)
	require.Equal(t, []string{"10:00"}, status.Available)

	grant(repo, "stranger", model.KindVisitPackage, intPtr(1), nil)
	_, err = svc.CreateReservation(ctx, model.CreateReservationRequest{
		SectionID: section.ID, Date: tomorrow, TimeSlot: "10:00",
		BookingType: model.BookingGymVisit, ConsumerID: "stranger",
	})
	require.NoError(t, err)
}
