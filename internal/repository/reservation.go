package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/gymboard/booking-service/internal/errs"
	"github.com/gymboard/booking-service/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// CreateReservation performs the authoritative capacity check and the
// insert as one transaction. The section row is locked FOR UPDATE, so
// concurrent creates for the same section serialize and at most
// capacity_per_slot confirmed reservations can exist per
// (section, date, slot, booking type). Entitlement consumption happens
// in the same transaction: either both commit or neither does.
func (r *repository) CreateReservation(ctx context.Context, req model.CreateReservationRequest) (model.Reservation, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Reservation{}, storeErr(err)
	}
	defer tx.Rollback() //nolint:errcheck

	var capacity int
	err = tx.QueryRowContext(ctx,
		`select capacity_per_slot from section where id = $1 for update`, req.SectionID,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reservation{}, errs.ErrNotFound
		}
		return model.Reservation{}, storeErr(err)
	}

	now := time.Now().UTC()
	occupied, err := r.slotOccupiedTx(ctx, tx, req.SectionID, req.Date, req.TimeSlot, req.BookingType, now, req.ConsumerID)
	if err != nil {
		return model.Reservation{}, storeErr(err)
	}
	if occupied >= capacity {
		return model.Reservation{}, errs.ErrSlotFull
	}

	if err := r.consumeEntitlementTx(ctx, tx, req.ConsumerID, req.BookingType, model.Today()); err != nil {
		if errors.Is(err, errs.ErrEntitlementExhausted) {
			return model.Reservation{}, err
		}
		return model.Reservation{}, storeErr(err)
	}

	// A promoted waitlist entry is exercised by this booking: release
	// its hold so it no longer occupies the slot.
	if _, err := tx.ExecContext(ctx, `
		update waitlist_entry set status = $1, hold_expires_at = null
		where section_id = $2 and date = $3 and time_slot = $4 and booking_type = $5
			and consumer_id = $6 and status = $7`,
		model.WaitlistFulfilled, req.SectionID, req.Date, req.TimeSlot, req.BookingType,
		req.ConsumerID, model.WaitlistPromoted,
	); err != nil {
		return model.Reservation{}, storeErr(err)
	}

	var res model.Reservation
	err = tx.QueryRowxContext(ctx, `
		insert into reservation (reservation_uid, section_id, date, time_slot, consumer_id, booking_type, status)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning id, reservation_uid, section_id, date, time_slot, consumer_id, booking_type, status, created_at`,
		uuid.NewString(), req.SectionID, req.Date, req.TimeSlot, req.ConsumerID, req.BookingType, model.StatusConfirmed,
	).StructScan(&res)
	if err != nil {
		r.log.Error("CreateReservation insert", zap.Error(err))
		return model.Reservation{}, storeErr(err)
	}

	if err := tx.Commit(); err != nil {
		return model.Reservation{}, storeErr(err)
	}
	return res, nil
}

// slotOccupiedTx counts confirmed reservations plus live promotion
// holds for the slot. excludeConsumer's own hold does not count against
// them: a promoted consumer books into the unit their hold reserves.
// An empty excludeConsumer counts every hold.
func (r *repository) slotOccupiedTx(ctx context.Context, tx *sqlx.Tx, sectionID string, date model.Date, slot string, bt model.BookingType, now time.Time, excludeConsumer string) (int, error) {
	const q = `
	select
		(select count(*) from reservation
			where section_id = $1 and date = $2 and time_slot = $3 and booking_type = $4 and status = $5)
	+	(select count(*) from waitlist_entry
			where section_id = $1 and date = $2 and time_slot = $3 and booking_type = $4
				and status = $6 and hold_expires_at > $7 and consumer_id <> $8)`
	var occupied int
	err := tx.QueryRowContext(ctx, q,
		sectionID, date, slot, bt,
		model.StatusConfirmed, model.WaitlistPromoted, now, excludeConsumer,
	).Scan(&occupied)
	return occupied, err
}

// CancelReservation flips the reservation to CANCELLED and hands the
// freed unit to the oldest waiting consumer in the same transaction.
// The section row is locked FOR UPDATE exactly like the create path, so
// the promotion hold commits together with the freed capacity and a
// concurrent create cannot claim the unit in between. The entry is
// promoted only when the unit is genuinely free after the cancel.
func (r *repository) CancelReservation(ctx context.Context, consumerID, reservationUID string, holdExpiresAt time.Time) (model.Reservation, *model.WaitlistEntry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Reservation{}, nil, storeErr(err)
	}
	defer tx.Rollback() //nolint:errcheck

	var sectionID string
	err = tx.QueryRowContext(ctx,
		`select section_id from reservation where reservation_uid = $1`, reservationUID,
	).Scan(&sectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reservation{}, nil, errs.ErrNotFound
		}
		return model.Reservation{}, nil, storeErr(err)
	}

	// same lock order as CreateReservation
	var capacity int
	err = tx.QueryRowContext(ctx,
		`select capacity_per_slot from section where id = $1 for update`, sectionID,
	).Scan(&capacity)
	if err != nil {
		return model.Reservation{}, nil, storeErr(err)
	}

	q := qb.Update(reservationTableName).
		Set("status", model.StatusCancelled).
		Where(sq.Eq{"reservation_uid": reservationUID, "status": model.StatusConfirmed}).
		Suffix("returning id, reservation_uid, section_id, date, time_slot, consumer_id, booking_type, status, created_at")
	if consumerID != "" {
		q = q.Where(sq.Eq{"consumer_id": consumerID})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return model.Reservation{}, nil, err
	}
	var res model.Reservation
	if err := tx.QueryRowxContext(ctx, query, args...).StructScan(&res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reservation{}, nil, errs.ErrNotFound
		}
		return model.Reservation{}, nil, storeErr(err)
	}

	now := time.Now().UTC()
	if err := r.expireLapsedTx(ctx, tx, res.SectionID, now); err != nil {
		return model.Reservation{}, nil, storeErr(err)
	}

	occupied, err := r.slotOccupiedTx(ctx, tx, res.SectionID, res.Date, res.TimeSlot, res.BookingType, now, "")
	if err != nil {
		return model.Reservation{}, nil, storeErr(err)
	}
	var promoted *model.WaitlistEntry
	if occupied < capacity {
		if promoted, err = r.promoteOldestTx(ctx, tx, res.SectionID, res.Date, res.TimeSlot, res.BookingType, holdExpiresAt); err != nil {
			return model.Reservation{}, nil, storeErr(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Reservation{}, nil, storeErr(err)
	}
	return res, promoted, nil
}

func (r *repository) ListReservations(ctx context.Context, consumerID string) ([]model.Reservation, error) {
	q, args, err := qb.Select("id", "reservation_uid", "section_id", "date", "time_slot", "consumer_id", "booking_type", "status", "created_at").
		From(reservationTableName).
		Where(sq.Eq{"consumer_id": consumerID}).
		OrderBy("date", "time_slot").
		ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.Reservation
	if err := r.db.SelectContext(ctx, &items, q, args...); err != nil {
		return nil, err
	}
	return items, nil
}

// SlotCounts returns per-slot occupancy (confirmed reservations plus
// unexpired promotion holds) for one section/date/booking type.
func (r *repository) SlotCounts(ctx context.Context, sectionID string, date model.Date, bt model.BookingType, now time.Time) (map[string]int, error) {
	const q = `
	select time_slot, count(*) as cnt from (
		select time_slot from reservation
			where section_id = $1 and date = $2 and booking_type = $3 and status = $4
		union all
		select time_slot from waitlist_entry
			where section_id = $1 and date = $2 and booking_type = $3
				and status = $5 and hold_expires_at > $6
	) occupied
	group by time_slot`
	rows, err := r.db.QueryContext(ctx, q, sectionID, date, bt, model.StatusConfirmed, model.WaitlistPromoted, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			slot string
			cnt  int
		)
		if err := rows.Scan(&slot, &cnt); err != nil {
			return nil, err
		}
		counts[slot] = cnt
	}
	return counts, rows.Err()
}

// OccupancyRange is the batched form of SlotCounts over [from, to):
// one round trip for a whole availability horizon.
func (r *repository) OccupancyRange(ctx context.Context, sectionID string, bt model.BookingType, from, to model.Date, now time.Time) ([]model.SlotOccupancy, error) {
	const q = `
	select date, time_slot, count(*) as cnt from (
		select date, time_slot from reservation
			where section_id = $1 and booking_type = $2 and status = $3
				and date >= $4 and date < $5
		union all
		select date, time_slot from waitlist_entry
			where section_id = $1 and booking_type = $2
				and status = $6 and hold_expires_at > $7
				and date >= $4 and date < $5
	) occupied
	group by date, time_slot
	order by date, time_slot`
	var items []model.SlotOccupancy
	err := r.db.SelectContext(ctx, &items, q,
		sectionID, bt, model.StatusConfirmed, from, to, model.WaitlistPromoted, now)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// storeErr marks infrastructure failures as retryable for the caller;
// domain rejections never pass through here.
func storeErr(err error) error {
	return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
}
