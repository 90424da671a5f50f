package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/gymboard/booking-service/internal/errs"
	"github.com/gymboard/booking-service/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

const waitlistColumns = "id, entry_uid, section_id, date, time_slot, booking_type, consumer_id, status, hold_expires_at, created_at"

// JoinWaitlist appends a waiting entry for the slot. The fullness check
// runs inside the transaction under the same section FOR UPDATE lock
// the create and cancel paths take, so a cancellation landing between
// the caller's advisory read and the insert is seen here: a slot that
// still has room is rejected with ErrSlotNotFull. Joining twice is
// idempotent and returns the existing waiting entry.
func (r *repository) JoinWaitlist(ctx context.Context, entry model.WaitlistEntry) (model.WaitlistEntry, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.WaitlistEntry{}, storeErr(err)
	}
	defer tx.Rollback() //nolint:errcheck

	var capacity int
	err = tx.QueryRowContext(ctx,
		`select capacity_per_slot from section where id = $1 for update`, entry.SectionID,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.WaitlistEntry{}, errs.ErrNotFound
		}
		return model.WaitlistEntry{}, storeErr(err)
	}

	existing, err := r.waitingEntryTx(ctx, tx, entry)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.WaitlistEntry{}, storeErr(err)
	}

	now := time.Now().UTC()
	if err := r.expireLapsedTx(ctx, tx, entry.SectionID, now); err != nil {
		return model.WaitlistEntry{}, storeErr(err)
	}
	occupied, err := r.slotOccupiedTx(ctx, tx, entry.SectionID, entry.Date, entry.TimeSlot, entry.BookingType, now, "")
	if err != nil {
		return model.WaitlistEntry{}, storeErr(err)
	}
	if occupied < capacity {
		return model.WaitlistEntry{}, errs.ErrSlotNotFull
	}

	err = tx.QueryRowxContext(ctx, `
		insert into waitlist_entry (entry_uid, section_id, date, time_slot, booking_type, consumer_id, status)
		values ($1, $2, $3, $4, $5, $6, $7)
		returning `+waitlistColumns,
		uuid.NewString(), entry.SectionID, entry.Date, entry.TimeSlot, entry.BookingType,
		entry.ConsumerID, model.WaitlistWaiting,
	).StructScan(&entry)
	if err != nil {
		// the partial unique index is the backstop; the tx is aborted,
		// so the existing entry is re-read outside it
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return r.waitingEntry(ctx, entry)
		}
		return model.WaitlistEntry{}, storeErr(err)
	}

	if err := tx.Commit(); err != nil {
		return model.WaitlistEntry{}, storeErr(err)
	}
	return entry, nil
}

func waitingEntryQuery(entry model.WaitlistEntry) (string, []interface{}, error) {
	return qb.Select(waitlistColumns).
		From(waitlistTableName).
		Where(sq.Eq{
			"section_id":   entry.SectionID,
			"date":         entry.Date,
			"time_slot":    entry.TimeSlot,
			"booking_type": entry.BookingType,
			"consumer_id":  entry.ConsumerID,
			"status":       model.WaitlistWaiting,
		}).
		ToSql()
}

func (r *repository) waitingEntryTx(ctx context.Context, tx *sqlx.Tx, entry model.WaitlistEntry) (model.WaitlistEntry, error) {
	q, args, err := waitingEntryQuery(entry)
	if err != nil {
		return model.WaitlistEntry{}, err
	}
	var existing model.WaitlistEntry
	if err := tx.GetContext(ctx, &existing, q, args...); err != nil {
		return model.WaitlistEntry{}, err
	}
	return existing, nil
}

func (r *repository) waitingEntry(ctx context.Context, entry model.WaitlistEntry) (model.WaitlistEntry, error) {
	q, args, err := waitingEntryQuery(entry)
	if err != nil {
		return model.WaitlistEntry{}, err
	}
	var existing model.WaitlistEntry
	if err := r.db.GetContext(ctx, &existing, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.WaitlistEntry{}, errs.ErrNotFound
		}
		return model.WaitlistEntry{}, storeErr(err)
	}
	return existing, nil
}

// promoteOldestTx transitions the earliest waiting entry for the exact
// slot to promoted and stamps its hold expiry. Strict FIFO by
// created_at; runs inside the cancellation transaction so the hold
// commits atomically with the freed capacity. Returns nil when nobody
// is waiting.
func (r *repository) promoteOldestTx(ctx context.Context, tx *sqlx.Tx, sectionID string, date model.Date, slot string, bt model.BookingType, holdExpiresAt time.Time) (*model.WaitlistEntry, error) {
	var entry model.WaitlistEntry
	err := tx.QueryRowxContext(ctx, `
		update waitlist_entry set status = $1, hold_expires_at = $2
		where id = (
			select id from waitlist_entry
			where section_id = $3 and date = $4 and time_slot = $5 and booking_type = $6 and status = $7
			order by created_at, id
			limit 1
			for update skip locked
		)
		returning `+waitlistColumns,
		model.WaitlistPromoted, holdExpiresAt, sectionID, date, slot, bt, model.WaitlistWaiting,
	).StructScan(&entry)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// expireLapsedTx moves the section's promoted entries whose hold window
// has passed to expired. Runs opportunistically in the cancellation and
// join transactions; the occupancy queries ignore lapsed holds either way.
func (r *repository) expireLapsedTx(ctx context.Context, tx *sqlx.Tx, sectionID string, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		update waitlist_entry set status = $1
		where section_id = $2 and status = $3 and hold_expires_at is not null and hold_expires_at <= $4`,
		model.WaitlistExpired, sectionID, model.WaitlistPromoted, now)
	return err
}
