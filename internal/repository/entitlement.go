package repository

import (
	"context"
	"database/sql"

	"github.com/gymboard/booking-service/internal/errs"
	"github.com/gymboard/booking-service/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

func (r *repository) GrantEntitlement(ctx context.Context, ent model.Entitlement) (model.Entitlement, error) {
	q, args, err := qb.Insert(entitlementTableName).
		Columns("consumer_id", "kind", "remaining_count", "period_end").
		Values(ent.ConsumerID, ent.Kind, ent.RemainingCount, ent.PeriodEnd).
		Suffix("returning id").
		ToSql()
	if err != nil {
		return model.Entitlement{}, err
	}
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&ent.ID); err != nil {
		return model.Entitlement{}, storeErr(err)
	}
	return ent, nil
}

func (r *repository) ListEntitlements(ctx context.Context, consumerID string) ([]model.Entitlement, error) {
	q, args, err := qb.Select("id", "consumer_id", "kind", "remaining_count", "period_end").
		From(entitlementTableName).
		Where(sq.Eq{"consumer_id": consumerID}).
		OrderBy("kind", "period_end nulls last").
		ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.Entitlement
	if err := r.db.SelectContext(ctx, &items, q, args...); err != nil {
		return nil, err
	}
	return items, nil
}

// consumeEntitlementTx spends one unit of quota for the booking type.
// Kinds are tried in preference order (videocall packages before single
// sessions). An unbounded entitlement (NULL remaining) covers the
// booking without a decrement. The conditional UPDATE guarantees the
// balance never goes negative under concurrency.
func (r *repository) consumeEntitlementTx(ctx context.Context, tx *sqlx.Tx, consumerID string, bt model.BookingType, today model.Date) error {
	for _, kind := range model.KindsFor(bt) {
		var id int
		err := tx.QueryRowContext(ctx, `
			select id from entitlement
			where consumer_id = $1 and kind = $2 and remaining_count is null
				and (period_end is null or period_end >= $3)
			limit 1`,
			consumerID, kind, today,
		).Scan(&id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		var remaining int
		err = tx.QueryRowContext(ctx, `
			update entitlement set remaining_count = remaining_count - 1
			where id = (
				select id from entitlement
				where consumer_id = $1 and kind = $2 and remaining_count > 0
					and (period_end is null or period_end >= $3)
				order by period_end asc nulls last, id
				limit 1
				for update skip locked
			)
			returning remaining_count`,
			consumerID, kind, today,
		).Scan(&remaining)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
	}
	return errs.ErrEntitlementExhausted
}
