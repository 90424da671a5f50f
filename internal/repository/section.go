package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/gymboard/booking-service/internal/errs"
	"github.com/gymboard/booking-service/internal/model"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func (r *repository) CreateSection(ctx context.Context, section model.Section) (model.Section, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Section{}, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	section.ID = uuid.NewString()
	q, args, err := qb.Insert(sectionTableName).
		Columns("id", "name", "capacity_per_slot").
		Values(section.ID, section.Name, section.CapacityPerSlot).
		Suffix("returning created_at").
		ToSql()
	if err != nil {
		return model.Section{}, err
	}
	if err := tx.QueryRowContext(ctx, q, args...).Scan(&section.CreatedAt); err != nil {
		return model.Section{}, err
	}

	ins := qb.Insert(sectionHoursTableName).Columns("section_id", "weekday", "time_slot")
	empty := true
	for day, slots := range section.WeeklyHours {
		for _, slot := range slots {
			ins = ins.Values(section.ID, int(day), slot)
			empty = false
		}
	}
	if !empty {
		q, args, err = ins.ToSql()
		if err != nil {
			return model.Section{}, err
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return model.Section{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Section{}, errors.Wrap(err, "commit")
	}
	return section, nil
}

func (r *repository) GetSection(ctx context.Context, sectionID string) (model.Section, error) {
	q, args, err := qb.Select("id", "name", "capacity_per_slot", "created_at").
		From(sectionTableName).
		Where(sq.Eq{"id": sectionID}).
		ToSql()
	if err != nil {
		return model.Section{}, err
	}

	var section model.Section
	if err := r.db.GetContext(ctx, &section, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Section{}, errs.ErrNotFound
		}
		return model.Section{}, err
	}

	q, args, err = qb.Select("weekday", "time_slot").
		From(sectionHoursTableName).
		Where(sq.Eq{"section_id": sectionID}).
		OrderBy("weekday", "time_slot").
		ToSql()
	if err != nil {
		return model.Section{}, err
	}
	rows, err := r.db.QueryxContext(ctx, q, args...)
	if err != nil {
		return model.Section{}, err
	}
	defer rows.Close()

	section.WeeklyHours = make(model.WeeklyHours)
	for rows.Next() {
		var (
			weekday int
			slot    string
		)
		if err := rows.Scan(&weekday, &slot); err != nil {
			return model.Section{}, err
		}
		day := time.Weekday(weekday)
		section.WeeklyHours[day] = append(section.WeeklyHours[day], slot)
	}
	if err := rows.Err(); err != nil {
		return model.Section{}, err
	}
	return section, nil
}
