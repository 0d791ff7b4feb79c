package database

import (
	"context"
	"database/sql"

	"github.com/akyairhashvil/studyplan/internal/models"
)

const attemptColumns = `id, block_id, attempt_type, attempted_at, old_start, old_end,
	new_start, new_end, success, failure_reason`

// RecordAttempt appends a reschedule audit row.
func (d *Database) RecordAttempt(ctx context.Context, a models.RescheduleAttempt) error {
	return d.withDBContext(ctx, func(ctx context.Context) error {
		_, err := d.DB.ExecContext(ctx, `
			INSERT INTO reschedule_attempts (`+attemptColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.BlockID, string(a.AttemptType), formatTime(a.AttemptedAt),
			formatTime(a.OldStart), formatTime(a.OldEnd),
			formatTimePtr(a.NewStart), formatTimePtr(a.NewEnd),
			boolArg(a.Success), nullableString(a.FailureReason))
		return wrapErr(EntityAttempt, "record", a.ID, err)
	})
}

// ListAttempts returns audit rows, oldest first. An empty blockID lists all.
func (d *Database) ListAttempts(ctx context.Context, blockID string) ([]models.RescheduleAttempt, error) {
	return withDBContextResult(d, ctx, func(ctx context.Context) ([]models.RescheduleAttempt, error) {
		query := "SELECT " + attemptColumns + " FROM reschedule_attempts"
		var args []interface{}
		if blockID != "" {
			query += " WHERE block_id = ?"
			args = append(args, blockID)
		}
		query += " ORDER BY attempted_at ASC, id ASC"
		rows, err := d.DB.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, wrapErr(EntityAttempt, "list", blockID, err)
		}
		defer rows.Close()

		var out []models.RescheduleAttempt
		for rows.Next() {
			var a models.RescheduleAttempt
			var kind, at, oldStart, oldEnd string
			var newStart, newEnd, reason sql.NullString
			var success int
			if err := rows.Scan(&a.ID, &a.BlockID, &kind, &at, &oldStart, &oldEnd,
				&newStart, &newEnd, &success, &reason); err != nil {
				return nil, wrapErr(EntityAttempt, "list", blockID, err)
			}
			a.AttemptType = models.AttemptType(kind)
			a.Success = success != 0
			a.FailureReason = reason.String
			if a.AttemptedAt, err = parseTime(at); err != nil {
				return nil, wrapErr(EntityAttempt, "list", a.ID, err)
			}
			if a.OldStart, err = parseTime(oldStart); err != nil {
				return nil, wrapErr(EntityAttempt, "list", a.ID, err)
			}
			if a.OldEnd, err = parseTime(oldEnd); err != nil {
				return nil, wrapErr(EntityAttempt, "list", a.ID, err)
			}
			if a.NewStart, err = parseTimePtr(newStart); err != nil {
				return nil, wrapErr(EntityAttempt, "list", a.ID, err)
			}
			if a.NewEnd, err = parseTimePtr(newEnd); err != nil {
				return nil, wrapErr(EntityAttempt, "list", a.ID, err)
			}
			out = append(out, a)
		}
		if err := rows.Err(); err != nil {
			return nil, wrapErr(EntityAttempt, "list", blockID, err)
		}
		return out, nil
	})
}
