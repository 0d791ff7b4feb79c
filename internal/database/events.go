package database

import (
	"context"

	"github.com/akyairhashvil/studyplan/internal/models"
)

// SaveEvent inserts or replaces a calendar event.
func (d *Database) SaveEvent(ctx context.Context, e models.CalendarEvent) error {
	return d.withDBContext(ctx, func(ctx context.Context) error {
		_, err := d.DB.ExecContext(ctx, `
			INSERT OR REPLACE INTO calendar_events (id, title, start_at, end_at, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			e.ID, e.Title, formatTime(e.Start), formatTime(e.End), formatTime(e.CreatedAt))
		return wrapErr(EntityEvent, "save", e.ID, err)
	})
}

// ListEvents returns every calendar event ordered by start.
func (d *Database) ListEvents(ctx context.Context) ([]models.CalendarEvent, error) {
	return withDBContextResult(d, ctx, func(ctx context.Context) ([]models.CalendarEvent, error) {
		rows, err := d.DB.QueryContext(ctx,
			"SELECT id, title, start_at, end_at, created_at FROM calendar_events ORDER BY start_at ASC, id ASC")
		if err != nil {
			return nil, wrapErr(EntityEvent, "list", "", err)
		}
		defer rows.Close()

		var out []models.CalendarEvent
		for rows.Next() {
			var e models.CalendarEvent
			var start, end, created string
			if err := rows.Scan(&e.ID, &e.Title, &start, &end, &created); err != nil {
				return nil, wrapErr(EntityEvent, "list", "", err)
			}
			if e.Start, err = parseTime(start); err != nil {
				return nil, wrapErr(EntityEvent, "list", e.ID, err)
			}
			if e.End, err = parseTime(end); err != nil {
				return nil, wrapErr(EntityEvent, "list", e.ID, err)
			}
			if e.CreatedAt, err = parseTime(created); err != nil {
				return nil, wrapErr(EntityEvent, "list", e.ID, err)
			}
			out = append(out, e)
		}
		if err := rows.Err(); err != nil {
			return nil, wrapErr(EntityEvent, "list", "", err)
		}
		return out, nil
	})
}

// DeleteEvent removes a calendar event.
func (d *Database) DeleteEvent(ctx context.Context, id string) error {
	return d.withDBContext(ctx, func(ctx context.Context) error {
		res, err := d.DB.ExecContext(ctx, "DELETE FROM calendar_events WHERE id = ?", id)
		if err != nil {
			return wrapErr(EntityEvent, "delete", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return wrapErr(EntityEvent, "delete", id, ErrNotFound)
		}
		return nil
	})
}
