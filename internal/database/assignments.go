package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/util"
)

const assignmentColumns = "id, title, category, due_at, estimated_minutes, locked, created_at, updated_at"

func scanAssignment(s rowScanner) (models.Assignment, error) {
	var a models.Assignment
	var category, due, created, updated string
	var locked int
	if err := s.Scan(&a.ID, &a.Title, &category, &due, &a.EstimatedMinutes, &locked, &created, &updated); err != nil {
		return a, err
	}
	a.Category = models.Category(category)
	a.Locked = util.IntToBool(locked)
	var err error
	if a.Due, err = parseTime(due); err != nil {
		return a, err
	}
	if a.CreatedAt, err = parseTime(created); err != nil {
		return a, err
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return a, err
	}
	return a, nil
}

// SaveAssignment inserts or replaces an assignment.
func (d *Database) SaveAssignment(ctx context.Context, a models.Assignment) error {
	return d.withDBContext(ctx, func(ctx context.Context) error {
		_, err := d.DB.ExecContext(ctx, `
			INSERT INTO assignments (`+assignmentColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				title = excluded.title,
				category = excluded.category,
				due_at = excluded.due_at,
				estimated_minutes = excluded.estimated_minutes,
				locked = excluded.locked,
				updated_at = excluded.updated_at`,
			a.ID, a.Title, string(a.Category), formatTime(a.Due), a.EstimatedMinutes,
			boolArg(a.Locked), formatTime(a.CreatedAt), formatTime(a.UpdatedAt))
		return wrapErr(EntityAssignment, "save", a.ID, err)
	})
}

// GetAssignment loads one assignment. Missing rows return ErrNotFound.
func (d *Database) GetAssignment(ctx context.Context, id string) (models.Assignment, error) {
	return withDBContextResult(d, ctx, func(ctx context.Context) (models.Assignment, error) {
		row := d.DB.QueryRowContext(ctx, "SELECT "+assignmentColumns+" FROM assignments WHERE id = ?", id)
		a, err := scanAssignment(row)
		if errors.Is(err, sql.ErrNoRows) {
			return a, wrapErr(EntityAssignment, "get", id, ErrNotFound)
		}
		return a, wrapErr(EntityAssignment, "get", id, err)
	})
}

// ListAssignments returns every assignment ordered by due date.
func (d *Database) ListAssignments(ctx context.Context) ([]models.Assignment, error) {
	return withDBContextResult(d, ctx, func(ctx context.Context) ([]models.Assignment, error) {
		rows, err := d.DB.QueryContext(ctx, "SELECT "+assignmentColumns+" FROM assignments ORDER BY due_at ASC, id ASC")
		if err != nil {
			return nil, wrapErr(EntityAssignment, "list", "", err)
		}
		defer rows.Close()

		var out []models.Assignment
		for rows.Next() {
			a, err := scanAssignment(rows)
			if err != nil {
				return nil, wrapErr(EntityAssignment, "list", "", err)
			}
			out = append(out, a)
		}
		if err := rows.Err(); err != nil {
			return nil, wrapErr(EntityAssignment, "list", "", err)
		}
		return out, nil
	})
}

// DeleteAssignment removes the assignment row. Its blocks are left for the
// caller to archive.
func (d *Database) DeleteAssignment(ctx context.Context, id string) error {
	return d.withDBContext(ctx, func(ctx context.Context) error {
		res, err := d.DB.ExecContext(ctx, "DELETE FROM assignments WHERE id = ?", id)
		if err != nil {
			return wrapErr(EntityAssignment, "delete", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return wrapErr(EntityAssignment, "delete", id, ErrNotFound)
		}
		return nil
	})
}
