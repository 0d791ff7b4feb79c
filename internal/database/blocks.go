package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/util"
)

// BlockChanges is a batch written atomically by ApplyBlockChanges.
// DeleteAssignments removes assignment rows after the block writes, so an
// assignment and the archiving of its blocks commit together.
type BlockChanges struct {
	Upsert            []models.ScheduledBlock
	Delete            []string
	DeleteAssignments []string
}

// Empty reports whether the batch has nothing to write.
func (c BlockChanges) Empty() bool {
	return len(c.Upsert) == 0 && len(c.Delete) == 0 && len(c.DeleteAssignments) == 0
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func scanBlock(s rowScanner) (models.ScheduledBlock, error) {
	var b models.ScheduledBlock
	var assignmentID, stepID, category, planKey, completed, archived sql.NullString
	var start, end, status string
	var locked, edited int
	if err := s.Scan(&b.ID, &assignmentID, &stepID, &b.StepIndex, &b.StepCount, &b.Title, &category,
		&start, &end, &status, &locked, &edited, &planKey, &completed, &archived); err != nil {
		return b, err
	}
	b.AssignmentID = assignmentID.String
	b.StepID = stepID.String
	b.Category = models.Category(category.String)
	b.PlanKey = planKey.String
	b.Status = models.BlockStatus(status)
	b.Locked = util.IntToBool(locked)
	b.UserEdited = util.IntToBool(edited)

	var err error
	if b.Start, err = parseTime(start); err != nil {
		return b, err
	}
	if b.End, err = parseTime(end); err != nil {
		return b, err
	}
	if b.CompletedAt, err = parseTimePtr(completed); err != nil {
		return b, err
	}
	if b.ArchivedAt, err = parseTimePtr(archived); err != nil {
		return b, err
	}
	return b, nil
}

func upsertBlock(ctx context.Context, ex execer, b models.ScheduledBlock) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO scheduled_blocks (`+blockColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			assignment_id = excluded.assignment_id,
			step_id = excluded.step_id,
			step_index = excluded.step_index,
			step_count = excluded.step_count,
			title = excluded.title,
			category = excluded.category,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			status = excluded.status,
			locked = excluded.locked,
			user_edited = excluded.user_edited,
			plan_key = excluded.plan_key,
			completed_at = excluded.completed_at,
			archived_at = excluded.archived_at`,
		b.ID, nullableString(b.AssignmentID), nullableString(b.StepID), b.StepIndex, b.StepCount,
		b.Title, nullableString(string(b.Category)), formatTime(b.Start), formatTime(b.End),
		string(b.Status), boolArg(b.Locked), boolArg(b.UserEdited), nullableString(b.PlanKey),
		formatTimePtr(b.CompletedAt), formatTimePtr(b.ArchivedAt))
	return wrapErr(EntityBlock, "save", b.ID, err)
}

// QueryBlocks runs a composed block query.
func (d *Database) QueryBlocks(ctx context.Context, q *BlockQuery) ([]models.ScheduledBlock, error) {
	return withDBContextResult(d, ctx, func(ctx context.Context) ([]models.ScheduledBlock, error) {
		query, args := q.Build()
		rows, err := d.DB.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, wrapErr(EntityBlock, "list", "", err)
		}
		defer rows.Close()

		var out []models.ScheduledBlock
		for rows.Next() {
			b, err := scanBlock(rows)
			if err != nil {
				return nil, wrapErr(EntityBlock, "list", "", err)
			}
			out = append(out, b)
		}
		if err := rows.Err(); err != nil {
			return nil, wrapErr(EntityBlock, "list", "", err)
		}
		return out, nil
	})
}

// ListBlocks returns the schedule ordered by start time. Archived blocks are
// included only on request.
func (d *Database) ListBlocks(ctx context.Context, includeArchived bool) ([]models.ScheduledBlock, error) {
	q := NewBlockQuery()
	if !includeArchived {
		q.WhereActive()
	}
	return d.QueryBlocks(ctx, q)
}

// ListArchivedBlocks returns retired blocks, most recently archived first.
func (d *Database) ListArchivedBlocks(ctx context.Context) ([]models.ScheduledBlock, error) {
	return d.QueryBlocks(ctx, NewBlockQuery().
		WhereStatus(models.BlockArchived).
		OrderBy("archived_at DESC, start_at ASC"))
}

// GetBlock loads one block. Missing rows return ErrNotFound.
func (d *Database) GetBlock(ctx context.Context, id string) (models.ScheduledBlock, error) {
	return withDBContextResult(d, ctx, func(ctx context.Context) (models.ScheduledBlock, error) {
		query, args := NewBlockQuery().Where("id = ?", id).Build()
		b, err := scanBlock(d.DB.QueryRowContext(ctx, query, args...))
		if errors.Is(err, sql.ErrNoRows) {
			return b, wrapErr(EntityBlock, "get", id, ErrNotFound)
		}
		return b, wrapErr(EntityBlock, "get", id, err)
	})
}

// SaveBlock inserts or updates one block.
func (d *Database) SaveBlock(ctx context.Context, b models.ScheduledBlock) error {
	return d.withDBContext(ctx, func(ctx context.Context) error {
		return upsertBlock(ctx, d.DB, b)
	})
}

// ApplyBlockChanges writes a batch of upserts and hard deletes in one
// transaction. Either all changes land or none do.
func (d *Database) ApplyBlockChanges(ctx context.Context, changes BlockChanges) error {
	if changes.Empty() {
		return nil
	}
	return d.WithTx(ctx, func(tx *sql.Tx) error {
		for _, b := range changes.Upsert {
			if err := upsertBlock(ctx, tx, b); err != nil {
				return err
			}
		}
		for _, id := range changes.Delete {
			if _, err := tx.ExecContext(ctx, "DELETE FROM scheduled_blocks WHERE id = ?", id); err != nil {
				return wrapErr(EntityBlock, "delete", id, err)
			}
		}
		for _, id := range changes.DeleteAssignments {
			res, err := tx.ExecContext(ctx, "DELETE FROM assignments WHERE id = ?", id)
			if err != nil {
				return wrapErr(EntityAssignment, "delete", id, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return wrapErr(EntityAssignment, "delete", id, ErrNotFound)
			}
		}
		return nil
	})
}
