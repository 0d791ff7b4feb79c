package database

import (
	"fmt"
	"strings"

	"github.com/akyairhashvil/studyplan/internal/models"
)

const blockColumns = `id, assignment_id, step_id, step_index, step_count, title, category,
	start_at, end_at, status, locked, user_edited, plan_key, completed_at, archived_at`

// BlockQuery composes a SELECT over scheduled_blocks.
type BlockQuery struct {
	filters []string
	args    []interface{}
	orderBy string
	limit   int
}

func NewBlockQuery() *BlockQuery {
	return &BlockQuery{orderBy: "start_at ASC, id ASC"}
}

func (q *BlockQuery) Where(filter string, args ...interface{}) *BlockQuery {
	q.filters = append(q.filters, filter)
	q.args = append(q.args, args...)
	return q
}

func (q *BlockQuery) WhereActive() *BlockQuery {
	return q.Where("status != ?", string(models.BlockArchived))
}

func (q *BlockQuery) WhereStatus(status models.BlockStatus) *BlockQuery {
	return q.Where("status = ?", string(status))
}

func (q *BlockQuery) WhereAssignment(assignmentID string) *BlockQuery {
	return q.Where("assignment_id = ?", assignmentID)
}

// WhereOverlaps keeps blocks intersecting [from, to).
func (q *BlockQuery) WhereOverlaps(r models.Interval) *BlockQuery {
	return q.Where("start_at < ? AND end_at > ?", formatTime(r.End), formatTime(r.Start))
}

func (q *BlockQuery) OrderBy(orderBy string) *BlockQuery {
	q.orderBy = orderBy
	return q
}

func (q *BlockQuery) Limit(limit int) *BlockQuery {
	q.limit = limit
	return q
}

func (q *BlockQuery) Build() (string, []interface{}) {
	query := fmt.Sprintf("SELECT %s FROM scheduled_blocks", blockColumns)
	if len(q.filters) > 0 {
		query += " WHERE " + strings.Join(q.filters, " AND ")
	}
	if q.orderBy != "" {
		query += " ORDER BY " + q.orderBy
	}
	if q.limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.limit)
	}
	return query, q.args
}
