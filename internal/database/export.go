package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/akyairhashvil/studyplan/internal/models"
)

// VaultFormatVersion is bumped when the export layout changes.
const VaultFormatVersion = 1

type ExportAssignment struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Category         string `json:"category"`
	Due              string `json:"due"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	Locked           bool   `json:"locked"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}

type ExportBlock struct {
	ID           string  `json:"id"`
	AssignmentID string  `json:"assignment_id,omitempty"`
	StepID       string  `json:"step_id,omitempty"`
	StepIndex    int     `json:"step_index,omitempty"`
	StepCount    int     `json:"step_count,omitempty"`
	Title        string  `json:"title"`
	Category     string  `json:"category,omitempty"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
	Status       string  `json:"status"`
	Locked       bool    `json:"locked,omitempty"`
	UserEdited   bool    `json:"user_edited,omitempty"`
	PlanKey      string  `json:"plan_key,omitempty"`
	CompletedAt  *string `json:"completed_at,omitempty"`
	ArchivedAt   *string `json:"archived_at,omitempty"`
}

type ExportEvent struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Start     string `json:"start"`
	End       string `json:"end"`
	CreatedAt string `json:"created_at"`
}

type ExportAttempt struct {
	ID            string  `json:"id"`
	BlockID       string  `json:"block_id"`
	AttemptType   string  `json:"attempt_type"`
	AttemptedAt   string  `json:"attempted_at"`
	OldStart      string  `json:"old_start"`
	OldEnd        string  `json:"old_end"`
	NewStart      *string `json:"new_start,omitempty"`
	NewEnd        *string `json:"new_end,omitempty"`
	Success       bool    `json:"success"`
	FailureReason string  `json:"failure_reason,omitempty"`
}

type ExportOptions struct {
	EncryptOutput bool
	Passphrase    string
}

type VaultExport struct {
	Version     int                `json:"version"`
	ExportedAt  string             `json:"exported_at"`
	Assignments []ExportAssignment `json:"assignments"`
	Blocks      []ExportBlock      `json:"blocks"`
	Events      []ExportEvent      `json:"events"`
	Attempts    []ExportAttempt    `json:"attempts"`
}

// ImportSummary counts the rows an import wrote.
type ImportSummary struct {
	Assignments int
	Blocks      int
	Events      int
	Attempts    int
}

func exportTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	val := t.UTC().Format(time.RFC3339Nano)
	return &val
}

func importTimePtr(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func exportTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ExportVault serializes every table into a JSON document, optionally
// sealed with a passphrase.
func (d *Database) ExportVault(ctx context.Context, opts ExportOptions) ([]byte, error) {
	assignments, err := d.ListAssignments(ctx)
	if err != nil {
		return nil, err
	}
	blocks, err := d.ListBlocks(ctx, true)
	if err != nil {
		return nil, err
	}
	events, err := d.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	attempts, err := d.ListAttempts(ctx, "")
	if err != nil {
		return nil, err
	}

	export := VaultExport{
		Version:     VaultFormatVersion,
		ExportedAt:  exportTime(time.Now()),
		Assignments: make([]ExportAssignment, 0, len(assignments)),
		Blocks:      make([]ExportBlock, 0, len(blocks)),
		Events:      make([]ExportEvent, 0, len(events)),
		Attempts:    make([]ExportAttempt, 0, len(attempts)),
	}
	for _, a := range assignments {
		export.Assignments = append(export.Assignments, ExportAssignment{
			ID:               a.ID,
			Title:            a.Title,
			Category:         string(a.Category),
			Due:              exportTime(a.Due),
			EstimatedMinutes: a.EstimatedMinutes,
			Locked:           a.Locked,
			CreatedAt:        exportTime(a.CreatedAt),
			UpdatedAt:        exportTime(a.UpdatedAt),
		})
	}
	for _, b := range blocks {
		export.Blocks = append(export.Blocks, ExportBlock{
			ID:           b.ID,
			AssignmentID: b.AssignmentID,
			StepID:       b.StepID,
			StepIndex:    b.StepIndex,
			StepCount:    b.StepCount,
			Title:        b.Title,
			Category:     string(b.Category),
			Start:        exportTime(b.Start),
			End:          exportTime(b.End),
			Status:       string(b.Status),
			Locked:       b.Locked,
			UserEdited:   b.UserEdited,
			PlanKey:      b.PlanKey,
			CompletedAt:  exportTimePtr(b.CompletedAt),
			ArchivedAt:   exportTimePtr(b.ArchivedAt),
		})
	}
	for _, e := range events {
		export.Events = append(export.Events, ExportEvent{
			ID:        e.ID,
			Title:     e.Title,
			Start:     exportTime(e.Start),
			End:       exportTime(e.End),
			CreatedAt: exportTime(e.CreatedAt),
		})
	}
	for _, a := range attempts {
		export.Attempts = append(export.Attempts, ExportAttempt{
			ID:            a.ID,
			BlockID:       a.BlockID,
			AttemptType:   string(a.AttemptType),
			AttemptedAt:   exportTime(a.AttemptedAt),
			OldStart:      exportTime(a.OldStart),
			OldEnd:        exportTime(a.OldEnd),
			NewStart:      exportTimePtr(a.NewStart),
			NewEnd:        exportTimePtr(a.NewEnd),
			Success:       a.Success,
			FailureReason: a.FailureReason,
		})
	}

	jsonData, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, wrapErr(EntityVault, "export", "", err)
	}
	if opts.EncryptOutput && opts.Passphrase != "" {
		sealed, err := encryptData(jsonData, opts.Passphrase)
		return sealed, wrapErr(EntityVault, "export", "", err)
	}
	return jsonData, nil
}

// ImportVault loads exported data into the database, replacing rows with
// matching IDs. Encrypted payloads need the passphrase used at export.
func (d *Database) ImportVault(ctx context.Context, payload []byte, passphrase string) (ImportSummary, error) {
	var summary ImportSummary
	if env, ok := isEncrypted(payload); ok {
		plain, err := decryptData(env, passphrase)
		if err != nil {
			return summary, wrapErr(EntityVault, "import", "", err)
		}
		payload = plain
	}

	var export VaultExport
	if err := json.Unmarshal(payload, &export); err != nil {
		return summary, fmt.Errorf("import vault: %w", err)
	}
	if export.Version > VaultFormatVersion {
		return summary, fmt.Errorf("import vault: unsupported version %d", export.Version)
	}

	err := d.WithTx(ctx, func(tx *sql.Tx) error {
		for _, a := range export.Assignments {
			due, err := time.Parse(time.RFC3339Nano, a.Due)
			if err != nil {
				return fmt.Errorf("import assignment %s: %w", a.ID, err)
			}
			created, _ := time.Parse(time.RFC3339Nano, a.CreatedAt)
			updated, _ := time.Parse(time.RFC3339Nano, a.UpdatedAt)
			if _, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO assignments (`+assignmentColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				a.ID, a.Title, a.Category, formatTime(due), a.EstimatedMinutes,
				boolArg(a.Locked), formatTime(created), formatTime(updated),
			); err != nil {
				return fmt.Errorf("import assignment %s: %w", a.ID, err)
			}
			summary.Assignments++
		}

		for _, eb := range export.Blocks {
			b, err := blockFromExport(eb)
			if err != nil {
				return fmt.Errorf("import block %s: %w", eb.ID, err)
			}
			if err := upsertBlock(ctx, tx, b); err != nil {
				return err
			}
			summary.Blocks++
		}

		for _, e := range export.Events {
			start, err := time.Parse(time.RFC3339Nano, e.Start)
			if err != nil {
				return fmt.Errorf("import event %s: %w", e.ID, err)
			}
			end, err := time.Parse(time.RFC3339Nano, e.End)
			if err != nil {
				return fmt.Errorf("import event %s: %w", e.ID, err)
			}
			created, _ := time.Parse(time.RFC3339Nano, e.CreatedAt)
			if _, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO calendar_events (id, title, start_at, end_at, created_at)
				VALUES (?, ?, ?, ?, ?)`,
				e.ID, e.Title, formatTime(start), formatTime(end), formatTime(created),
			); err != nil {
				return fmt.Errorf("import event %s: %w", e.ID, err)
			}
			summary.Events++
		}

		for _, a := range export.Attempts {
			at, _ := time.Parse(time.RFC3339Nano, a.AttemptedAt)
			oldStart, _ := time.Parse(time.RFC3339Nano, a.OldStart)
			oldEnd, _ := time.Parse(time.RFC3339Nano, a.OldEnd)
			newStart, err := importTimePtr(a.NewStart)
			if err != nil {
				return fmt.Errorf("import attempt %s: %w", a.ID, err)
			}
			newEnd, err := importTimePtr(a.NewEnd)
			if err != nil {
				return fmt.Errorf("import attempt %s: %w", a.ID, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO reschedule_attempts (`+attemptColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				a.ID, a.BlockID, a.AttemptType, formatTime(at), formatTime(oldStart), formatTime(oldEnd),
				formatTimePtr(newStart), formatTimePtr(newEnd), boolArg(a.Success), nullableString(a.FailureReason),
			); err != nil {
				return fmt.Errorf("import attempt %s: %w", a.ID, err)
			}
			summary.Attempts++
		}
		return nil
	})
	if err != nil {
		return ImportSummary{}, err
	}
	return summary, nil
}

func blockFromExport(eb ExportBlock) (models.ScheduledBlock, error) {
	start, err := time.Parse(time.RFC3339Nano, eb.Start)
	if err != nil {
		return models.ScheduledBlock{}, err
	}
	end, err := time.Parse(time.RFC3339Nano, eb.End)
	if err != nil {
		return models.ScheduledBlock{}, err
	}
	if !end.After(start) {
		return models.ScheduledBlock{}, fmt.Errorf("end %s not after start %s", eb.End, eb.Start)
	}
	completed, err := importTimePtr(eb.CompletedAt)
	if err != nil {
		return models.ScheduledBlock{}, err
	}
	archived, err := importTimePtr(eb.ArchivedAt)
	if err != nil {
		return models.ScheduledBlock{}, err
	}
	status := models.BlockStatus(eb.Status)
	if strings.TrimSpace(eb.Status) == "" {
		status = models.BlockPending
	}
	return models.ScheduledBlock{
		ID:           eb.ID,
		AssignmentID: eb.AssignmentID,
		StepID:       eb.StepID,
		StepIndex:    eb.StepIndex,
		StepCount:    eb.StepCount,
		Title:        eb.Title,
		Category:     models.Category(eb.Category),
		Start:        start,
		End:          end,
		Status:       status,
		Locked:       eb.Locked,
		UserEdited:   eb.UserEdited,
		PlanKey:      eb.PlanKey,
		CompletedAt:  completed,
		ArchivedAt:   archived,
	}, nil
}
