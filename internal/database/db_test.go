package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/testutil"
	"github.com/google/go-cmp/cmp"
)

func setupTestDB(t *testing.T, ctx context.Context) *Database {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	db, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("db close failed: %v", err)
		}
	})
	return db
}

func TestOpen_MigrationsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	path := db.Path()
	if err := db.Close(); err != nil {
		t.Fatalf("db close failed: %v", err)
	}
	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open second run failed: %v", err)
	}
	defer reopened.Close()
	v, err := reopened.Version(ctx)
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if v != SchemaVersion {
		t.Fatalf("expected schema version %d, got %d", SchemaVersion, v)
	}
}

func TestAssignmentCRUD(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	a := testutil.NewAssignment().WithTitle("Essay").WithCategory(models.CategoryProject).WithMinutes(300).Build()
	a.CreatedAt = testutil.At(0, 8, 0)
	a.UpdatedAt = a.CreatedAt
	if err := db.SaveAssignment(ctx, a); err != nil {
		t.Fatalf("SaveAssignment failed: %v", err)
	}
	got, err := db.GetAssignment(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAssignment failed: %v", err)
	}
	if diff := cmp.Diff(a, got); diff != "" {
		t.Fatalf("assignment mismatch (-want +got):\n%s", diff)
	}

	a.Title = "Essay v2"
	a.Locked = true
	if err := db.SaveAssignment(ctx, a); err != nil {
		t.Fatalf("SaveAssignment update failed: %v", err)
	}
	list, err := db.ListAssignments(ctx)
	if err != nil {
		t.Fatalf("ListAssignments failed: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Essay v2" || !list[0].Locked {
		t.Fatalf("unexpected list %+v", list)
	}

	if err := db.DeleteAssignment(ctx, a.ID); err != nil {
		t.Fatalf("DeleteAssignment failed: %v", err)
	}
	if _, err := db.GetAssignment(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	err = db.DeleteAssignment(ctx, a.ID)
	var opErr *OpError
	if !errors.As(err, &opErr) || opErr.Resource != EntityAssignment || opErr.ID != a.ID {
		t.Fatalf("expected OpError for missing assignment, got %v", err)
	}
}

func TestBlockRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	done := testutil.At(1, 12, 0)
	b := testutil.NewBlock("blk-1").
		ForStep("asg-1", 2, 3).
		WithTitle("Homework 2/3").
		WithPlanKey("homework|1|90").
		UserEdited().
		Locked().
		Build()
	b.Category = models.CategoryHomework
	b.Status = models.BlockCompleted
	b.CompletedAt = &done
	if err := db.SaveBlock(ctx, b); err != nil {
		t.Fatalf("SaveBlock failed: %v", err)
	}
	got, err := db.GetBlock(ctx, "blk-1")
	if err != nil {
		t.Fatalf("GetBlock failed: %v", err)
	}
	if diff := cmp.Diff(b, got); diff != "" {
		t.Fatalf("block mismatch (-want +got):\n%s", diff)
	}
	if _, err := db.GetBlock(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListBlocksOrderingAndArchive(t *testing.T) {
	ctx := context.Background()
	db := NewTestDataBuilder(t).WithBlocks(3).Build()

	archivedAt := testutil.At(0, 6, 0)
	b, err := db.GetBlock(ctx, "blk-1-2")
	if err != nil {
		t.Fatalf("GetBlock failed: %v", err)
	}
	b.Status = models.BlockArchived
	b.ArchivedAt = &archivedAt
	if err := db.SaveBlock(ctx, b); err != nil {
		t.Fatalf("SaveBlock failed: %v", err)
	}

	active, err := db.ListBlocks(ctx, false)
	if err != nil {
		t.Fatalf("ListBlocks failed: %v", err)
	}
	if len(active) != 2 || active[0].ID != "blk-1-1" || active[1].ID != "blk-1-3" {
		t.Fatalf("unexpected active blocks %+v", active)
	}
	all, err := db.ListBlocks(ctx, true)
	if err != nil {
		t.Fatalf("ListBlocks(all) failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(all))
	}
	archived, err := db.ListArchivedBlocks(ctx)
	if err != nil {
		t.Fatalf("ListArchivedBlocks failed: %v", err)
	}
	if len(archived) != 1 || archived[0].ArchivedAt == nil || !archived[0].ArchivedAt.Equal(archivedAt) {
		t.Fatalf("unexpected archived blocks %+v", archived)
	}
}

func TestQueryBlocksOverlap(t *testing.T) {
	ctx := context.Background()
	db := NewTestDataBuilder(t).WithBlocks(3).Build()
	window := models.Interval{Start: testutil.At(1, 9, 30), End: testutil.At(2, 9, 0)}
	got, err := db.QueryBlocks(ctx, NewBlockQuery().WhereActive().WhereOverlaps(window))
	if err != nil {
		t.Fatalf("QueryBlocks failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "blk-1-2" {
		t.Fatalf("expected only blk-1-2, got %+v", got)
	}
}

func TestApplyBlockChanges(t *testing.T) {
	ctx := context.Background()
	db := NewTestDataBuilder(t).WithBlocks(2).Build()

	moved, err := db.GetBlock(ctx, "blk-1-1")
	if err != nil {
		t.Fatalf("GetBlock failed: %v", err)
	}
	moved.Start = moved.Start.Add(2 * time.Hour)
	moved.End = moved.End.Add(2 * time.Hour)
	added := testutil.NewBlock("blk-new").At(testutil.At(3, 10, 0), 30*time.Minute).Build()

	err = db.ApplyBlockChanges(ctx, BlockChanges{
		Upsert: []models.ScheduledBlock{moved, added},
		Delete: []string{"blk-1-2"},
	})
	if err != nil {
		t.Fatalf("ApplyBlockChanges failed: %v", err)
	}
	blocks, err := db.ListBlocks(ctx, true)
	if err != nil {
		t.Fatalf("ListBlocks failed: %v", err)
	}
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID
	}
	if diff := cmp.Diff([]string{"blk-1-1", "blk-new"}, ids); diff != "" {
		t.Fatalf("unexpected ids (-want +got):\n%s", diff)
	}
	if !blocks[0].Start.Equal(testutil.At(0, 11, 0)) {
		t.Fatalf("move not persisted: %v", blocks[0].Start)
	}
}

func TestApplyBlockChangesRollback(t *testing.T) {
	ctx := context.Background()
	db := NewTestDataBuilder(t).WithBlocks(1).Build()
	if _, err := db.DB.ExecContext(ctx, "CREATE TRIGGER no_delete BEFORE DELETE ON scheduled_blocks BEGIN SELECT RAISE(ABORT, 'blocked'); END"); err != nil {
		t.Fatalf("create trigger failed: %v", err)
	}
	added := testutil.NewBlock("blk-new").Build()
	err := db.ApplyBlockChanges(ctx, BlockChanges{
		Upsert: []models.ScheduledBlock{added},
		Delete: []string{"blk-1-1"},
	})
	if err == nil {
		t.Fatalf("expected error from blocked delete")
	}
	if _, err := db.GetBlock(ctx, "blk-new"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected upsert to roll back, got %v", err)
	}
}

func TestApplyBlockChangesDeletesAssignmentWithBlocks(t *testing.T) {
	ctx := context.Background()
	db := NewTestDataBuilder(t).WithBlocks(2).Build()
	blocks, err := db.ListBlocks(ctx, false)
	if err != nil {
		t.Fatalf("ListBlocks failed: %v", err)
	}
	now := testutil.At(0, 8, 0)
	for i := range blocks {
		blocks[i].Status = models.BlockArchived
		blocks[i].ArchivedAt = &now
	}

	err = db.ApplyBlockChanges(ctx, BlockChanges{Upsert: blocks, DeleteAssignments: []string{"asg-missing"}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if active, _ := db.ListBlocks(ctx, false); len(active) != 2 {
		t.Fatalf("failed assignment delete must roll back archiving, %d active", len(active))
	}

	if err := db.ApplyBlockChanges(ctx, BlockChanges{Upsert: blocks, DeleteAssignments: []string{"asg-1"}}); err != nil {
		t.Fatalf("ApplyBlockChanges failed: %v", err)
	}
	if _, err := db.GetAssignment(ctx, "asg-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected assignment removed, got %v", err)
	}
	archived, err := db.ListArchivedBlocks(ctx)
	if err != nil {
		t.Fatalf("ListArchivedBlocks failed: %v", err)
	}
	if len(archived) != 2 {
		t.Fatalf("expected 2 archived blocks, got %d", len(archived))
	}
}

func TestEventsAndAttempts(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	ev := models.CalendarEvent{ID: "ev-1", Title: "Lab", Start: testutil.At(0, 13, 0), End: testutil.At(0, 15, 0), CreatedAt: testutil.At(0, 8, 0)}
	if err := db.SaveEvent(ctx, ev); err != nil {
		t.Fatalf("SaveEvent failed: %v", err)
	}
	events, err := db.ListEvents(ctx)
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if diff := cmp.Diff([]models.CalendarEvent{ev}, events); diff != "" {
		t.Fatalf("event mismatch (-want +got):\n%s", diff)
	}
	if err := db.DeleteEvent(ctx, "ev-1"); err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}
	if err := db.DeleteEvent(ctx, "ev-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	newStart := testutil.At(0, 16, 0)
	newEnd := testutil.At(0, 17, 0)
	attempts := []models.RescheduleAttempt{
		{ID: "at-1", BlockID: "blk-1", AttemptType: models.AttemptManual, AttemptedAt: testutil.At(0, 9, 0),
			OldStart: testutil.At(0, 14, 0), OldEnd: testutil.At(0, 15, 0), FailureReason: "conflict"},
		{ID: "at-2", BlockID: "blk-1", AttemptType: models.AttemptManual, AttemptedAt: testutil.At(0, 9, 5),
			OldStart: testutil.At(0, 14, 0), OldEnd: testutil.At(0, 15, 0), NewStart: &newStart, NewEnd: &newEnd, Success: true},
		{ID: "at-3", BlockID: "blk-2", AttemptType: models.AttemptAutoConflict, AttemptedAt: testutil.At(0, 9, 10),
			OldStart: testutil.At(1, 14, 0), OldEnd: testutil.At(1, 15, 0)},
	}
	for _, a := range attempts {
		if err := db.RecordAttempt(ctx, a); err != nil {
			t.Fatalf("RecordAttempt failed: %v", err)
		}
	}
	got, err := db.ListAttempts(ctx, "blk-1")
	if err != nil {
		t.Fatalf("ListAttempts failed: %v", err)
	}
	if diff := cmp.Diff(attempts[:2], got); diff != "" {
		t.Fatalf("attempt mismatch (-want +got):\n%s", diff)
	}
	all, err := db.ListAttempts(ctx, "")
	if err != nil {
		t.Fatalf("ListAttempts(all) failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(all))
	}
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	if _, ok := db.GetSetting(ctx, "last_refresh"); ok {
		t.Fatalf("expected missing setting")
	}
	if err := db.SetSetting(ctx, "last_refresh", "a"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := db.SetSetting(ctx, "last_refresh", "b"); err != nil {
		t.Fatalf("SetSetting overwrite failed: %v", err)
	}
	if v, ok := db.GetSetting(ctx, "last_refresh"); !ok || v != "b" {
		t.Fatalf("expected b, got %q %v", v, ok)
	}
	if db.HasData(ctx) {
		t.Fatalf("settings alone should not count as data")
	}
}
