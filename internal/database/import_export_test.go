package database

import (
	"context"
	"testing"
	"time"

	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/testutil"
	"github.com/google/go-cmp/cmp"
)

func seedVault(t *testing.T, ctx context.Context) *Database {
	t.Helper()
	db := NewTestDataBuilder(t).
		WithAssignment("asg-1", models.CategoryExam, 180).
		WithAssignment("asg-2", models.CategoryReading, 40).
		WithBlocks(2).
		Build()
	archived := testutil.At(0, 7, 0)
	b, err := db.GetBlock(ctx, "blk-2-1")
	if err != nil {
		t.Fatalf("GetBlock failed: %v", err)
	}
	b.Status = models.BlockArchived
	b.ArchivedAt = &archived
	if err := db.SaveBlock(ctx, b); err != nil {
		t.Fatalf("SaveBlock failed: %v", err)
	}
	if err := db.SaveEvent(ctx, models.CalendarEvent{
		ID: "ev-1", Title: "Lab", Start: testutil.At(2, 13, 0), End: testutil.At(2, 15, 0), CreatedAt: testutil.Monday,
	}); err != nil {
		t.Fatalf("SaveEvent failed: %v", err)
	}
	newStart := testutil.At(0, 16, 0)
	newEnd := newStart.Add(time.Hour)
	if err := db.RecordAttempt(ctx, models.RescheduleAttempt{
		ID: "at-1", BlockID: "blk-1-1", AttemptType: models.AttemptManual, AttemptedAt: testutil.At(0, 8, 0),
		OldStart: testutil.At(0, 9, 0), OldEnd: testutil.At(0, 10, 0), NewStart: &newStart, NewEnd: &newEnd, Success: true,
	}); err != nil {
		t.Fatalf("RecordAttempt failed: %v", err)
	}
	return db
}

func assertSameVault(t *testing.T, ctx context.Context, want, got *Database) {
	t.Helper()
	wantAssignments, _ := want.ListAssignments(ctx)
	gotAssignments, err := got.ListAssignments(ctx)
	if err != nil {
		t.Fatalf("ListAssignments failed: %v", err)
	}
	if diff := cmp.Diff(wantAssignments, gotAssignments); diff != "" {
		t.Fatalf("assignments differ (-want +got):\n%s", diff)
	}
	wantBlocks, _ := want.ListBlocks(ctx, true)
	gotBlocks, err := got.ListBlocks(ctx, true)
	if err != nil {
		t.Fatalf("ListBlocks failed: %v", err)
	}
	if diff := cmp.Diff(wantBlocks, gotBlocks); diff != "" {
		t.Fatalf("blocks differ (-want +got):\n%s", diff)
	}
	wantEvents, _ := want.ListEvents(ctx)
	gotEvents, err := got.ListEvents(ctx)
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if diff := cmp.Diff(wantEvents, gotEvents); diff != "" {
		t.Fatalf("events differ (-want +got):\n%s", diff)
	}
	wantAttempts, _ := want.ListAttempts(ctx, "")
	gotAttempts, err := got.ListAttempts(ctx, "")
	if err != nil {
		t.Fatalf("ListAttempts failed: %v", err)
	}
	if diff := cmp.Diff(wantAttempts, gotAttempts); diff != "" {
		t.Fatalf("attempts differ (-want +got):\n%s", diff)
	}
}

func TestVaultExportImport(t *testing.T) {
	ctx := context.Background()
	db := seedVault(t, ctx)

	payload, err := db.ExportVault(ctx, ExportOptions{})
	if err != nil {
		t.Fatalf("ExportVault failed: %v", err)
	}

	otherDB := setupTestDB(t, ctx)
	summary, err := otherDB.ImportVault(ctx, payload, "")
	if err != nil {
		t.Fatalf("ImportVault failed: %v", err)
	}
	want := ImportSummary{Assignments: 2, Blocks: 4, Events: 1, Attempts: 1}
	if summary != want {
		t.Fatalf("summary = %+v, want %+v", summary, want)
	}
	assertSameVault(t, ctx, db, otherDB)

	// Importing twice replaces rows instead of duplicating them.
	if _, err := otherDB.ImportVault(ctx, payload, ""); err != nil {
		t.Fatalf("second ImportVault failed: %v", err)
	}
	assertSameVault(t, ctx, db, otherDB)
}

func TestImportVaultRejectsBadPayload(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	if _, err := db.ImportVault(ctx, []byte("not json"), ""); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
	bad := []byte(`{"version":1,"blocks":[{"id":"b","title":"x","start":"2026-03-02T10:00:00Z","end":"2026-03-02T09:00:00Z","status":"pending"}]}`)
	if _, err := db.ImportVault(ctx, bad, ""); err == nil {
		t.Fatalf("expected error for inverted interval")
	}
	if db.HasData(ctx) {
		t.Fatalf("failed import should leave database empty")
	}
}
