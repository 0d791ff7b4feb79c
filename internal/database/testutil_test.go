package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/akyairhashvil/studyplan/internal/models"
	"github.com/akyairhashvil/studyplan/internal/testutil"
)

type TestDataBuilder struct {
	t             *testing.T
	ctx           context.Context
	db            *Database
	assignmentIDs []string
	blockIDs      []string
}

func NewTestDataBuilder(t *testing.T) *TestDataBuilder {
	t.Helper()
	ctx := context.Background()
	db := setupTestDB(t, ctx)
	return &TestDataBuilder{t: t, ctx: ctx, db: db}
}

func (b *TestDataBuilder) WithAssignment(id string, category models.Category, minutes int) *TestDataBuilder {
	b.t.Helper()
	a := testutil.NewAssignment().WithID(id).WithCategory(category).WithMinutes(minutes).Build()
	if err := b.db.SaveAssignment(b.ctx, a); err != nil {
		b.t.Fatalf("SaveAssignment failed: %v", err)
	}
	b.assignmentIDs = append(b.assignmentIDs, id)
	return b
}

// WithBlocks adds count hour-long blocks per assignment on consecutive days.
func (b *TestDataBuilder) WithBlocks(count int) *TestDataBuilder {
	b.t.Helper()
	if len(b.assignmentIDs) == 0 {
		b.WithAssignment("asg-1", models.CategoryHomework, 90)
	}
	for ai, aid := range b.assignmentIDs {
		for i := 0; i < count; i++ {
			id := fmt.Sprintf("blk-%d-%d", ai+1, i+1)
			block := testutil.NewBlock(id).
				ForStep(aid, i+1, count).
				At(testutil.At(i, 9+ai, 0), time.Hour).
				Build()
			if err := b.db.SaveBlock(b.ctx, block); err != nil {
				b.t.Fatalf("SaveBlock failed: %v", err)
			}
			b.blockIDs = append(b.blockIDs, id)
		}
	}
	return b
}

func (b *TestDataBuilder) Build() *Database {
	return b.db
}

func (b *TestDataBuilder) BlockIDs() []string {
	return b.blockIDs
}
