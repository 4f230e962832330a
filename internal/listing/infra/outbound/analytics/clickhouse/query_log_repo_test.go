package clickhouse

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sharedEvents "github.com/davicafu/hexaquery/shared/events"
)

func TestNonNil(t *testing.T) {
	assert.Equal(t, []string{}, nonNil(nil))
	assert.Equal(t, []string{"a"}, nonNil([]string{"a"}))
}

func TestQueryLogRepo_Integration(t *testing.T) {
	addr := os.Getenv("CLICKHOUSE_ADDR")
	if addr == "" {
		t.Skip("CLICKHOUSE_ADDR not set")
	}
	ctx := context.Background()
	repo, err := NewQueryLogRepo(ctx, addr, "default")
	require.NoError(t, err)
	defer repo.Close()
	require.NoError(t, repo.InitSchema(ctx))

	entity := "widgets_" + uuid.NewString()[:8]
	now := time.Now().UTC()
	batch := []sharedEvents.QueryExecuted{
		{ID: uuid.New(), Entity: entity, Format: "simple", Strategy: "offset", FilterFields: []string{"price", "status"}, OccurredAt: now},
		{ID: uuid.New(), Entity: entity, Format: "bracket", Strategy: "cursor", FilterFields: []string{"price"}, OccurredAt: now},
		{ID: uuid.New(), Entity: entity, Format: "simple", Strategy: "offset", OccurredAt: now},
	}
	require.NoError(t, repo.LogBatch(ctx, batch))

	usage, err := repo.TopFilteredFields(ctx, entity, now.Add(-time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, usage, 2)
	assert.Equal(t, "price", usage[0].Field)
	assert.Equal(t, uint64(2), usage[0].Queries)
	assert.Equal(t, "status", usage[1].Field)
}
