package context

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRun(t *testing.T) {
	ctx := NewRun(context.Background(), "generate-report")

	_, err := uuid.Parse(GetRunID(ctx))
	require.NoError(t, err)
	assert.Equal(t, "generate-report", GetCommand(ctx))
	assert.Empty(t, GetBatchID(ctx))
}

func TestFields(t *testing.T) {
	assert.Empty(t, Fields(context.Background()))

	ctx := SetRunID(context.Background(), "run-1")
	ctx = SetCommand(ctx, "import-cure-list")
	ctx = SetBatchID(ctx, "batch-1")

	assert.Equal(t, map[string]any{
		"run_id":   "run-1",
		"command":  "import-cure-list",
		"batch_id": "batch-1",
	}, Fields(ctx))
}
