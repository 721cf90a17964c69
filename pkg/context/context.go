package context

import (
	"context"

	"github.com/google/uuid"
)

type ContextKey string

var (
	RunIDKey   = ContextKey("X-Run-Id")
	CommandKey = ContextKey("X-Command")
	BatchIDKey = ContextKey("X-Import-Batch-Id")
)

// NewRun tags ctx with a fresh run id and the command being executed.
func NewRun(ctx context.Context, command string) context.Context {
	ctx = SetRunID(ctx, uuid.New().String())
	return SetCommand(ctx, command)
}

func SetRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

func GetRunID(ctx context.Context) string {
	value, ok := ctx.Value(RunIDKey).(string)
	if !ok {
		return ""
	}
	return value
}

func SetCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, CommandKey, command)
}

func GetCommand(ctx context.Context) string {
	value, ok := ctx.Value(CommandKey).(string)
	if !ok {
		return ""
	}
	return value
}

func SetBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, BatchIDKey, batchID)
}

func GetBatchID(ctx context.Context) string {
	value, ok := ctx.Value(BatchIDKey).(string)
	if !ok {
		return ""
	}
	return value
}

// Fields returns the run-scoped values present in ctx as log fields.
func Fields(ctx context.Context) map[string]any {
	fields := map[string]any{}
	if v := GetRunID(ctx); v != "" {
		fields["run_id"] = v
	}
	if v := GetCommand(ctx); v != "" {
		fields["command"] = v
	}
	if v := GetBatchID(ctx); v != "" {
		fields["batch_id"] = v
	}
	return fields
}
