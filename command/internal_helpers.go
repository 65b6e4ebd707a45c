package command

import (
	"context"
	"time"

	"github.com/goliatone/go-avatars/pkg/types"
)

func safeClock(clock types.Clock) types.Clock {
	if clock != nil {
		return clock
	}
	return types.SystemClock{}
}

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

func safeHooks(hooks types.Hooks) types.Hooks {
	return hooks
}

func safeActivitySink(sink types.ActivitySink) types.ActivitySink {
	return sink
}

func safeIDGenerator(gen types.IDGenerator) types.IDGenerator {
	if gen != nil {
		return gen
	}
	return types.UUIDGenerator{}
}

func now(clock types.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now()
}

func emitAvatarUpdatedHook(ctx context.Context, hooks types.Hooks, event types.AvatarEvent) {
	if hooks.AfterAvatarUpdated == nil {
		return
	}
	hooks.AfterAvatarUpdated(ctx, event)
}

func emitAvatarDeletedHook(ctx context.Context, hooks types.Hooks, event types.AvatarEvent) {
	if hooks.AfterAvatarDeleted == nil {
		return
	}
	hooks.AfterAvatarDeleted(ctx, event)
}

func logActivity(ctx context.Context, sink types.ActivitySink, record types.ActivityRecord) {
	if sink == nil {
		return
	}
	_ = sink.Log(ctx, record)
}

func emitActivityHook(ctx context.Context, hooks types.Hooks, record types.ActivityRecord) {
	if hooks.AfterActivity == nil {
		return
	}
	hooks.AfterActivity(ctx, record)
}
