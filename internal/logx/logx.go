package logx

import (
	"context"

	"pkt.systems/pslog"
	"pkt.systems/repostamp/schema"
)

type contextKey int

const (
	runKey contextKey = iota
)

// WithRun annotates the logger with the run id if present.
func WithRun(ctx context.Context, runID string) pslog.Logger {
	log := pslog.Ctx(ctx)
	if runID != "" {
		if current, ok := ctx.Value(runKey).(string); ok && current == runID {
			return log
		}
		log = log.With("run", runID)
	}
	return log
}

// WithDestination annotates the logger with the resolved destination.
func WithDestination(log pslog.Logger, dest schema.Destination) pslog.Logger {
	if dest.Login != "" {
		log = log.With("dest", dest.Login)
	}
	if dest.Kind != "" {
		log = log.With("dest_kind", string(dest.Kind))
	}
	return log
}

// WithRepo annotates the logger with repo metadata when available.
func WithRepo(log pslog.Logger, repo schema.RepoRef) pslog.Logger {
	if repo.FullName != "" {
		return log.With("repo", repo.FullName)
	}
	if repo.Name != "" {
		log = log.With("repo", repo.Name)
	}
	return log
}

// ContextWithRun stores the run marker on the context for log de-duplication.
func ContextWithRun(ctx context.Context, runID string) context.Context {
	if ctx == nil || runID == "" {
		return ctx
	}
	return context.WithValue(ctx, runKey, runID)
}

// ContextWithRunLogger attaches the logger and run marker to the context.
func ContextWithRunLogger(ctx context.Context, log pslog.Logger, runID string) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithRun(ctx, runID)
}
