package core

import "pkt.systems/pslog"

// CreatorDeps captures dependencies for the repository creator.
type CreatorDeps struct {
	Remote Remote
	// Log receives non-fatal failures. A sink sized from the run config is created when nil.
	Log    *LogSink
	Logger pslog.Logger
	// NewRunID overrides run id generation.
	NewRunID func() string
}
