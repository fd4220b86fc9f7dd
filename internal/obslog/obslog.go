// Package obslog centralizes SMS's structured logging on top of
// go.uber.org/zap, matching the logging style the rest of the retrieval
// pack's simulator tooling (e.g. rcornwell-S370) uses rather than
// reaching for the standard library's log package.
package obslog

import "go.uber.org/zap"

// New builds a production zap.Logger named "sms", with proc_id pinned as
// a base field so every log line from a given core's SMS instance is
// already labeled.
func New(procID uint64) (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger.Named("sms").With(zap.Uint64("proc_id", procID)), nil
}

// Nop returns a logger that discards everything, for tests that don't
// care about log output.
func Nop() *zap.Logger {
	return zap.NewNop()
}
