// Package xerrors holds the error-taxonomy sentinels shared across the
// field services, engine, and bake packages, so callers can use errors.Is
// against one canonical value regardless of which package raised it.
package xerrors

import "errors"

var (
	// IoError means a day file's fetch or read failed transiently. Field
	// services translate this into a found=false result for the specific
	// query rather than retrying within a step.
	IoError = errors.New("driftmap: I/O error")

	// FormatError means a binary header's version is unsupported, or its
	// declared dimensions are inconsistent with the payload size. It
	// aborts the load and is surfaced to the caller.
	FormatError = errors.New("driftmap: format error")

	// GridMiss means query coordinates fell outside the indexed envelope.
	GridMiss = errors.New("driftmap: grid miss")

	// InvalidConfiguration means a configuration boundary was given
	// malformed input; it is raised loudly and never partially applied.
	InvalidConfiguration = errors.New("driftmap: invalid configuration")

	// BakeAborted means a fatal error interrupted a headless bake run.
	// Partial snapshots collected before the abort remain valid.
	BakeAborted = errors.New("driftmap: bake aborted")
)
