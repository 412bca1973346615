package release

import (
	"errors"
	"fmt"

	"github.com/oceantracer/driftmap/internal/xerrors"
)

// ErrInvalidConfiguration is the sentinel for the InvalidConfiguration
// error class: phase end <= start, unknown tracer id, non-positive
// particle count, or overlapping phases. It never partially applies —
// SetPhases and SetTracer either fully succeed or leave the manager
// unchanged. It wraps the package-wide xerrors.InvalidConfiguration so
// callers can match on either.
var ErrInvalidConfiguration = fmt.Errorf("release: invalid configuration: %w", xerrors.InvalidConfiguration)

// ErrInvalidPhase reports a single malformed phase (end <= start, or a
// negative start).
var ErrInvalidPhase = errors.New("release: phase end must be after start")

// ErrOverlappingPhases reports two phases whose [start, end) intervals
// intersect. Overlap is rejected at validation time rather than resolved
// by declaration order, per the spec's recommended default.
var ErrOverlappingPhases = errors.New("release: phases may not overlap")
