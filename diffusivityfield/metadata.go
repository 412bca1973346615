package diffusivityfield

import (
	"context"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/oceantracer/driftmap/internal/dayfetch"
	"github.com/oceantracer/driftmap/internal/xerrors"
)

// Metadata is the diffusivity metadata document of spec.md §6.
type Metadata struct {
	TotalDays int   `toml:"total_days"`
	Dates     []int `toml:"dates"` // YYYYMMDD
}

func loadMetadata(ctx context.Context, path string) (*Metadata, error) {
	raw, err := dayfetch.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	var m Metadata
	if _, err := toml.Decode(string(raw), &m); err != nil {
		return nil, fmt.Errorf("%w: decoding diffusivity metadata: %v", xerrors.FormatError, err)
	}
	return &m, nil
}

func dateKey(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// resolveSimDay converts a simulation day offset into a calendar date
// using the configured base date (spec.md §4.3's "day 0 = configured
// simulation start" convention applies identically here).
func resolveSimDay(baseDate time.Time, simDay float64) (year, month, day int) {
	date := baseDate.AddDate(0, 0, int(simDay))
	return date.Year(), int(date.Month()), date.Day()
}
