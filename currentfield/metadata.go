package currentfield

import (
	"context"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/oceantracer/driftmap/internal/dayfetch"
	"github.com/oceantracer/driftmap/internal/xerrors"
)

// DayMeta is one entry of the metadata document's `days` list.
type DayMeta struct {
	DayOffset int    `toml:"day_offset"`
	Year      int    `toml:"year"`
	Month     int    `toml:"month"`
	Day       int    `toml:"day"`
	DateStr   string `toml:"date_str"`
}

// BoundingBox is the metadata document's `bounding_box` field.
type BoundingBox struct {
	North float64 `toml:"north"`
	South float64 `toml:"south"`
	East  float64 `toml:"east"`
	West  float64 `toml:"west"`
}

// Metadata is the velocity metadata document of spec.md §6.
type Metadata struct {
	Days        []DayMeta   `toml:"days"`
	Depths      []float64   `toml:"depths"`
	BoundingBox BoundingBox `toml:"bounding_box"`
}

// defaultDepths is used when a metadata document omits an explicit depths
// list, per spec.md §4.3.
var defaultDepths = []float64{0, 50, 100, 200, 500, 1000}

func loadMetadata(ctx context.Context, path string) (*Metadata, error) {
	raw, err := dayfetch.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	var m Metadata
	if _, err := toml.Decode(string(raw), &m); err != nil {
		return nil, fmt.Errorf("%w: decoding velocity metadata: %v", xerrors.FormatError, err)
	}
	if len(m.Depths) == 0 {
		m.Depths = append([]float64(nil), defaultDepths...)
	}
	return &m, nil
}

// dateKey returns the canonical cache key for a calendar date.
func dateKey(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// resolveSimDay converts a simulation day offset to the on-disk date key,
// via the metadata's day-offset table and the configured base date.
func (m *Metadata) resolveSimDay(baseDate time.Time, simDay float64) (DayMeta, bool) {
	offset := int(simDay)
	for _, d := range m.Days {
		if d.DayOffset == offset {
			return d, true
		}
	}
	// Fall back to deriving the calendar date directly from the base date
	// when the metadata doesn't enumerate every offset explicitly.
	date := baseDate.AddDate(0, 0, offset)
	return DayMeta{
		DayOffset: offset,
		Year:      date.Year(), Month: int(date.Month()), Day: date.Day(),
		DateStr: date.Format("2006-01-02"),
	}, len(m.Days) == 0
}
