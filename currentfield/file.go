package currentfield

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/oceantracer/driftmap/internal/xerrors"
)

// parseDayFile decodes a velocity day file per spec.md §6. Version 4
// carries an explicit depth dimension; version 3 is the single-depth
// legacy form (header has no nDepth field, payload has no depth axis).
func parseDayFile(data []byte) (*Day, error) {
	r := bytes.NewReader(data)

	var version int32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("%w: reading version: %v", xerrors.FormatError, err)
	}

	var nLat, nLon, nDepth, year, month, day int32
	switch version {
	case 4:
		for _, f := range []*int32{&nLat, &nLon, &nDepth, &year, &month, &day} {
			if err := binary.Read(r, binary.LittleEndian, f); err != nil {
				return nil, fmt.Errorf("%w: reading header: %v", xerrors.FormatError, err)
			}
		}
	case 3:
		for _, f := range []*int32{&nLat, &nLon, &year, &month, &day} {
			if err := binary.Read(r, binary.LittleEndian, f); err != nil {
				return nil, fmt.Errorf("%w: reading header: %v", xerrors.FormatError, err)
			}
		}
		nDepth = 1
	default:
		return nil, fmt.Errorf("%w: unsupported velocity day file version %d", xerrors.FormatError, version)
	}

	if nLat <= 0 || nLon <= 0 || nDepth <= 0 {
		return nil, fmt.Errorf("%w: non-positive dimension (nLat=%d nLon=%d nDepth=%d)", xerrors.FormatError, nLat, nLon, nDepth)
	}

	nCells := int(nLat) * int(nLon)
	lon := make([]float32, nCells)
	lat := make([]float32, nCells)
	u := make([]float32, int(nDepth)*nCells)
	v := make([]float32, int(nDepth)*nCells)

	for _, arr := range []struct {
		name string
		dst  []float32
	}{
		{"lon", lon}, {"lat", lat}, {"u", u}, {"v", v},
	} {
		if err := binary.Read(r, binary.LittleEndian, arr.dst); err != nil {
			return nil, fmt.Errorf("%w: reading %s array (dimensions inconsistent with payload size): %v", xerrors.FormatError, arr.name, err)
		}
	}

	return &Day{
		Year: int(year), Month: int(month), Day: int(day),
		NLat: int(nLat), NLon: int(nLon), NDepth: int(nDepth),
		Lon: lon, Lat: lat, U: u, V: v,
	}, nil
}
