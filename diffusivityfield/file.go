package diffusivityfield

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/oceantracer/driftmap/internal/xerrors"
)

// parseCoordFile decodes the diffusivity coordinate file of spec.md §6:
// header (3x i32 version, nLat, nLon), payload lon/lat f32 arrays.
func parseCoordFile(data []byte) (*Coords, error) {
	r := bytes.NewReader(data)
	var version, nLat, nLon int32
	for _, f := range []*int32{&version, &nLat, &nLon} {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("%w: reading coordinate header: %v", xerrors.FormatError, err)
		}
	}
	if nLat <= 0 || nLon <= 0 {
		return nil, fmt.Errorf("%w: non-positive coordinate dimension (nLat=%d nLon=%d)", xerrors.FormatError, nLat, nLon)
	}
	nCells := int(nLat) * int(nLon)
	lon := make([]float32, nCells)
	lat := make([]float32, nCells)
	if err := binary.Read(r, binary.LittleEndian, lon); err != nil {
		return nil, fmt.Errorf("%w: reading coordinate lon array: %v", xerrors.FormatError, err)
	}
	if err := binary.Read(r, binary.LittleEndian, lat); err != nil {
		return nil, fmt.Errorf("%w: reading coordinate lat array: %v", xerrors.FormatError, err)
	}
	return &Coords{NLat: int(nLat), NLon: int(nLon), Lon: lon, Lat: lat}, nil
}

// parseDayFile decodes a diffusivity day file of spec.md §6, version=1:
// header (4x i32 version, year, month, day), payload K[nLat*nLon] f32.
func parseDayFile(data []byte, nCells int) (*Day, error) {
	r := bytes.NewReader(data)
	var version, year, month, day int32
	for _, f := range []*int32{&version, &year, &month, &day} {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("%w: reading diffusivity day header: %v", xerrors.FormatError, err)
		}
	}
	if version != 1 {
		return nil, fmt.Errorf("%w: unsupported diffusivity day file version %d", xerrors.FormatError, version)
	}
	k := make([]float32, nCells)
	if err := binary.Read(r, binary.LittleEndian, k); err != nil {
		return nil, fmt.Errorf("%w: reading K array (dimensions inconsistent with payload size): %v", xerrors.FormatError, err)
	}
	return &Day{Year: int(year), Month: int(month), Day: int(day), K: k}, nil
}
