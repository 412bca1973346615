package currentfield

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeVelocityDayFileV4(t *testing.T, path string, nLat, nLon, nDepth int, lon, lat, u, v []float32, year, month, day int) {
	t.Helper()
	buf := new(bytes.Buffer)
	for _, f := range []int32{4, int32(nLat), int32(nLon), int32(nDepth), int32(year), int32(month), int32(day)} {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			t.Fatal(err)
		}
	}
	for _, arr := range [][]float32{lon, lat, u, v} {
		if err := binary.Write(buf, binary.LittleEndian, arr); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()

	metaTOML := `
depths = [0, 50, 100]

[[days]]
day_offset = 0
year = 2024
month = 1
day = 1
date_str = "2024-01-01"

[bounding_box]
north = 10.0
south = -10.0
east = 10.0
west = -10.0
`
	if err := os.WriteFile(filepath.Join(dir, "velocity_meta.toml"), []byte(metaTOML), 0o644); err != nil {
		t.Fatal(err)
	}

	// 3x3 grid spanning roughly (-1,-1) to (1,1) degrees, one land cell at
	// the north-east corner (2,2), rest ocean with uniform u=0.1, v=0. The
	// land cell sits on an even row and column so the KD-tree's
	// every-second-cell subsample indexes it.
	nLat, nLon := 3, 3
	lon := []float32{-1, 0, 1, -1, 0, 1, -1, 0, 1}
	lat := []float32{-1, -1, -1, 0, 0, 0, 1, 1, 1}
	u := make([]float32, nLat*nLon)
	v := make([]float32, nLat*nLon)
	for i := range u {
		u[i] = 0.1
		v[i] = 0
	}
	landIdx := 2*nLon + 2
	u[landIdx] = float32(math.NaN())

	writeVelocityDayFileV4(t, filepath.Join(dir, "velocity_20240101.bin"), nLat, nLon, 1, lon, lat, u, v, 2024, 1, 1)

	svc := NewService(Config{DataDir: dir, BaseDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	if err := svc.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return svc
}

func TestGetVelocityOceanCell(t *testing.T) {
	svc := newTestService(t)
	res := svc.GetVelocity(context.Background(), Position{Lon: -1, Lat: -1}, 0, 0)
	if !res.Found {
		t.Fatal("expected ocean cell to be found")
	}
	if res.U != 0.1 || res.V != 0 {
		t.Errorf("GetVelocity = %+v, want u=0.1 v=0", res)
	}
}

func TestGetVelocityLandCell(t *testing.T) {
	svc := newTestService(t)
	res := svc.GetVelocity(context.Background(), Position{Lon: 1, Lat: 1}, 0, 0)
	if res.Found {
		t.Error("expected land cell sentinel to produce found=false")
	}
	if res.U != 0 || res.V != 0 {
		t.Errorf("land miss should zero velocity, got %+v", res)
	}
}

func TestIsOcean(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if !svc.IsOcean(ctx, Position{Lon: -1, Lat: -1}, 0, 0) {
		t.Error("expected ocean")
	}
	if svc.IsOcean(ctx, Position{Lon: 1, Lat: 1}, 0, 0) {
		t.Error("expected land")
	}
}

func TestFindNearestOceanCell(t *testing.T) {
	svc := newTestService(t)
	cell, ok := svc.FindNearestOceanCell(context.Background(), Position{Lon: 1, Lat: 1}, 0, 0, 5)
	if !ok {
		t.Fatal("expected to find a nearby ocean cell")
	}
	if cell.Lon == 1 && cell.Lat == 1 {
		t.Error("nearest ocean cell should not be the land cell itself")
	}
}

func TestAvailableDepthsFromMetadata(t *testing.T) {
	svc := newTestService(t)
	got := svc.AvailableDepths()
	want := []float64{0, 50, 100}
	if len(got) != len(want) {
		t.Fatalf("AvailableDepths() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AvailableDepths()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestGetVelocitiesBatchOrderPreserved(t *testing.T) {
	svc := newTestService(t)
	positions := []Position{{Lon: -1, Lat: -1}, {Lon: 1, Lat: 1}, {Lon: 0, Lat: 0}}
	results := svc.GetVelocitiesBatch(context.Background(), positions, 0, 0)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if !results[0].Found || results[1].Found || !results[2].Found {
		t.Errorf("batch found flags = [%v %v %v], want [true false true]", results[0].Found, results[1].Found, results[2].Found)
	}
}
