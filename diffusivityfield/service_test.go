package diffusivityfield

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeCoordFile(t *testing.T, path string, nLat, nLon int, lon, lat []float32) {
	t.Helper()
	buf := new(bytes.Buffer)
	for _, f := range []int32{1, int32(nLat), int32(nLon)} {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			t.Fatal(err)
		}
	}
	binary.Write(buf, binary.LittleEndian, lon)
	binary.Write(buf, binary.LittleEndian, lat)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func writeDiffusivityDayFile(t *testing.T, path string, year, month, day int, k []float32) {
	t.Helper()
	buf := new(bytes.Buffer)
	for _, f := range []int32{1, int32(year), int32(month), int32(day)} {
		if err := binary.Write(buf, binary.LittleEndian, f); err != nil {
			t.Fatal(err)
		}
	}
	binary.Write(buf, binary.LittleEndian, k)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()

	lon := []float32{-1, 0, 1, -1, 0, 1, -1, 0, 1}
	lat := []float32{-1, -1, -1, 0, 0, 0, 1, 1, 1}
	writeCoordFile(t, filepath.Join(dir, "diffusivity_coords.bin"), 3, 3, lon, lat)

	if err := os.WriteFile(filepath.Join(dir, "diffusivity_meta.toml"), []byte("total_days = 1\ndates = [20240101]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	k := []float32{5000, 100, 10, 100, 100, 100, 100, 100, 100} // index 0 clamps high, index 2 clamps low
	writeDiffusivityDayFile(t, filepath.Join(dir, "diffusivity_20240101.bin"), 2024, 1, 1, k)

	svc := NewService(Config{DataDir: dir, BaseDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	if err := svc.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return svc
}

func TestGetDiffusivityClampsHigh(t *testing.T) {
	svc := newTestService(t)
	res := svc.GetDiffusivity(context.Background(), -1, -1, 0)
	if !res.Found {
		t.Fatal("expected found")
	}
	if res.K != MaxK {
		t.Errorf("K = %v, want clamped to %v", res.K, MaxK)
	}
}

func TestGetDiffusivityClampsLow(t *testing.T) {
	svc := newTestService(t)
	res := svc.GetDiffusivity(context.Background(), 1, -1, 0)
	if !res.Found {
		t.Fatal("expected found")
	}
	if res.K != MinK {
		t.Errorf("K = %v, want clamped to %v", res.K, MinK)
	}
}

func TestGetDiffusivityMissBeforeInit(t *testing.T) {
	svc := NewService(Config{DataDir: t.TempDir()})
	res := svc.GetDiffusivity(context.Background(), 0, 0, 0)
	if res.Found || res.K != MinK {
		t.Errorf("GetDiffusivity before Init = %+v, want {K:MinK Found:false}", res)
	}
}
