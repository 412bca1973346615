package currentfield

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oceantracer/driftmap/internal/dayfetch"
	"github.com/oceantracer/driftmap/internal/daycache"
	"github.com/oceantracer/driftmap/internal/xerrors"
)

// DefaultMaxDaysInMemory is the default bounded LRU cache size of
// spec.md §3 ("max_days_in_memory, default 2").
const DefaultMaxDaysInMemory = 2

// DefaultMaxSearchRadiusCells is the default spiral-search bound used by
// FindNearestOceanCell when the caller passes <= 0.
const DefaultMaxSearchRadiusCells = 10

// Config configures a current-field Service.
type Config struct {
	// DataDir is a directory or blob-bucket prefix (gs://, s3://, file://,
	// or a plain local path) holding one file per day plus a metadata
	// document named "velocity_meta.toml".
	DataDir string

	// BaseDate is the calendar date that simulation day 0 corresponds to.
	BaseDate time.Time

	// MaxDaysInMemory bounds the resident day cache. <= 0 uses the
	// default of 2.
	MaxDaysInMemory int

	Log *logrus.Entry
}

// Service is the current field service of spec.md §4.3.
type Service struct {
	dataDir  string
	baseDate time.Time
	log      *logrus.Entry

	meta  *Metadata
	cache *daycache.Cache

	mu        sync.Mutex
	tree      *kdTree
	activeKey string
}

// NewService creates a Service. Init must be called before use.
func NewService(cfg Config) *Service {
	maxDays := cfg.MaxDaysInMemory
	if maxDays <= 0 {
		maxDays = DefaultMaxDaysInMemory
	}
	log := cfg.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("component", "currentfield")
	s := &Service{dataDir: cfg.DataDir, baseDate: cfg.BaseDate, log: log}
	s.cache = daycache.New(maxDays, s.loadDayByKey)
	return s
}

// Init loads the metadata document (the list of available days and
// discrete depth levels). It does not preload any day.
func (s *Service) Init(ctx context.Context) error {
	meta, err := loadMetadata(ctx, s.joinPath("velocity_meta.toml"))
	if err != nil {
		return err
	}
	s.meta = meta
	s.log.WithField("days", len(meta.Days)).Info("loaded velocity metadata")
	return nil
}

// AvailableDepths returns the ordered list of discrete depth levels.
func (s *Service) AvailableDepths() []float64 {
	if s.meta == nil {
		return append([]float64(nil), defaultDepths...)
	}
	return s.meta.Depths
}

func (s *Service) joinPath(name string) string {
	dir := strings.TrimRight(s.dataDir, "/")
	return dir + "/" + name
}

func (s *Service) fileName(dm DayMeta) string {
	return fmt.Sprintf("velocity_%04d%02d%02d.bin", dm.Year, dm.Month, dm.Day)
}

// LoadDay loads the given calendar day idempotently: concurrent duplicate
// calls for the same day share one in-flight load, and after success the
// day becomes the active, pinned day.
func (s *Service) LoadDay(ctx context.Context, year, month, day int) error {
	key := dateKey(year, month, day)
	v, err := s.cache.Get(ctx, key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.activeKey = key
	if s.tree == nil {
		d := v.(*Day)
		s.tree = buildKDTree(d.NLat, d.NLon, d.Lon, d.Lat)
	}
	s.mu.Unlock()
	return nil
}

func (s *Service) loadDayByKey(ctx context.Context, key string) (interface{}, error) {
	parts := strings.Split(key, "-")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: malformed day cache key %q", xerrors.FormatError, key)
	}
	dm := DayMeta{}
	fmt.Sscanf(parts[0], "%d", &dm.Year)
	fmt.Sscanf(parts[1], "%d", &dm.Month)
	fmt.Sscanf(parts[2], "%d", &dm.Day)

	raw, err := dayfetch.Fetch(ctx, s.joinPath(s.fileName(dm)))
	if err != nil {
		s.log.WithError(err).WithField("day", key).Warn("velocity day fetch failed")
		return nil, err
	}
	d, err := parseDayFile(raw)
	if err != nil {
		s.log.WithError(err).WithField("day", key).Error("velocity day format error")
		return nil, err
	}
	s.log.WithField("day", key).Info("loaded velocity day")
	return d, nil
}

// dayForSimDay resolves a simulation day offset to a resident Day,
// loading it if necessary.
func (s *Service) dayForSimDay(ctx context.Context, simDay float64) (*Day, error) {
	if s.meta == nil {
		return nil, fmt.Errorf("%w: currentfield.Service.Init was not called", xerrors.FormatError)
	}
	dm, _ := s.meta.resolveSimDay(s.baseDate, simDay)
	if err := s.LoadDay(ctx, dm.Year, dm.Month, dm.Day); err != nil {
		return nil, err
	}
	v, err := s.cache.Get(ctx, dateKey(dm.Year, dm.Month, dm.Day))
	if err != nil {
		return nil, err
	}
	return v.(*Day), nil
}

// nearestDepthIndex snaps depthM to the closest entry of AvailableDepths.
func (s *Service) nearestDepthIndex(depthM float64) (int, float64) {
	depths := s.AvailableDepths()
	best, bestDiff := 0, math.MaxFloat64
	for i, d := range depths {
		diff := math.Abs(d - depthM)
		if diff < bestDiff {
			best, bestDiff = i, diff
		}
	}
	if len(depths) == 0 {
		return 0, depthM
	}
	return best, depths[best]
}

// GetVelocity resolves sim_day to a calendar date, snaps depth_m to the
// nearest discrete depth level, and returns the interpolated-free nearest
// cell velocity at that depth, or found=false on any miss.
func (s *Service) GetVelocity(ctx context.Context, pos Position, depthM, simDay float64) Result {
	d, err := s.dayForSimDay(ctx, simDay)
	if err != nil {
		return Result{Found: false}
	}
	depthIdx, actualDepth := s.nearestDepthIndex(depthM)

	s.mu.Lock()
	tree := s.tree
	s.mu.Unlock()
	cell, ok := tree.nearest(pos.Lon, pos.Lat)
	if !ok {
		return Result{Found: false}
	}
	u, v, found := d.cellVelocity(depthIdx, cell.Index)
	if !found {
		return Result{Found: false}
	}
	return Result{U: float64(u), V: float64(v), Found: true, ActualDepth: actualDepth}
}

// GetVelocitiesBatch evaluates GetVelocity for every position, sharing the
// day load and depth-index resolution across the batch.
func (s *Service) GetVelocitiesBatch(ctx context.Context, positions []Position, depthM, simDay float64) []Result {
	d, err := s.dayForSimDay(ctx, simDay)
	if err != nil {
		out := make([]Result, len(positions))
		return out
	}
	depthIdx, actualDepth := s.nearestDepthIndex(depthM)
	s.mu.Lock()
	tree := s.tree
	s.mu.Unlock()

	out := make([]Result, len(positions))
	for i, pos := range positions {
		cell, ok := tree.nearest(pos.Lon, pos.Lat)
		if !ok {
			continue
		}
		u, v, found := d.cellVelocity(depthIdx, cell.Index)
		if !found {
			continue
		}
		out[i] = Result{U: float64(u), V: float64(v), Found: true, ActualDepth: actualDepth}
	}
	return out
}

// IsOcean is shorthand for GetVelocity(...).Found.
func (s *Service) IsOcean(ctx context.Context, pos Position, depthM, simDay float64) bool {
	return s.GetVelocity(ctx, pos, depthM, simDay).Found
}

// FindNearestOceanCell spirals outward from the KD-tree nearest cell,
// checking the land sentinel at each ring, up to maxRadiusCells rings.
func (s *Service) FindNearestOceanCell(ctx context.Context, pos Position, depthM, simDay float64, maxRadiusCells int) (OceanCell, bool) {
	if maxRadiusCells <= 0 {
		maxRadiusCells = DefaultMaxSearchRadiusCells
	}
	d, err := s.dayForSimDay(ctx, simDay)
	if err != nil {
		return OceanCell{}, false
	}
	depthIdx, actualDepth := s.nearestDepthIndex(depthM)

	s.mu.Lock()
	tree := s.tree
	s.mu.Unlock()
	origin, ok := tree.nearest(pos.Lon, pos.Lat)
	if !ok {
		return OceanCell{}, false
	}

	for radius := 0; radius <= maxRadiusCells; radius++ {
		for _, cand := range ringCells(origin.I, origin.J, radius, d.NLat, d.NLon) {
			idx := cand.i*d.NLon + cand.j
			if idx < 0 || idx >= len(d.Lon) {
				continue
			}
			if _, _, found := d.cellVelocity(depthIdx, idx); found {
				return OceanCell{
					Lon: float64(d.Lon[idx]), Lat: float64(d.Lat[idx]),
					I: cand.i, J: cand.j, ActualDepth: actualDepth,
				}, true
			}
		}
	}
	return OceanCell{}, false
}

type gridIdx struct{ i, j int }

// ringCells returns the grid cells forming the square ring at the given
// Chebyshev radius around (i0, j0), clipped to the grid bounds. radius=0
// returns the origin cell itself.
func ringCells(i0, j0, radius, nLat, nLon int) []gridIdx {
	if radius == 0 {
		return []gridIdx{{i0, j0}}
	}
	var out []gridIdx
	add := func(i, j int) {
		if i >= 0 && i < nLat && j >= 0 && j < nLon {
			out = append(out, gridIdx{i, j})
		}
	}
	for j := j0 - radius; j <= j0+radius; j++ {
		add(i0-radius, j)
		add(i0+radius, j)
	}
	for i := i0 - radius + 1; i <= i0+radius-1; i++ {
		add(i, j0-radius)
		add(i, j0+radius)
	}
	return out
}
