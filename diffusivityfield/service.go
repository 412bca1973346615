package diffusivityfield

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oceantracer/driftmap/internal/dayfetch"
	"github.com/oceantracer/driftmap/internal/daycache"
	"github.com/oceantracer/driftmap/internal/xerrors"
)

// DefaultMaxDaysInMemory matches currentfield's default bounded cache size.
const DefaultMaxDaysInMemory = 2

// Config configures a diffusivity-field Service.
type Config struct {
	// DataDir is a directory or blob-bucket prefix holding
	// "diffusivity_coords.bin", "diffusivity_meta.toml", and one day file
	// per resident day.
	DataDir         string
	BaseDate        time.Time
	MaxDaysInMemory int
	Log             *logrus.Entry
}

// Service is the diffusivity field service of spec.md §4.4.
type Service struct {
	dataDir  string
	baseDate time.Time
	log      *logrus.Entry

	coords *Coords
	index  *bucketIndex
	cache  *daycache.Cache
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
	log = log.WithField("component", "diffusivityfield")
	s := &Service{dataDir: cfg.DataDir, baseDate: cfg.BaseDate, log: log}
	s.cache = daycache.New(maxDays, s.loadDayByKey)
	return s
}

func (s *Service) joinPath(name string) string {
	return strings.TrimRight(s.dataDir, "/") + "/" + name
}

// Init loads the shared coordinate file once and builds the bucket index,
// then loads the metadata document listing available days.
func (s *Service) Init(ctx context.Context) error {
	raw, err := dayfetch.Fetch(ctx, s.joinPath("diffusivity_coords.bin"))
	if err != nil {
		return err
	}
	coords, err := parseCoordFile(raw)
	if err != nil {
		return err
	}
	s.coords = coords
	s.index = buildBucketIndex(coords)

	if _, err := loadMetadata(ctx, s.joinPath("diffusivity_meta.toml")); err != nil {
		return err
	}
	s.log.WithField("cells", len(coords.Lon)).Info("loaded diffusivity coordinates")
	return nil
}

func (s *Service) fileName(year, month, day int) string {
	return fmt.Sprintf("diffusivity_%04d%02d%02d.bin", year, month, day)
}

// LoadDay loads the given calendar day idempotently, sharing an in-flight
// load across concurrent callers for the same day.
func (s *Service) LoadDay(ctx context.Context, year, month, day int) error {
	_, err := s.cache.Get(ctx, dateKey(year, month, day))
	return err
}

func (s *Service) loadDayByKey(ctx context.Context, key string) (interface{}, error) {
	var year, month, day int
	if _, err := fmt.Sscanf(key, "%d-%d-%d", &year, &month, &day); err != nil {
		return nil, fmt.Errorf("%w: malformed day cache key %q", xerrors.FormatError, key)
	}
	raw, err := dayfetch.Fetch(ctx, s.joinPath(s.fileName(year, month, day)))
	if err != nil {
		s.log.WithError(err).WithField("day", key).Warn("diffusivity day fetch failed")
		return nil, err
	}
	d, err := parseDayFile(raw, len(s.coords.Lon))
	if err != nil {
		s.log.WithError(err).WithField("day", key).Error("diffusivity day format error")
		return nil, err
	}
	s.log.WithField("day", key).Info("loaded diffusivity day")
	return d, nil
}

// GetDiffusivity returns the clamped eddy diffusivity nearest (lon, lat)
// on the calendar day sim_day resolves to. On any miss it returns K=MinK,
// found=false.
func (s *Service) GetDiffusivity(ctx context.Context, lon, lat, simDay float64) Result {
	if s.coords == nil {
		return Result{K: MinK, Found: false}
	}
	year, month, day := resolveSimDay(s.baseDate, simDay)
	v, err := s.cache.Get(ctx, dateKey(year, month, day))
	if err != nil {
		return Result{K: MinK, Found: false}
	}
	d := v.(*Day)
	idx, ok := s.index.nearest(s.coords, lon, lat)
	if !ok || idx >= len(d.K) {
		return Result{K: MinK, Found: false}
	}
	k := float64(d.K[idx])
	return Result{K: clampK(k), Found: true}
}
