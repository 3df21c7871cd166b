// Package session holds the per-user dashboard state: the active dataset
// variant and the result cache that belongs to it. Every core operation runs
// through a Session so that cached results never outlive a variant switch.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"parceldash/internal/cache"
	"parceldash/internal/geo"
	"parceldash/internal/metrics"
	"parceldash/internal/normalize"
	"parceldash/internal/query"
	"parceldash/internal/schema"
	"parceldash/internal/source"
	"parceldash/internal/types"
)

// ErrSelectionRequired is returned by Predicted when neither an owner nor a
// property type was chosen.
var ErrSelectionRequired = &types.Error{
	Code:    "SELECTION_REQUIRED",
	Message: "Please select an owner or a property type",
}

// MapPolicy is the sampling applied before projecting to placemarks.
type MapPolicy struct {
	Fraction float64
	Seed     int64
}

// DefaultMapPolicy keeps one record in ten with a fixed seed.
var DefaultMapPolicy = MapPolicy{Fraction: 0.1, Seed: 10}

func (p MapPolicy) key() string {
	return strconv.FormatFloat(p.Fraction, 'g', -1, 64) + "/" + strconv.FormatInt(p.Seed, 10)
}

// Options are shared by every session a Manager creates.
type Options struct {
	Loader          source.Loader
	Logger          *slog.Logger
	Metrics         *metrics.Metrics
	CacheMaxEntries int
	// Zones, when set, tags placemarks with their zoning code.
	Zones *geo.ZoneIndex
}

// Session is safe for concurrent use, although a dashboard normally drives
// it from one request at a time.
type Session struct {
	ID      string
	Created time.Time

	opts   Options
	logger *slog.Logger
	cache  *cache.Cache

	mu      sync.Mutex
	variant types.Variant
}

// New returns a session starting on variant v.
func New(id string, v types.Variant, opts Options) (*Session, error) {
	if !v.Valid() {
		return nil, types.NewUnknownVariant(v.String())
	}
	if opts.Loader == nil {
		return nil, fmt.Errorf("session: loader is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		ID:      id,
		Created: time.Now(),
		opts:    opts,
		logger:  logger.With("session", id),
		cache:   cache.New(opts.CacheMaxEntries, opts.Metrics),
		variant: v,
	}, nil
}

// Variant returns the active dataset variant.
func (s *Session) Variant() types.Variant {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.variant
}

// Columns returns the resolved column names of the active variant.
func (s *Session) Columns() schema.Columns {
	cols, _ := schema.Resolve(s.Variant())
	return cols
}

// SwitchVariant makes v the active variant and drops every cached result.
// An unknown v leaves the session unchanged.
func (s *Session) SwitchVariant(v types.Variant) error {
	if !v.Valid() {
		return types.NewUnknownVariant(v.String())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.variant
	s.variant = v
	s.cache.Flush()
	s.logger.Info("dataset switched", "from", prev.String(), "to", v.String())
	return nil
}

// CacheLen reports how many results are cached.
func (s *Session) CacheLen() int {
	return s.cache.Len()
}

// records returns the normalized set for v, loading it on first use.
func (s *Session) records(ctx context.Context, v types.Variant) (*types.RecordSet, error) {
	return cache.Memo(s.cache, cache.Key{Variant: v, Op: "normalize"}, func() (*types.RecordSet, error) {
		raw, err := s.opts.Loader.Load(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("load %s dataset: %w", v, err)
		}
		n, err := normalize.New(v, s.logger)
		if err != nil {
			return nil, err
		}
		return n.Normalize(raw, v)
	})
}

func (s *Session) filter(ctx context.Context, v types.Variant, spec query.FilterSpec) (*types.RecordSet, error) {
	return cache.Memo(s.cache, cache.Key{Variant: v, Op: "filter", Params: spec.Key()}, func() (*types.RecordSet, error) {
		rs, err := s.records(ctx, v)
		if err != nil {
			return nil, err
		}
		cols, err := schema.Resolve(v)
		if err != nil {
			return nil, err
		}
		return query.Run(rs, cols, spec)
	})
}

// Records returns the whole normalized dataset of the active variant.
func (s *Session) Records(ctx context.Context) (*types.RecordSet, error) {
	return s.records(ctx, s.Variant())
}

// Filter runs spec against the active dataset.
func (s *Session) Filter(ctx context.Context, spec query.FilterSpec) (*types.RecordSet, error) {
	return s.filter(ctx, s.Variant(), spec)
}

// Map filters, samples with policy and returns the placemarks of the
// sample's valid points.
func (s *Session) Map(ctx context.Context, spec query.FilterSpec, policy MapPolicy) ([]geo.Placemark, error) {
	v := s.Variant()
	key := cache.Key{Variant: v, Op: "map", Params: spec.Key() + "|" + policy.key()}
	return cache.Memo(s.cache, key, func() ([]geo.Placemark, error) {
		rs, err := s.filter(ctx, v, spec)
		if err != nil {
			return nil, err
		}
		return geo.Placemarks(geo.Sample(rs, policy.Fraction, policy.Seed), s.opts.Zones), nil
	})
}

// Bounds is the slider range of field over the filtered dataset.
func (s *Session) Bounds(ctx context.Context, spec query.FilterSpec, f types.Field) (lo, hi int, err error) {
	v := s.Variant()
	key := cache.Key{Variant: v, Op: "bounds", Params: f.String() + "|" + spec.Key()}
	r, err := cache.Memo(s.cache, key, func() ([2]int, error) {
		rs, err := s.filter(ctx, v, spec)
		if err != nil {
			return [2]int{}, err
		}
		lo, hi := query.Bounds(rs, f)
		return [2]int{lo, hi}, nil
	})
	return r[0], r[1], err
}

// YearSpan is the earliest and latest year over the filtered dataset.
func (s *Session) YearSpan(ctx context.Context, spec query.FilterSpec) (lo, hi int, ok bool, err error) {
	rs, err := s.Filter(ctx, spec)
	if err != nil {
		return 0, 0, false, err
	}
	lo, hi, ok = query.YearSpan(rs)
	return lo, hi, ok, nil
}

// Options lists the distinct values of a typed field name (owner,
// locality, type) or of a passthrough column, for select boxes. The "All"
// sentinel comes first.
func (s *Session) Options(ctx context.Context, name string) ([]string, error) {
	v := s.Variant()
	return cache.Memo(s.cache, cache.Key{Variant: v, Op: "options", Params: name}, func() ([]string, error) {
		rs, err := s.records(ctx, v)
		if err != nil {
			return nil, err
		}
		var values []string
		if f, ok := types.ParseField(name); ok {
			values = query.Distinct(rs, f)
		} else if rs.HasColumn(name) {
			values = query.DistinctColumn(rs, name)
		} else {
			return nil, types.NewSchemaMismatch(name, v)
		}
		return append([]string{query.All}, values...), nil
	})
}

// Predicted answers the predicted-buyers view: the reduced dataset filtered
// by owner and property type code ("IND", "CORP" or "All"), whatever the
// active variant is.
func (s *Session) Predicted(ctx context.Context, owner, typeCode string) (*types.RecordSet, error) {
	if (owner == "" || owner == query.All) && (typeCode == "" || typeCode == query.All) {
		return nil, ErrSelectionRequired
	}
	spec := query.FilterSpec{}
	if owner != "" {
		spec = spec.Owner(query.Equals(owner))
	}
	if typeCode != "" && typeCode != query.All {
		spec = spec.Types(types.ParsePropertyType(typeCode))
	}
	return s.filter(ctx, types.VariantReduced, spec)
}
