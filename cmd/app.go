package main

import (
	"context"
	"fmt"
	"log/slog"

	"parceldash/internal/config"
	"parceldash/internal/database"
	"parceldash/internal/geo"
	"parceldash/internal/logger"
	"parceldash/internal/metrics"
	"parceldash/internal/schema"
	"parceldash/internal/session"
	"parceldash/internal/source"
	"parceldash/internal/types"
)

// app is the wiring shared by every command.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	loader  source.Loader
	zones   *geo.ZoneIndex
	closers []func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	l, err := logger.Setup(cfg.Log)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: l}

	if cfg.Observability.EnableMetrics {
		if a.metrics, err = metrics.New(); err != nil {
			return nil, err
		}
	}

	if a.loader, err = a.newLoader(ctx); err != nil {
		a.close()
		return nil, err
	}

	if len(cfg.Map.ZoningFiles) > 0 {
		zones, err := geo.LoadZoning(cfg.Map.ZoningFiles...)
		if err != nil {
			// the map still works without zoning codes
			l.Warn("zoning unavailable", "error", err)
		} else {
			if cfg.Map.StatePlane {
				zones.Projection = geo.TexasNorthCentral
			}
			a.zones = zones
			l.Info("zoning loaded", "polygons", zones.Len(), "files", len(cfg.Map.ZoningFiles))
		}
	}
	return a, nil
}

func (a *app) newLoader(ctx context.Context) (source.Loader, error) {
	switch a.cfg.Data.Source {
	case "database":
		c := a.cfg.Database
		db, err := database.Open(ctx, database.Config{
			Driver:         c.Driver,
			Host:           c.Host,
			Port:           c.Port,
			Service:        c.Service,
			Username:       c.Username,
			Password:       c.Password,
			WalletLocation: c.WalletLocation,
			SSLMode:        c.SSLMode,
			Path:           c.Path,
			Tables:         c.Tables,
		}, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	default:
		files := source.NewFiles(a.cfg.Data.Dir, a.logger)
		files.Sheet = a.cfg.Data.Sheet
		for name, path := range a.cfg.Data.Files {
			v, err := schema.Parse(name)
			if err != nil {
				return nil, fmt.Errorf("data.files: %w", err)
			}
			files.Paths[v] = path
		}
		return files, nil
	}
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn("close failed", "error", err)
		}
	}
}

func (a *app) sessionOptions(loader source.Loader) session.Options {
	return session.Options{
		Loader:          loader,
		Logger:          a.logger,
		Metrics:         a.metrics,
		CacheMaxEntries: a.cfg.Session.CacheMaxEntries,
		Zones:           a.zones,
	}
}

func (a *app) mapPolicy() session.MapPolicy {
	return session.MapPolicy{Fraction: a.cfg.Map.SampleFraction, Seed: a.cfg.Map.SampleSeed}
}

func (a *app) defaultVariant() types.Variant {
	v, _ := schema.Parse(a.cfg.Session.DefaultVariant)
	return v
}

// cliSession opens a single session for the terminal commands. variant
// overrides the configured default when set.
func (a *app) cliSession(variant string) (*session.Session, error) {
	v := a.defaultVariant()
	if variant != "" {
		parsed, err := schema.Parse(variant)
		if err != nil {
			return nil, err
		}
		v = parsed
	}
	return session.New("cli", v, a.sessionOptions(a.loader))
}
