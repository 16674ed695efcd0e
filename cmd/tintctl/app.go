package main

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"tintcore/internal/blockprops"
	"tintcore/internal/colormap"
	"tintcore/internal/config"
	"tintcore/internal/dimension"
	"tintcore/internal/item"
	"tintcore/internal/journal"
	"tintcore/internal/lightmap"
	"tintcore/internal/logging"
	"tintcore/internal/pack"
	"tintcore/internal/particle"
	"tintcore/internal/reload"
	"tintcore/internal/resource"
)

// app is everything one command needs, built from the loaded config.
type app struct {
	cfg      config.Config
	log      logging.Logger
	src      *resource.PackSource
	host     *host
	compound *reload.Compound
	journal  journal.Store
	registry *prometheus.Registry
}

// newApp opens packs and the journal and builds the category compound in
// producer to consumer order. A nil manifest runs without host targets.
func newApp(ctx context.Context, cfg config.Config, manifest *config.Manifest, stderr io.Writer) (*app, error) {
	log := logging.New(logging.Config{Level: logging.ParseLevel(cfg.Log.Level), JSON: cfg.Log.JSON, Writer: stderr})
	stores, err := pack.OpenAll(ctx, cfg.Packs)
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		manifest = &config.Manifest{}
	}
	j, err := journal.Open(ctx, cfg.Journal.Driver, cfg.Journal.DSN)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	h := newHost(*manifest)
	colormaps := colormap.NewManager(log)
	lightmaps := lightmap.NewManager(log)
	children := []reload.Child{
		reload.Stage[resource.Bundle](colormaps),
		reload.Stage[resource.Bundle](lightmaps),
		reload.Stage[blockprops.Resources](blockprops.NewManager(h.blocks, colormaps, log)),
		reload.Stage[resource.Bundle](dimension.NewManager(h.dimensions, colormaps, lightmaps, log)),
		reload.Stage[resource.Bundle](particle.NewManager(h.particles, colormaps, log)),
		reload.Stage[resource.Bundle](item.NewManager(h.items, colormaps, log)),
	}
	reg := prometheus.NewRegistry()
	c := reload.NewCompound(children,
		reload.WithLogger(log),
		reload.WithMetrics(reload.NewMetrics(reg)),
		reload.WithJournal(j),
	)
	return &app{
		cfg:      cfg,
		log:      log,
		src:      resource.NewPackSource(log, stores...),
		host:     h,
		compound: c,
		journal:  j,
		registry: reg,
	}, nil
}

func (a *app) Close() error { return a.journal.Close() }
