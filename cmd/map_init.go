package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/edumap/internal/colorscale"
	"github.com/sells-group/edumap/internal/dataset"
	"github.com/sells-group/edumap/internal/fetcher"
	"github.com/sells-group/edumap/internal/interact"
	"github.com/sells-group/edumap/internal/join"
	"github.com/sells-group/edumap/internal/metrics"
	"github.com/sells-group/edumap/internal/render"
)

// mapEnv holds the loaded datasets and everything built from them once, shared
// by the render and serve commands.
type mapEnv struct {
	Datasets *dataset.Datasets
	Index    *join.Index
	Scale    *colorscale.Scale
	Scene    *render.Scene
}

// initMap loads both datasets and builds the index, the color scale and the
// scene. m may be nil.
func initMap(ctx context.Context, m *metrics.Metrics) (*mapEnv, error) {
	policy, err := join.ParsePolicy(cfg.Join.Duplicates)
	if err != nil {
		return nil, err
	}

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      cfg.Fetch.Timeout,
		MaxAttempts:  cfg.Fetch.MaxAttempts,
		RateLimiters: fetcher.DefaultRateLimiters(),
	})
	loader := dataset.NewLoader(f, dataset.Options{
		TopologyURL:  cfg.Data.TopologyURL,
		EducationURL: cfg.Data.EducationURL,
		Metrics:      m,
	})
	ds, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	idx := join.Build(ds.Education, policy)
	if n := idx.Duplicates(); n > 0 {
		zap.L().Warn("duplicate fips codes in education data",
			zap.Int("duplicates", n),
			zap.String("policy", string(policy)),
		)
	}
	scale := colorscale.New(idx.Values(), colorscale.Blues)

	opts := render.OptionsFromConfig(cfg)
	opts.Metrics = m
	scene, err := render.Build(ds.Topology, idx, scale, opts)
	if err != nil {
		return nil, err
	}

	lo, hi := scale.Domain()
	zap.L().Info("map ready",
		zap.Int("counties", len(scene.Counties)),
		zap.Int("matched", scene.Matched),
		zap.Int("unmatched", scene.Unmatched),
		zap.Float64("domain_min", lo),
		zap.Float64("domain_max", hi),
	)

	return &mapEnv{Datasets: ds, Index: idx, Scale: scale, Scene: scene}, nil
}

// pageOptions returns the page configuration for the interactive HTML output.
func pageOptions() render.PageOptions {
	return render.PageOptions{Tooltip: interact.OptionsFromConfig(cfg)}
}
