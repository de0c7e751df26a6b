// Package dataset loads the county topology and education datasets together.
package dataset

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/edumap/internal/fetcher"
	"github.com/sells-group/edumap/internal/metrics"
	"github.com/sells-group/edumap/internal/model"
	"github.com/sells-group/edumap/internal/topojson"
)

// Dataset names used in errors, logs and metrics.
const (
	TopologyDataset  = "topology"
	EducationDataset = "education"
)

// Failure kinds. Test with errors.Is.
var (
	ErrNetwork = eris.New("dataset: network failure")
	ErrParse   = eris.New("dataset: parse failure")
)

// LoadError describes the failure of one dataset.
type LoadError struct {
	Dataset string
	Source  string
	Kind    error
	Err     error
}

func (e *LoadError) Error() string {
	return "dataset: load " + e.Dataset + " from " + e.Source + ": " + e.Err.Error()
}

// Unwrap exposes both the failure kind and the underlying cause.
func (e *LoadError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Datasets is the combined result of a successful load.
type Datasets struct {
	Topology  *topojson.Topology
	Education []model.EducationRecord
}

// Options configures a Loader.
type Options struct {
	TopologyURL  string
	EducationURL string
	// Metrics is optional.
	Metrics *metrics.Metrics
}

// Loader fetches both datasets concurrently.
type Loader struct {
	fetcher fetcher.Fetcher
	opts    Options
}

// NewLoader creates a Loader reading through f.
func NewLoader(f fetcher.Fetcher, opts Options) *Loader {
	return &Loader{fetcher: f, opts: opts}
}

// Load fetches the topology and the education records in parallel and returns
// both, or the first failure. A failure cancels the other fetch.
func (l *Loader) Load(ctx context.Context) (*Datasets, error) {
	start := time.Now()
	var out Datasets

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		topo, err := l.loadTopology(gctx)
		if err != nil {
			return err
		}
		out.Topology = topo
		return nil
	})
	g.Go(func() error {
		records, err := l.loadEducation(gctx)
		if err != nil {
			return err
		}
		out.Education = records
		return nil
	})

	if err := g.Wait(); err != nil {
		zap.L().Error("dataset: load failed", zap.Error(err))
		return nil, err
	}

	zap.L().Info("dataset: loaded",
		zap.Int("topology_objects", len(out.Topology.Objects)),
		zap.Int("topology_arcs", len(out.Topology.Arcs)),
		zap.Int("education_records", len(out.Education)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return &out, nil
}

func (l *Loader) loadTopology(ctx context.Context) (topo *topojson.Topology, err error) {
	defer l.record(TopologyDataset, time.Now(), &err)

	body, err := l.fetcher.Download(ctx, l.opts.TopologyURL)
	if err != nil {
		return nil, &LoadError{Dataset: TopologyDataset, Source: l.opts.TopologyURL, Kind: ErrNetwork, Err: err}
	}
	defer body.Close() //nolint:errcheck

	topo, err = topojson.Decode(body)
	if err != nil {
		return nil, &LoadError{Dataset: TopologyDataset, Source: l.opts.TopologyURL, Kind: ErrParse, Err: err}
	}
	return topo, nil
}

func (l *Loader) loadEducation(ctx context.Context) (records []model.EducationRecord, err error) {
	defer l.record(EducationDataset, time.Now(), &err)

	body, err := l.fetcher.Download(ctx, l.opts.EducationURL)
	if err != nil {
		return nil, &LoadError{Dataset: EducationDataset, Source: l.opts.EducationURL, Kind: ErrNetwork, Err: err}
	}
	defer body.Close() //nolint:errcheck

	records, err = fetcher.DecodeJSONSlice[model.EducationRecord](ctx, body)
	if err != nil {
		return nil, &LoadError{Dataset: EducationDataset, Source: l.opts.EducationURL, Kind: ErrParse, Err: err}
	}
	return records, nil
}

func (l *Loader) record(dataset string, start time.Time, err *error) {
	if l.opts.Metrics == nil {
		return
	}
	l.opts.Metrics.RecordFetch(dataset, *err, time.Since(start))
}
