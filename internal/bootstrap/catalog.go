// Package bootstrap turns configuration into a ready catalog. Both the
// server and the demo CLI start here.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ravindradesineni/Movie-recommendation/internal/dataset"
	"github.com/ravindradesineni/Movie-recommendation/internal/matrix"
	"github.com/ravindradesineni/Movie-recommendation/internal/recommender"
	"github.com/ravindradesineni/Movie-recommendation/pkg/config"
	"github.com/ravindradesineni/Movie-recommendation/pkg/metrics"
	"github.com/ravindradesineni/Movie-recommendation/pkg/postgres"
	"github.com/ravindradesineni/Movie-recommendation/pkg/resilience"
	"github.com/ravindradesineni/Movie-recommendation/pkg/tracing"
)

// Source returns the dataset source selected by cfg.Data.Source. db is
// required for the postgres source and ignored otherwise.
func Source(cfg *config.Config, db *postgres.Client) (dataset.Source, error) {
	switch cfg.Data.Source {
	case "csv":
		return dataset.NewCSVSource(cfg.Data.MoviesPath, cfg.Data.RatingsPath), nil
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres source selected but no connection")
		}
		return dataset.NewPostgresSource(db), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}
}

// Options maps recommender configuration onto catalog options.
func Options(cfg config.RecommenderConfig) (recommender.Options, error) {
	policy, err := matrix.ParseDuplicatePolicy(cfg.DuplicatePolicy)
	if err != nil {
		return recommender.Options{}, err
	}
	return recommender.Options{
		PeerCount:       cfg.PeerCount,
		DefaultTopN:     cfg.DefaultTopN,
		DuplicatePolicy: policy,
	}, nil
}

// LoadCatalog reads the dataset within cfg.Data.LoadTimeout and builds the
// catalog. Load statistics and catalog sizes are exported through m when it
// is not nil.
func LoadCatalog(ctx context.Context, cfg *config.Config, src dataset.Source, m *metrics.Metrics) (*recommender.Catalog, dataset.LoadStats, error) {
	log := slog.Default().With("component", "bootstrap")
	opts, err := Options(cfg.Recommender)
	if err != nil {
		return nil, dataset.LoadStats{}, err
	}

	ctx, root := tracing.StartSpan(ctx, "catalog.load", fmt.Sprintf("load-%d", time.Now().UnixNano()))
	root.SetAttr("source", cfg.Data.Source)
	defer func() {
		root.End()
		root.Log(log)
	}()

	var ds *dataset.Dataset
	_, loadSpan := tracing.StartSpan(ctx, "dataset.load", "")
	err = resilience.WithTimeout(ctx, cfg.Data.LoadTimeout, "dataset load", func(ctx context.Context) error {
		var err error
		ds, err = dataset.Load(ctx, src)
		return err
	})
	if err != nil {
		loadSpan.SetAttr("error", err.Error())
		loadSpan.End()
		return nil, dataset.LoadStats{}, fmt.Errorf("loading dataset: %w", err)
	}
	loadSpan.SetAttr("merged_rows", ds.Stats.MergedRows)
	loadSpan.End()

	_, buildSpan := tracing.StartSpan(ctx, "catalog.build", "")
	catalog := recommender.Build(ds.Rows, opts)
	buildSpan.SetAttr("fingerprint", catalog.Fingerprint())
	buildSpan.End()
	elapsed := buildSpan.Duration
	stats := catalog.Stats()
	log.Info("catalog built",
		"users", stats.Users,
		"rated_titles", stats.RatedTitles,
		"genre_titles", stats.GenreTitles,
		"vocabulary", stats.Vocabulary,
		"duplicate_policy", opts.DuplicatePolicy.String(),
		"fingerprint", catalog.Fingerprint(),
		"elapsed", elapsed,
	)

	if m != nil {
		m.CatalogBuildSeconds.Set(elapsed.Seconds())
		m.CatalogSize.WithLabelValues("users").Set(float64(stats.Users))
		m.CatalogSize.WithLabelValues("rated_titles").Set(float64(stats.RatedTitles))
		m.CatalogSize.WithLabelValues("genre_titles").Set(float64(stats.GenreTitles))
		m.CatalogSize.WithLabelValues("vocabulary").Set(float64(stats.Vocabulary))
		for reason, n := range ds.Stats.Dropped() {
			m.LoaderDroppedRows.WithLabelValues(reason).Add(float64(n))
		}
	}
	return catalog, ds.Stats, nil
}
