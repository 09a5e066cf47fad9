package dataset

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Dataset is the joined table handed to the matrix builder.
type Dataset struct {
	Rows  []MergedRow
	Stats LoadStats
}

// Load reads both tables from src concurrently and joins them.
func Load(ctx context.Context, src Source) (*Dataset, error) {
	var (
		movies  []Movie
		ratings []Rating
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		movies, err = src.LoadMovies(gctx)
		if err != nil {
			return fmt.Errorf("loading movies: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		ratings, err = src.LoadRatings(gctx)
		if err != nil {
			return fmt.Errorf("loading ratings: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var stats LoadStats
	if r, ok := src.(statsReporter); ok {
		stats.add(r.Stats())
	}
	rows := Merge(movies, ratings, &stats)

	slog.Default().With("component", "dataset-loader").Info("dataset loaded",
		"movies", stats.MoviesRead,
		"ratings", stats.RatingsRead,
		"merged_rows", stats.MergedRows,
		"movies_bad_id", stats.MoviesBadID,
		"movies_duplicate_id", stats.MoviesDuplicateID,
		"genre_parse_failures", stats.GenreParseFailures,
		"ratings_bad_id", stats.RatingsBadID,
		"ratings_bad_value", stats.RatingsBadValue,
		"ratings_unmatched", stats.RatingsUnmatched,
		"ratings_empty_title", stats.RatingsEmptyTitle,
	)
	return &Dataset{Rows: rows, Stats: stats}, nil
}
