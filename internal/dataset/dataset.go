// Package dataset loads the movie metadata and rating tables, coerces their
// identifier columns to integers and joins them into one denormalised table
// keyed by movie id.
//
// Malformed rows are dropped rather than reported as errors. Every drop is
// counted in LoadStats so it can be logged and exported as a metric.
package dataset

import (
	"context"
	"strconv"
	"strings"
)

// Movie is one row of the movie metadata table.
type Movie struct {
	ID       int
	Title    string
	Overview string
	Genres   []string
}

// Rating is one row of the ratings table.
type Rating struct {
	UserID  int
	MovieID int
	Rating  float64
}

// MergedRow is a rating joined with the movie it refers to.
type MergedRow struct {
	UserID  int
	MovieID int
	Title   string
	Genres  []string
	Rating  float64
}

// Source provides the two input tables.
type Source interface {
	LoadMovies(ctx context.Context) ([]Movie, error)
	LoadRatings(ctx context.Context) ([]Rating, error)
}

// statsReporter is implemented by sources that count rows they dropped while
// reading.
type statsReporter interface {
	Stats() LoadStats
}

// LoadStats counts input rows and the rows silently dropped at each stage.
type LoadStats struct {
	MoviesRead         int `json:"movies_read"`
	MoviesBadID        int `json:"movies_bad_id"`
	MoviesDuplicateID  int `json:"movies_duplicate_id"`
	GenreParseFailures int `json:"genre_parse_failures"`
	RatingsRead        int `json:"ratings_read"`
	RatingsBadID       int `json:"ratings_bad_id"`
	RatingsBadValue    int `json:"ratings_bad_value"`
	RatingsUnmatched   int `json:"ratings_unmatched"`
	RatingsEmptyTitle  int `json:"ratings_empty_title"`
	MergedRows         int `json:"merged_rows"`
}

// Dropped returns drop counts keyed by reason, for metric labels.
func (s LoadStats) Dropped() map[string]int {
	return map[string]int{
		"movie_bad_id":        s.MoviesBadID,
		"movie_duplicate_id":  s.MoviesDuplicateID,
		"rating_bad_id":       s.RatingsBadID,
		"rating_bad_value":    s.RatingsBadValue,
		"rating_unmatched":    s.RatingsUnmatched,
		"rating_empty_title":  s.RatingsEmptyTitle,
		"genre_parse_failure": s.GenreParseFailures,
	}
}

func (s *LoadStats) add(o LoadStats) {
	s.MoviesRead += o.MoviesRead
	s.MoviesBadID += o.MoviesBadID
	s.MoviesDuplicateID += o.MoviesDuplicateID
	s.GenreParseFailures += o.GenreParseFailures
	s.RatingsRead += o.RatingsRead
	s.RatingsBadID += o.RatingsBadID
	s.RatingsBadValue += o.RatingsBadValue
	s.RatingsUnmatched += o.RatingsUnmatched
	s.RatingsEmptyTitle += o.RatingsEmptyTitle
	s.MergedRows += o.MergedRows
}

// parseMovieID accepts only a plain run of ASCII digits. The metadata table
// carries a handful of rows whose id column holds a date or a path instead.
func parseMovieID(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] < '0' || raw[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

func parseID(raw string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false
	}
	return id, true
}
