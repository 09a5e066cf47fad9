package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/lib/pq"

	"github.com/ravindradesineni/Movie-recommendation/pkg/postgres"
	"github.com/ravindradesineni/Movie-recommendation/pkg/resilience"
)

// PostgresSource reads the two tables from PostgreSQL. It expects:
//
//	CREATE TABLE movies (
//	    id       TEXT NOT NULL,
//	    title    TEXT,
//	    overview TEXT,
//	    genres   TEXT
//	);
//	CREATE TABLE ratings (
//	    user_id  TEXT NOT NULL,
//	    movie_id TEXT NOT NULL,
//	    rating   TEXT NOT NULL
//	);
//
// Numeric column types work as well; every value is scanned as text and
// coerced with the same rules as the CSV source.
type PostgresSource struct {
	db    *postgres.Client
	retry resilience.RetryConfig

	mu    sync.Mutex
	stats LoadStats
}

// NewPostgresSource returns a source backed by db. Queries are retried with
// the default backoff.
func NewPostgresSource(db *postgres.Client) *PostgresSource {
	return &PostgresSource{db: db}
}

func (s *PostgresSource) Stats() LoadStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *PostgresSource) LoadMovies(ctx context.Context) ([]Movie, error) {
	var (
		movies []Movie
		stats  LoadStats
	)
	err := resilience.Retry(ctx, "load movies", s.retry, func() error {
		movies, stats = nil, LoadStats{}
		rows, err := s.db.DB.QueryContext(ctx,
			`SELECT id::text, COALESCE(title, ''), COALESCE(overview, ''), COALESCE(genres, '') FROM movies`)
		if err != nil {
			return classify(fmt.Errorf("querying movies: %w", err))
		}
		defer rows.Close()
		for rows.Next() {
			var rawID, title, overview, rawGenres string
			if err := rows.Scan(&rawID, &title, &overview, &rawGenres); err != nil {
				return fmt.Errorf("scanning movie row: %w", err)
			}
			stats.MoviesRead++
			id, ok := parseMovieID(rawID)
			if !ok {
				stats.MoviesBadID++
				continue
			}
			genres, gerr := ParseGenres(rawGenres)
			if gerr != nil {
				stats.GenreParseFailures++
				genres = nil
			}
			movies = append(movies, Movie{ID: id, Title: strings.TrimSpace(title), Overview: overview, Genres: genres})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.stats.MoviesRead = stats.MoviesRead
	s.stats.MoviesBadID = stats.MoviesBadID
	s.stats.GenreParseFailures = stats.GenreParseFailures
	s.mu.Unlock()
	return movies, nil
}

func (s *PostgresSource) LoadRatings(ctx context.Context) ([]Rating, error) {
	var (
		ratings []Rating
		stats   LoadStats
	)
	err := resilience.Retry(ctx, "load ratings", s.retry, func() error {
		ratings, stats = nil, LoadStats{}
		rows, err := s.db.DB.QueryContext(ctx,
			`SELECT user_id::text, movie_id::text, rating::text FROM ratings`)
		if err != nil {
			return classify(fmt.Errorf("querying ratings: %w", err))
		}
		defer rows.Close()
		for rows.Next() {
			var rawUser, rawMovie sql.NullString
			var rawRating sql.NullString
			if err := rows.Scan(&rawUser, &rawMovie, &rawRating); err != nil {
				return fmt.Errorf("scanning rating row: %w", err)
			}
			stats.RatingsRead++
			userID, okU := parseID(rawUser.String)
			movieID, okM := parseID(rawMovie.String)
			if !rawUser.Valid || !rawMovie.Valid || !okU || !okM {
				stats.RatingsBadID++
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(rawRating.String), 64)
			if !rawRating.Valid || err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
				stats.RatingsBadValue++
				continue
			}
			ratings = append(ratings, Rating{UserID: userID, MovieID: movieID, Rating: value})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.stats.RatingsRead = stats.RatingsRead
	s.stats.RatingsBadID = stats.RatingsBadID
	s.stats.RatingsBadValue = stats.RatingsBadValue
	s.mu.Unlock()
	return ratings, nil
}

// classify marks schema errors as permanent so they fail fast instead of
// being retried like a dropped connection.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "42P01", "42703": // undefined_table, undefined_column
			return resilience.Permanent(err)
		}
	}
	return err
}
