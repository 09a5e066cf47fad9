package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
)

// CSVSource reads the movie metadata and rating tables from CSV files with a
// header row. Columns are located by header name, so extra columns in the
// metadata export are ignored.
type CSVSource struct {
	MoviesPath  string
	RatingsPath string

	mu    sync.Mutex
	stats LoadStats
}

// NewCSVSource returns a source reading the two given files.
func NewCSVSource(moviesPath, ratingsPath string) *CSVSource {
	return &CSVSource{MoviesPath: moviesPath, RatingsPath: ratingsPath}
}

// Stats returns the counters collected by the last loads.
func (s *CSVSource) Stats() LoadStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *CSVSource) LoadMovies(ctx context.Context) ([]Movie, error) {
	f, err := os.Open(s.MoviesPath)
	if err != nil {
		return nil, fmt.Errorf("opening movies file: %w", err)
	}
	defer f.Close()

	movies, stats, err := ReadMovies(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.MoviesPath, err)
	}
	s.mu.Lock()
	s.stats.MoviesRead = stats.MoviesRead
	s.stats.MoviesBadID = stats.MoviesBadID
	s.stats.GenreParseFailures = stats.GenreParseFailures
	s.mu.Unlock()
	return movies, nil
}

func (s *CSVSource) LoadRatings(ctx context.Context) ([]Rating, error) {
	f, err := os.Open(s.RatingsPath)
	if err != nil {
		return nil, fmt.Errorf("opening ratings file: %w", err)
	}
	defer f.Close()

	ratings, stats, err := ReadRatings(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.RatingsPath, err)
	}
	s.mu.Lock()
	s.stats.RatingsRead = stats.RatingsRead
	s.stats.RatingsBadID = stats.RatingsBadID
	s.stats.RatingsBadValue = stats.RatingsBadValue
	s.mu.Unlock()
	return ratings, nil
}

// ReadMovies decodes a movie metadata table. Required columns are id and
// title; overview and genres are optional.
func ReadMovies(ctx context.Context, r io.Reader) ([]Movie, LoadStats, error) {
	var stats LoadStats
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("reading header: %w", err)
	}
	cols, err := columnIndex(header, []string{"id", "title"}, []string{"overview", "genres"})
	if err != nil {
		return nil, stats, err
	}

	var movies []Movie
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				stats.MoviesRead++
				stats.MoviesBadID++
				continue
			}
			return nil, stats, err
		}
		stats.MoviesRead++
		if stats.MoviesRead%4096 == 0 && ctx.Err() != nil {
			return nil, stats, ctx.Err()
		}

		id, ok := parseMovieID(field(rec, cols["id"]))
		if !ok {
			stats.MoviesBadID++
			continue
		}
		genres, gerr := ParseGenres(field(rec, cols["genres"]))
		if gerr != nil {
			stats.GenreParseFailures++
			genres = nil
		}
		movies = append(movies, Movie{
			ID:       id,
			Title:    strings.TrimSpace(field(rec, cols["title"])),
			Overview: field(rec, cols["overview"]),
			Genres:   genres,
		})
	}
	return movies, stats, nil
}

// ReadRatings decodes a ratings table with userId, movieId and rating
// columns.
func ReadRatings(ctx context.Context, r io.Reader) ([]Rating, LoadStats, error) {
	var stats LoadStats
	cr := newReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, stats, fmt.Errorf("reading header: %w", err)
	}
	cols, err := columnIndex(header, []string{"userid", "movieid", "rating"}, nil)
	if err != nil {
		return nil, stats, err
	}

	var ratings []Rating
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				stats.RatingsRead++
				stats.RatingsBadID++
				continue
			}
			return nil, stats, err
		}
		stats.RatingsRead++
		if stats.RatingsRead%65536 == 0 && ctx.Err() != nil {
			return nil, stats, ctx.Err()
		}

		userID, okU := parseID(field(rec, cols["userid"]))
		movieID, okM := parseID(field(rec, cols["movieid"]))
		if !okU || !okM {
			stats.RatingsBadID++
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(field(rec, cols["rating"])), 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
			stats.RatingsBadValue++
			continue
		}
		ratings = append(ratings, Rating{UserID: userID, MovieID: movieID, Rating: value})
	}
	return ratings, stats, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return cr
}

// columnIndex maps lower-cased header names to positions. Optional columns
// that are absent map to -1.
func columnIndex(header []string, required, optional []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, seen := pos[h]; !seen {
			pos[h] = i
		}
	}
	cols := make(map[string]int, len(required)+len(optional))
	for _, name := range required {
		i, ok := pos[name]
		if !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
		cols[name] = i
	}
	for _, name := range optional {
		if i, ok := pos[name]; ok {
			cols[name] = i
		} else {
			cols[name] = -1
		}
	}
	return cols, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}
