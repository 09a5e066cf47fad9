// Package recommender answers recommendation queries against an immutable
// in-memory catalog.
//
// A Catalog holds the rating matrix, the genre feature matrix and three
// precomputed cosine similarity matrices: title-title over ratings,
// title-title over genres and user-user over ratings. It is built once and
// never mutated, so any number of goroutines may query it.
package recommender

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"slices"

	"github.com/ravindradesineni/Movie-recommendation/internal/dataset"
	"github.com/ravindradesineni/Movie-recommendation/internal/matrix"
	"github.com/ravindradesineni/Movie-recommendation/internal/similarity"
)

const (
	DefaultTopN      = 5
	DefaultPeerCount = 5
)

// Options tune catalog construction and query defaults. Zero values select
// the defaults.
type Options struct {
	// PeerCount is the number of most similar users consulted by ForUser.
	PeerCount int
	// DefaultTopN is used when a query asks for n <= 0 results.
	DefaultTopN int
	// DuplicatePolicy resolves repeated (user, title) ratings.
	DuplicatePolicy matrix.DuplicatePolicy
}

func (o Options) withDefaults() Options {
	if o.PeerCount <= 0 {
		o.PeerCount = DefaultPeerCount
	}
	if o.DefaultTopN <= 0 {
		o.DefaultTopN = DefaultTopN
	}
	return o
}

// Recommendation is one ranked title.
type Recommendation struct {
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// Stats describes catalog dimensions.
type Stats struct {
	Users       int `json:"users"`
	RatedTitles int `json:"rated_titles"`
	GenreTitles int `json:"genre_titles"`
	Vocabulary  int `json:"vocabulary"`
}

type Catalog struct {
	opts Options

	ratings  *matrix.RatingMatrix
	features *matrix.FeatureMatrix

	titleSim *similarity.Matrix
	genreSim *similarity.Matrix
	userSim  *similarity.Matrix

	titles      []string
	fingerprint string
}

// Build constructs both matrices from merged rows and precomputes every
// similarity matrix.
func Build(rows []dataset.MergedRow, opts Options) *Catalog {
	return NewCatalog(
		matrix.BuildRatingMatrix(rows, opts.DuplicatePolicy),
		matrix.BuildFeatureMatrix(rows),
		opts,
	)
}

// NewCatalog precomputes similarities over prebuilt matrices. The matrices
// must not be modified afterwards.
func NewCatalog(ratings *matrix.RatingMatrix, features *matrix.FeatureMatrix, opts Options) *Catalog {
	c := &Catalog{
		opts:     opts.withDefaults(),
		ratings:  ratings,
		features: features,
		titleSim: similarity.Columns(ratings.Values),
		genreSim: similarity.Rows(features.Counts),
		userSim:  similarity.Rows(ratings.Values),
	}

	seen := make(map[string]struct{}, ratings.Titles.Len()+features.Titles.Len())
	for _, keys := range [][]string{ratings.Titles.Keys(), features.Titles.Keys()} {
		for _, t := range keys {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				c.titles = append(c.titles, t)
			}
		}
	}
	slices.Sort(c.titles)
	c.fingerprint = fingerprint(ratings, features)
	return c
}

// Titles returns every known title in ascending order.
func (c *Catalog) Titles() []string {
	return slices.Clone(c.titles)
}

// Options returns the effective options.
func (c *Catalog) Options() Options { return c.opts }

func (c *Catalog) Stats() Stats {
	return Stats{
		Users:       c.ratings.Users.Len(),
		RatedTitles: c.ratings.Titles.Len(),
		GenreTitles: c.features.Titles.Len(),
		Vocabulary:  c.features.Vocabulary.Len(),
	}
}

// Fingerprint identifies the catalog contents. Two catalogs built from the
// same data share a fingerprint.
func (c *Catalog) Fingerprint() string { return c.fingerprint }

func fingerprint(ratings *matrix.RatingMatrix, features *matrix.FeatureMatrix) string {
	h := sha256.New()
	var buf [8]byte
	writeInt := func(v int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
	writeString := func(s string) {
		writeInt(len(s))
		h.Write([]byte(s))
	}
	writeFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}

	writeInt(ratings.Users.Len())
	for _, u := range ratings.Users.Keys() {
		writeInt(u)
	}
	writeInt(ratings.Titles.Len())
	for _, t := range ratings.Titles.Keys() {
		writeString(t)
	}
	for u := 0; u < ratings.Users.Len(); u++ {
		for t := 0; t < ratings.Titles.Len(); t++ {
			if v, ok := ratings.Rating(u, t); ok {
				writeInt(u)
				writeInt(t)
				writeFloat(v)
			}
		}
	}
	writeInt(features.Titles.Len())
	for _, t := range features.Titles.Keys() {
		writeString(t)
	}
	for _, w := range features.Vocabulary.Keys() {
		writeString(w)
	}
	for i := 0; i < features.Titles.Len(); i++ {
		for _, v := range features.Counts.RawRow(i) {
			writeFloat(v)
		}
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}
