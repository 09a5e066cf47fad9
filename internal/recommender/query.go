package recommender

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/ravindradesineni/Movie-recommendation/internal/matrix"
	"github.com/ravindradesineni/Movie-recommendation/internal/similarity"
	apperrors "github.com/ravindradesineni/Movie-recommendation/pkg/errors"
)

// Query kinds, used as metric labels, cache namespaces and analytics event
// fields.
const (
	KindRatings = "ratings"
	KindGenre   = "genre"
	KindUser    = "user"
)

// SimilarByRatings returns up to n titles whose rating columns are most
// similar to title. The title itself is never returned.
func (c *Catalog) SimilarByRatings(title string, n int) ([]Recommendation, error) {
	return c.similarTo(title, n, c.ratings.Titles, c.titleSim)
}

// SimilarByGenre returns up to n titles whose genre vectors are most
// similar to title. Titles without genres score 0 against everything.
func (c *Catalog) SimilarByGenre(title string, n int) ([]Recommendation, error) {
	return c.similarTo(title, n, c.features.Titles, c.genreSim)
}

func (c *Catalog) similarTo(title string, n int, index matrix.IndexMap[string], sim *similarity.Matrix) ([]Recommendation, error) {
	i, ok := index.Index(title)
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrTitleNotFound, title)
	}
	row := sim.Row(i)
	cands := make([]scored, 0, len(row))
	for j, s := range row {
		if j != i {
			cands = append(cands, scored{pos: j, score: s})
		}
	}
	return c.top(cands, n, index), nil
}

// ForUser recommends titles the user has not rated, scored by the
// similarity-weighted mean rating of the user's closest peers.
//
// Only the PeerCount most similar other users are consulted, and only those
// with positive similarity. A title's score averages over the peers who
// actually rated it; titles none of them rated are skipped.
func (c *Catalog) ForUser(userID int, n int) ([]Recommendation, error) {
	u, ok := c.ratings.Users.Index(userID)
	if !ok {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrUserNotFound, userID)
	}

	row := c.userSim.Row(u)
	peers := make([]scored, 0, len(row))
	for v, s := range row {
		if v != u {
			peers = append(peers, scored{pos: v, score: s})
		}
	}
	sortScored(peers)
	if len(peers) > c.opts.PeerCount {
		peers = peers[:c.opts.PeerCount]
	}
	peers = slices.DeleteFunc(peers, func(p scored) bool { return p.score <= 0 })
	if len(peers) == 0 {
		return nil, fmt.Errorf("%w: user %d", apperrors.ErrNoSimilarUsers, userID)
	}

	titles := c.ratings.Titles.Len()
	cands := make([]scored, 0, titles)
	for t := 0; t < titles; t++ {
		if c.ratings.Rated(u, t) {
			continue
		}
		var num, den float64
		for _, p := range peers {
			if r, ok := c.ratings.Rating(p.pos, t); ok {
				num += p.score * r
				den += p.score
			}
		}
		if den == 0 {
			continue
		}
		cands = append(cands, scored{pos: t, score: num / den})
	}
	return c.top(cands, n, c.ratings.Titles), nil
}

type scored struct {
	pos   int
	score float64
}

// sortScored orders by descending score, then ascending position.
func sortScored(s []scored) {
	slices.SortFunc(s, func(a, b scored) int {
		if a.score != b.score {
			return cmp.Compare(b.score, a.score)
		}
		return cmp.Compare(a.pos, b.pos)
	})
}

func (c *Catalog) top(cands []scored, n int, index matrix.IndexMap[string]) []Recommendation {
	if n <= 0 {
		n = c.opts.DefaultTopN
	}
	sortScored(cands)
	if len(cands) > n {
		cands = cands[:n]
	}
	out := make([]Recommendation, len(cands))
	for i, s := range cands {
		out[i] = Recommendation{Title: index.Key(s.pos), Score: s.score}
	}
	return out
}
