package matrix

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ravindradesineni/Movie-recommendation/internal/dataset"
)

// DuplicatePolicy decides the cell value when a user rated the same title
// more than once.
type DuplicatePolicy int

const (
	// DuplicateMean averages all ratings for the pair.
	DuplicateMean DuplicatePolicy = iota
	// DuplicateFirst keeps the rating seen first.
	DuplicateFirst
	// DuplicateLast keeps the rating seen last.
	DuplicateLast
)

func (p DuplicatePolicy) String() string {
	switch p {
	case DuplicateMean:
		return "mean"
	case DuplicateFirst:
		return "first"
	case DuplicateLast:
		return "last"
	default:
		return fmt.Sprintf("DuplicatePolicy(%d)", int(p))
	}
}

// ParseDuplicatePolicy parses "mean", "first" or "last". The empty string
// means mean.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mean":
		return DuplicateMean, nil
	case "first":
		return DuplicateFirst, nil
	case "last":
		return DuplicateLast, nil
	}
	return 0, fmt.Errorf("unknown duplicate policy %q", s)
}

// RatingMatrix is the user×title rating table. Rows are user ids ascending,
// columns are titles ascending. Unrated cells hold 0 and have Rated false.
type RatingMatrix struct {
	Users  IndexMap[int]
	Titles IndexMap[string]
	Values *Dense

	rated []bool
}

// Rated reports whether user row u rated title column t.
func (m *RatingMatrix) Rated(u, t int) bool {
	return m.rated[u*m.Titles.Len()+t]
}

// Rating returns the cell value and whether it was rated.
func (m *RatingMatrix) Rating(u, t int) (float64, bool) {
	return m.Values.At(u, t), m.Rated(u, t)
}

type cellKey struct {
	user  int
	title string
}

type cell struct {
	sum   float64
	count int
	value float64
}

// RatingBuilder accumulates ratings and produces a RatingMatrix.
type RatingBuilder struct {
	policy DuplicatePolicy
	cells  map[cellKey]*cell
	users  map[int]struct{}
	titles map[string]struct{}
}

func NewRatingBuilder(policy DuplicatePolicy) *RatingBuilder {
	return &RatingBuilder{
		policy: policy,
		cells:  make(map[cellKey]*cell),
		users:  make(map[int]struct{}),
		titles: make(map[string]struct{}),
	}
}

// AddUser registers a user who may have no ratings.
func (b *RatingBuilder) AddUser(userID int) {
	b.users[userID] = struct{}{}
}

// Add records one rating.
func (b *RatingBuilder) Add(userID int, title string, rating float64) {
	b.users[userID] = struct{}{}
	b.titles[title] = struct{}{}
	k := cellKey{userID, title}
	c, ok := b.cells[k]
	if !ok {
		b.cells[k] = &cell{sum: rating, count: 1, value: rating}
		return
	}
	c.sum += rating
	c.count++
	if b.policy == DuplicateLast {
		c.value = rating
	}
}

// Build returns the accumulated matrix. The builder may keep being used.
func (b *RatingBuilder) Build() *RatingMatrix {
	users := make([]int, 0, len(b.users))
	for u := range b.users {
		users = append(users, u)
	}
	slices.Sort(users)
	titles := make([]string, 0, len(b.titles))
	for t := range b.titles {
		titles = append(titles, t)
	}
	slices.Sort(titles)

	m := &RatingMatrix{
		Users:  NewIndexMap(users),
		Titles: NewIndexMap(titles),
		Values: NewDense(len(users), len(titles)),
		rated:  make([]bool, len(users)*len(titles)),
	}
	for k, c := range b.cells {
		u, _ := m.Users.Index(k.user)
		t, _ := m.Titles.Index(k.title)
		v := c.value
		if b.policy == DuplicateMean {
			v = c.sum / float64(c.count)
		}
		m.Values.Set(u, t, v)
		m.rated[u*len(titles)+t] = true
	}
	return m
}

// BuildRatingMatrix pivots merged rows into a rating matrix.
func BuildRatingMatrix(rows []dataset.MergedRow, policy DuplicatePolicy) *RatingMatrix {
	b := NewRatingBuilder(policy)
	for _, r := range rows {
		b.Add(r.UserID, r.Title, r.Rating)
	}
	return b.Build()
}
