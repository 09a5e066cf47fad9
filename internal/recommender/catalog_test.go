package recommender

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ravindradesineni/Movie-recommendation/internal/dataset"
	"github.com/ravindradesineni/Movie-recommendation/internal/matrix"
	apperrors "github.com/ravindradesineni/Movie-recommendation/pkg/errors"
)

// threeUsers: user 1 has not rated B; users 2 and 3 have.
func threeUsers() []dataset.MergedRow {
	return []dataset.MergedRow{
		{UserID: 1, Title: "A", Rating: 5, Genres: []string{"Animation", "Comedy"}},
		{UserID: 1, Title: "C", Rating: 1, Genres: []string{"Horror"}},
		{UserID: 2, Title: "A", Rating: 5, Genres: []string{"Animation", "Comedy"}},
		{UserID: 2, Title: "B", Rating: 4, Genres: []string{"Animation"}},
		{UserID: 2, Title: "C", Rating: 1, Genres: []string{"Horror"}},
		{UserID: 3, Title: "A", Rating: 1, Genres: []string{"Animation", "Comedy"}},
		{UserID: 3, Title: "B", Rating: 2, Genres: []string{"Animation"}},
		{UserID: 3, Title: "C", Rating: 5, Genres: []string{"Horror"}},
	}
}

func titlesOf(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Title
	}
	return out
}

func TestForUserScenario(t *testing.T) {
	c := Build(threeUsers(), Options{})
	recs, err := c.ForUser(1, 5)
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	if got := titlesOf(recs); !reflect.DeepEqual(got, []string{"B"}) {
		t.Fatalf("expected [B], got %v", got)
	}
	if recs[0].Score < 2 || recs[0].Score > 4 {
		t.Errorf("expected a weighted mean between peer ratings 2 and 4, got %v", recs[0].Score)
	}
}

func TestForUserPeerCount(t *testing.T) {
	c := Build(threeUsers(), Options{PeerCount: 1})
	recs, err := c.ForUser(1, 5)
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	// the single closest peer is user 2, who rated B 4
	if len(recs) != 1 || recs[0].Score != 4 {
		t.Errorf("expected B scored 4 from user 2 alone, got %+v", recs)
	}
}

func TestForUserErrors(t *testing.T) {
	b := matrix.NewRatingBuilder(matrix.DuplicateMean)
	for _, r := range threeUsers() {
		b.Add(r.UserID, r.Title, r.Rating)
	}
	b.AddUser(9)
	c := NewCatalog(b.Build(), matrix.BuildFeatureMatrix(threeUsers()), Options{})

	if _, err := c.ForUser(42, 5); !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := c.ForUser(9, 5); !errors.Is(err, apperrors.ErrNoSimilarUsers) {
		t.Errorf("expected ErrNoSimilarUsers for a user without history, got %v", err)
	}
}

func TestForUserOnlyNegativePeers(t *testing.T) {
	rows := []dataset.MergedRow{
		{UserID: 1, Title: "A", Rating: 1},
		{UserID: 2, Title: "A", Rating: -1},
		{UserID: 2, Title: "B", Rating: 3},
	}
	c := Build(rows, Options{})
	if _, err := c.ForUser(1, 5); !errors.Is(err, apperrors.ErrNoSimilarUsers) {
		t.Errorf("expected ErrNoSimilarUsers, got %v", err)
	}
}

func TestForUserCountsZeroRatingAsRated(t *testing.T) {
	rows := []dataset.MergedRow{
		{UserID: 1, Title: "A", Rating: 4},
		{UserID: 1, Title: "B", Rating: 0},
		{UserID: 2, Title: "A", Rating: 4},
		{UserID: 2, Title: "B", Rating: 5},
		{UserID: 2, Title: "C", Rating: 3},
	}
	c := Build(rows, Options{})
	recs, err := c.ForUser(1, 5)
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	if got := titlesOf(recs); !reflect.DeepEqual(got, []string{"C"}) {
		t.Errorf("expected only C, got %v", got)
	}
}

func TestSimilarByRatings(t *testing.T) {
	c := Build(threeUsers(), Options{})
	recs, err := c.SimilarByRatings("A", 10)
	if err != nil {
		t.Fatalf("SimilarByRatings: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 results, got %v", recs)
	}
	for _, r := range recs {
		if r.Title == "A" {
			t.Error("query title must not be recommended")
		}
	}
	if recs[0].Score < recs[1].Score {
		t.Errorf("expected descending scores, got %+v", recs)
	}

	one, _ := c.SimilarByRatings("A", 1)
	if len(one) != 1 {
		t.Errorf("expected at most 1 result, got %d", len(one))
	}
	if _, err := c.SimilarByRatings("Nope", 5); !errors.Is(err, apperrors.ErrTitleNotFound) {
		t.Errorf("expected ErrTitleNotFound, got %v", err)
	}
}

func TestSimilarByGenreEmptyGenresRankLast(t *testing.T) {
	rows := []dataset.MergedRow{
		{UserID: 1, Title: "X", Genres: []string{"Animation", "Comedy"}},
		{UserID: 1, Title: "Z"},
		{UserID: 1, Title: "Y", Genres: []string{"Animation"}},
		{UserID: 1, Title: "W", Genres: []string{"Comedy", "Horror"}},
	}
	c := Build(rows, Options{})
	recs, err := c.SimilarByGenre("X", 10)
	if err != nil {
		t.Fatalf("SimilarByGenre: %v", err)
	}
	if got := titlesOf(recs); !reflect.DeepEqual(got, []string{"Y", "W", "Z"}) {
		t.Fatalf("expected [Y W Z], got %v", got)
	}
	if recs[2].Score != 0 {
		t.Errorf("expected 0 for a title without genres, got %v", recs[2].Score)
	}

	fromEmpty, err := c.SimilarByGenre("Z", 10)
	if err != nil {
		t.Fatalf("SimilarByGenre: %v", err)
	}
	if got := titlesOf(fromEmpty); !reflect.DeepEqual(got, []string{"X", "Y", "W"}) {
		t.Errorf("expected column order on all-zero ties, got %v", got)
	}
}

func TestDefaultTopN(t *testing.T) {
	var rows []dataset.MergedRow
	for _, title := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		rows = append(rows, dataset.MergedRow{UserID: 1, Title: title, Rating: 3, Genres: []string{"Drama"}})
	}
	c := Build(rows, Options{})
	recs, err := c.SimilarByGenre("a", 0)
	if err != nil {
		t.Fatalf("SimilarByGenre: %v", err)
	}
	if len(recs) != DefaultTopN {
		t.Errorf("expected %d results, got %d", DefaultTopN, len(recs))
	}
	if got := titlesOf(recs); !reflect.DeepEqual(got, []string{"b", "c", "d", "e", "f"}) {
		t.Errorf("expected ties broken by column order, got %v", got)
	}
}

func TestQueriesAreIdempotent(t *testing.T) {
	c := Build(threeUsers(), Options{})
	first, _ := c.SimilarByRatings("B", 5)
	second, _ := c.SimilarByRatings("B", 5)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical results, got %v and %v", first, second)
	}
	u1, _ := c.ForUser(1, 5)
	u2, _ := c.ForUser(1, 5)
	if !reflect.DeepEqual(u1, u2) {
		t.Errorf("expected identical results, got %v and %v", u1, u2)
	}
}

func TestEmptyCatalog(t *testing.T) {
	c := Build(nil, Options{})
	if len(c.Titles()) != 0 {
		t.Errorf("expected no titles, got %v", c.Titles())
	}
	if _, err := c.SimilarByRatings("A", 5); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := c.SimilarByGenre("A", 5); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := c.ForUser(1, 5); !errors.Is(err, apperrors.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestTitlesAndFingerprint(t *testing.T) {
	a := Build(threeUsers(), Options{})
	if got := a.Titles(); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("expected sorted titles, got %v", got)
	}
	b := Build(threeUsers(), Options{})
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("expected equal fingerprints for equal data")
	}
	rows := threeUsers()
	rows[0].Rating = 4
	if Build(rows, Options{}).Fingerprint() == a.Fingerprint() {
		t.Error("expected fingerprint to change with a rating")
	}
	if s := a.Stats(); s.Users != 3 || s.RatedTitles != 3 || s.GenreTitles != 3 {
		t.Errorf("unexpected stats %+v", s)
	}
}
