package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const moviesCSV = `adult,genres,id,overview,title
False,"[{'id': 16, 'name': 'Animation'}, {'id': 35, 'name': 'Comedy'}]",862,"Led by Woody, Andy's toys live happily.",Toy Story
False,"[{'id': 12, 'name': 'Adventure'}]",8844,,Jumanji
False,"[{'id': 18, 'name': 'Dra",15602,broken genres,Grumpier Old Men
- Written by Ørnås,"[]",1997-08-20,bad id row,Nope
False,[],31357,,
`

const ratingsCSV = `userId,movieId,rating,timestamp
1,862,4.0,1260759144
1,8844,3.5,1260759179
2,862,x,1260759182
abc,862,4.0,1260759185
2,99999,2.0,1260759187
`

func TestReadMovies(t *testing.T) {
	movies, stats, err := ReadMovies(context.Background(), strings.NewReader(moviesCSV))
	if err != nil {
		t.Fatalf("ReadMovies: %v", err)
	}
	if stats.MoviesRead != 5 {
		t.Errorf("expected 5 rows read, got %d", stats.MoviesRead)
	}
	if stats.MoviesBadID != 1 {
		t.Errorf("expected 1 bad id, got %d", stats.MoviesBadID)
	}
	if stats.GenreParseFailures != 1 {
		t.Errorf("expected 1 genre parse failure, got %d", stats.GenreParseFailures)
	}
	if len(movies) != 4 {
		t.Fatalf("expected 4 movies, got %d", len(movies))
	}
	toy := movies[0]
	if toy.ID != 862 || toy.Title != "Toy Story" || len(toy.Genres) != 2 || toy.Genres[1] != "Comedy" {
		t.Errorf("unexpected first movie: %+v", toy)
	}
	if movies[1].Overview != "" {
		t.Errorf("expected empty overview default, got %q", movies[1].Overview)
	}
	if movies[2].Title != "Grumpier Old Men" || movies[2].Genres != nil {
		t.Errorf("expected soft genre failure to leave empty genres, got %+v", movies[2])
	}
}

func TestReadRatings(t *testing.T) {
	ratings, stats, err := ReadRatings(context.Background(), strings.NewReader(ratingsCSV))
	if err != nil {
		t.Fatalf("ReadRatings: %v", err)
	}
	if len(ratings) != 3 {
		t.Fatalf("expected 3 ratings, got %d", len(ratings))
	}
	if stats.RatingsBadValue != 1 || stats.RatingsBadID != 1 {
		t.Errorf("unexpected drop counts: %+v", stats)
	}
	if ratings[1] != (Rating{UserID: 1, MovieID: 8844, Rating: 3.5}) {
		t.Errorf("unexpected rating: %+v", ratings[1])
	}
}

func TestReadRatingsMissingColumn(t *testing.T) {
	_, _, err := ReadRatings(context.Background(), strings.NewReader("userId,rating\n1,4\n"))
	if err == nil {
		t.Fatal("expected error for missing movieId column")
	}
}

func TestLoadCSVSource(t *testing.T) {
	dir := t.TempDir()
	mp := filepath.Join(dir, "movies.csv")
	rp := filepath.Join(dir, "ratings.csv")
	if err := os.WriteFile(mp, []byte(moviesCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(rp, []byte(ratingsCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	ds, err := Load(context.Background(), NewCSVSource(mp, rp))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Rows) != 2 {
		t.Fatalf("expected 2 merged rows, got %d", len(ds.Rows))
	}
	if ds.Rows[0].Title != "Toy Story" || ds.Rows[1].Title != "Jumanji" {
		t.Errorf("expected ratings order preserved, got %+v", ds.Rows)
	}
	if ds.Stats.RatingsUnmatched != 1 {
		t.Errorf("expected 1 unmatched rating, got %d", ds.Stats.RatingsUnmatched)
	}
	if ds.Stats.MoviesRead != 5 || ds.Stats.RatingsRead != 5 {
		t.Errorf("expected source stats merged in, got %+v", ds.Stats)
	}
	if got := ds.Stats.Dropped()["genre_parse_failure"]; got != 1 {
		t.Errorf("expected genre_parse_failure=1, got %d", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), NewCSVSource("/nonexistent/movies.csv", "/nonexistent/ratings.csv"))
	if err == nil {
		t.Fatal("expected error for missing files")
	}
}
