package matrix

import (
	"reflect"
	"testing"

	"github.com/ravindradesineni/Movie-recommendation/internal/dataset"
)

func TestIndexMap(t *testing.T) {
	m := NewIndexMap([]string{"b", "a", "b", "c"})
	if m.Len() != 3 {
		t.Fatalf("expected 3 keys, got %d", m.Len())
	}
	if i, ok := m.Index("b"); !ok || i != 0 {
		t.Errorf("expected b at 0, got %d (%v)", i, ok)
	}
	if m.Key(2) != "c" {
		t.Errorf("expected c at 2, got %q", m.Key(2))
	}
	if _, ok := m.Index("z"); ok {
		t.Error("expected z to be absent")
	}
	keys := m.Keys()
	keys[0] = "mutated"
	if m.Key(0) != "b" {
		t.Error("Keys must return a copy")
	}

	var empty IndexMap[int]
	if empty.Len() != 0 {
		t.Errorf("expected zero-value map to be empty")
	}
	if _, ok := empty.Index(1); ok {
		t.Error("expected lookup on zero-value map to miss")
	}
}

func TestDenseTranspose(t *testing.T) {
	d := NewDense(2, 3)
	v := 1.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			d.Set(i, j, v)
			v++
		}
	}
	tr := d.T()
	if r, c := tr.Dims(); r != 3 || c != 2 {
		t.Fatalf("expected 3x2, got %dx%d", r, c)
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			if d.At(i, j) != tr.At(j, i) {
				t.Errorf("transpose mismatch at (%d,%d)", i, j)
			}
		}
	}
	if got := d.RawRow(1); !reflect.DeepEqual(got, []float64{4, 5, 6}) {
		t.Errorf("expected row [4 5 6], got %v", got)
	}
}

func TestParseDuplicatePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    DuplicatePolicy
		wantErr bool
	}{
		{"", DuplicateMean, false},
		{"mean", DuplicateMean, false},
		{"First", DuplicateFirst, false},
		{" last ", DuplicateLast, false},
		{"median", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDuplicatePolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuplicatePolicy(%q): unexpected error state %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDuplicatePolicy(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestBuildRatingMatrixOrderingAndMask(t *testing.T) {
	rows := []dataset.MergedRow{
		{UserID: 3, Title: "C", Rating: 2},
		{UserID: 1, Title: "B", Rating: 0},
		{UserID: 2, Title: "A", Rating: 4},
	}
	m := BuildRatingMatrix(rows, DuplicateMean)

	if got := m.Users.Keys(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("expected users ascending, got %v", got)
	}
	if got := m.Titles.Keys(); !reflect.DeepEqual(got, []string{"A", "B", "C"}) {
		t.Errorf("expected titles ascending, got %v", got)
	}

	u, _ := m.Users.Index(1)
	b, _ := m.Titles.Index("B")
	a, _ := m.Titles.Index("A")
	if v, ok := m.Rating(u, b); !ok || v != 0 {
		t.Errorf("expected a real zero rating to be marked rated, got %v (%v)", v, ok)
	}
	if v, ok := m.Rating(u, a); ok || v != 0 {
		t.Errorf("expected unrated cell to be (0,false), got %v (%v)", v, ok)
	}
}

func TestDuplicatePolicies(t *testing.T) {
	rows := []dataset.MergedRow{
		{UserID: 1, Title: "A", Rating: 2},
		{UserID: 1, Title: "A", Rating: 5},
		{UserID: 1, Title: "A", Rating: 3.5},
	}
	tests := []struct {
		policy DuplicatePolicy
		want   float64
	}{
		{DuplicateMean, 3.5},
		{DuplicateFirst, 2},
		{DuplicateLast, 3.5},
	}
	for _, tt := range tests {
		t.Run(tt.policy.String(), func(t *testing.T) {
			m := BuildRatingMatrix(rows, tt.policy)
			if got := m.Values.At(0, 0); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRatingBuilderUserWithoutRatings(t *testing.T) {
	b := NewRatingBuilder(DuplicateMean)
	b.Add(1, "A", 4)
	b.AddUser(7)
	m := b.Build()
	u, ok := m.Users.Index(7)
	if !ok {
		t.Fatal("expected registered user 7")
	}
	if m.Rated(u, 0) {
		t.Error("expected user 7 to have no ratings")
	}
}

func TestBuildRatingMatrixEmpty(t *testing.T) {
	m := BuildRatingMatrix(nil, DuplicateMean)
	if r, c := m.Values.Dims(); r != 0 || c != 0 {
		t.Errorf("expected 0x0, got %dx%d", r, c)
	}
}

func TestBuildFeatureMatrix(t *testing.T) {
	rows := []dataset.MergedRow{
		{UserID: 1, Title: "Toy Story", Genres: []string{"Animation", "Comedy", "Family"}},
		{UserID: 1, Title: "Alien", Genres: []string{"Horror", "Science Fiction"}},
		{UserID: 2, Title: "Toy Story", Genres: []string{"Drama"}},
		{UserID: 2, Title: "Untitled"},
	}
	fm := BuildFeatureMatrix(rows)

	if got := fm.Titles.Keys(); !reflect.DeepEqual(got, []string{"Toy Story", "Alien", "Untitled"}) {
		t.Errorf("expected first-appearance order, got %v", got)
	}
	want := []string{"animation", "comedy", "family", "fiction", "horror", "science"}
	if got := fm.Vocabulary.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected vocabulary %v, got %v", want, got)
	}
	if _, ok := fm.Vocabulary.Index("drama"); ok {
		t.Error("genres of a repeated title must come from its first row")
	}
	alien, _ := fm.Titles.Index("Alien")
	sci, _ := fm.Vocabulary.Index("science")
	if fm.Counts.At(alien, sci) != 1 {
		t.Errorf("expected science count 1 for Alien, got %v", fm.Counts.At(alien, sci))
	}
	untitled, _ := fm.Titles.Index("Untitled")
	for _, v := range fm.Counts.RawRow(untitled) {
		if v != 0 {
			t.Fatalf("expected all-zero row for a title without genres, got %v", fm.Counts.RawRow(untitled))
		}
	}
}
