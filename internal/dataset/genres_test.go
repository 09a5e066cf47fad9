package dataset

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseGenres(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr bool
	}{
		{
			name: "record list",
			raw:  "[{'id': 16, 'name': 'Animation'}, {'id': 35, 'name': 'Comedy'}, {'id': 10751, 'name': 'Family'}]",
			want: []string{"Animation", "Comedy", "Family"},
		},
		{
			name: "double-quoted name",
			raw:  `[{'id': 1, 'name': "Children's"}]`,
			want: []string{"Children's"},
		},
		{name: "empty list", raw: "[]", want: []string{}},
		{name: "empty field", raw: "", want: nil},
		{name: "pipe separated", raw: "Adventure|Sci-Fi", want: []string{"Adventure", "Sci-Fi"}},
		{name: "no genres listed", raw: "(no genres listed)", want: nil},
		{name: "truncated record list", raw: "[{'id': 16, 'name': 'Anim", wantErr: true},
		{name: "record without name", raw: "[{'id': 16}]", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGenres(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrGenreParse) {
					t.Fatalf("expected ErrGenreParse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %#v, got %#v", tt.want, got)
			}
		})
	}
}
