package dataset

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrGenreParse marks a genre field that could not be decoded. Callers treat
// it as an empty genre list.
var ErrGenreParse = errors.New("unparseable genre field")

const noGenresListed = "(no genres listed)"

// ParseGenres decodes a genre field into genre names.
//
// Two encodings are accepted: a list of records such as
// "[{'id': 16, 'name': 'Animation'}, {'id': 35, 'name': 'Comedy'}]", and the
// pipe-separated form "Animation|Comedy". The record form is a YAML flow
// sequence of flow mappings, so it is decoded with yaml.v3. An empty field
// yields no genres and no error.
func ParseGenres(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == noGenresListed {
		return nil, nil
	}
	if !strings.HasPrefix(raw, "[") {
		return splitPipeGenres(raw), nil
	}

	var records []map[string]any
	if err := yaml.Unmarshal([]byte(raw), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenreParse, err)
	}
	names := make([]string, 0, len(records))
	for i, rec := range records {
		name, ok := rec["name"].(string)
		if !ok {
			return nil, fmt.Errorf("%w: record %d has no string name", ErrGenreParse, i)
		}
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func splitPipeGenres(raw string) []string {
	parts := strings.Split(raw, "|")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || p == noGenresListed {
			continue
		}
		names = append(names, p)
	}
	return names
}
