package matrix

import (
	"slices"
	"strings"

	"github.com/ravindradesineni/Movie-recommendation/internal/dataset"
	"github.com/ravindradesineni/Movie-recommendation/internal/tokenizer"
)

// FeatureMatrix holds genre token counts per title. Rows follow the first
// appearance of each title; columns are the vocabulary in ascending order.
// A title without genres has an all-zero row.
type FeatureMatrix struct {
	Titles     IndexMap[string]
	Vocabulary IndexMap[string]
	Counts     *Dense
}

// BuildFeatureMatrix tokenizes the genres of each distinct title. When a
// title appears in several rows, the genres of the first row are used.
func BuildFeatureMatrix(rows []dataset.MergedRow) *FeatureMatrix {
	var (
		titles []string
		docs   [][]string
		seen   = make(map[string]struct{})
		vocab  = make(map[string]struct{})
	)
	for _, r := range rows {
		if _, ok := seen[r.Title]; ok {
			continue
		}
		seen[r.Title] = struct{}{}
		tokens := tokenizer.Tokenize(strings.Join(r.Genres, " "))
		for _, tok := range tokens {
			vocab[tok] = struct{}{}
		}
		titles = append(titles, r.Title)
		docs = append(docs, tokens)
	}

	words := make([]string, 0, len(vocab))
	for w := range vocab {
		words = append(words, w)
	}
	slices.Sort(words)

	fm := &FeatureMatrix{
		Titles:     NewIndexMap(titles),
		Vocabulary: NewIndexMap(words),
		Counts:     NewDense(len(titles), len(words)),
	}
	for i, tokens := range docs {
		for _, tok := range tokens {
			j, _ := fm.Vocabulary.Index(tok)
			fm.Counts.Set(i, j, fm.Counts.At(i, j)+1)
		}
	}
	return fm
}
