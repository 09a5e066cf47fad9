// Package tokenizer turns free text into bag-of-words terms for the content
// feature matrix. It lower-cases input, splits on non-alphanumeric
// boundaries, drops single-character fragments and removes English
// stop-words. No stemming is applied: genre names are short and already
// canonical.
package tokenizer

import (
	"strings"
	"unicode"
)

var stopWords = map[string]struct{}{
	"about": {}, "above": {}, "across": {}, "after": {}, "afterwards": {}, "again": {},
	"against": {}, "all": {}, "almost": {}, "alone": {}, "along": {}, "already": {},
	"also": {}, "although": {}, "always": {}, "am": {}, "among": {}, "amongst": {},
	"an": {}, "and": {}, "another": {}, "any": {}, "anyhow": {}, "anyone": {},
	"anything": {}, "anyway": {}, "anywhere": {}, "are": {}, "around": {}, "as": {},
	"at": {}, "be": {}, "became": {}, "because": {}, "become": {}, "becomes": {},
	"been": {}, "before": {}, "behind": {}, "being": {}, "below": {}, "beside": {},
	"besides": {}, "between": {}, "beyond": {}, "both": {}, "but": {}, "by": {},
	"can": {}, "cannot": {}, "could": {}, "did": {}, "do": {}, "does": {}, "done": {},
	"down": {}, "during": {}, "each": {}, "eg": {}, "either": {}, "else": {},
	"elsewhere": {}, "enough": {}, "etc": {}, "even": {}, "ever": {}, "every": {},
	"everyone": {}, "everything": {}, "everywhere": {}, "except": {}, "few": {},
	"for": {}, "former": {}, "formerly": {}, "from": {}, "further": {}, "had": {},
	"has": {}, "have": {}, "he": {}, "hence": {}, "her": {}, "here": {}, "hers": {},
	"herself": {}, "him": {}, "himself": {}, "his": {}, "how": {}, "however": {},
	"ie": {}, "if": {}, "in": {}, "indeed": {}, "into": {}, "is": {}, "it": {},
	"its": {}, "itself": {}, "just": {}, "last": {}, "latter": {}, "least": {},
	"less": {}, "many": {}, "may": {}, "me": {}, "meanwhile": {}, "might": {},
	"more": {}, "moreover": {}, "most": {}, "mostly": {}, "much": {}, "must": {},
	"my": {}, "myself": {}, "neither": {}, "never": {}, "nevertheless": {}, "next": {},
	"no": {}, "nobody": {}, "none": {}, "nor": {}, "not": {}, "nothing": {}, "now": {},
	"nowhere": {}, "of": {}, "off": {}, "often": {}, "on": {}, "once": {}, "one": {},
	"only": {}, "onto": {}, "or": {}, "other": {}, "others": {}, "otherwise": {},
	"our": {}, "ours": {}, "ourselves": {}, "out": {}, "over": {}, "own": {},
	"per": {}, "perhaps": {}, "rather": {}, "same": {}, "seem": {}, "seemed": {},
	"seems": {}, "several": {}, "she": {}, "should": {}, "since": {}, "so": {},
	"some": {}, "somehow": {}, "someone": {}, "something": {}, "sometimes": {},
	"somewhere": {}, "still": {}, "such": {}, "than": {}, "that": {}, "the": {},
	"their": {}, "them": {}, "themselves": {}, "then": {}, "there": {}, "therefore": {},
	"these": {}, "they": {}, "this": {}, "those": {}, "though": {}, "through": {},
	"throughout": {}, "thus": {}, "to": {}, "together": {}, "too": {}, "toward": {},
	"towards": {}, "under": {}, "until": {}, "up": {}, "upon": {}, "us": {}, "very": {},
	"via": {}, "was": {}, "we": {}, "well": {}, "were": {}, "what": {}, "whatever": {},
	"when": {}, "whence": {}, "whenever": {}, "where": {}, "whereas": {}, "whether": {},
	"which": {}, "while": {}, "who": {}, "whoever": {}, "whole": {}, "whom": {},
	"whose": {}, "why": {}, "will": {}, "with": {}, "within": {}, "without": {},
	"would": {}, "yet": {}, "you": {}, "your": {}, "yours": {}, "yourself": {},
	"yourselves": {},
}

// Tokenize breaks text into lower-cased terms with stop-words removed, in
// input order. Repeated terms are kept so callers can count them.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	terms := make([]string, 0, len(words))
	for _, word := range words {
		if len([]rune(word)) < 2 {
			continue
		}
		if IsStopWord(word) {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

// IsStopWord reports whether the lower-cased word is excluded from the
// vocabulary.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}
