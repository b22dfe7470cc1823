package textmodel

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// SparseVector holds non-zero features sorted by index.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Tokenize lower-cases s and returns word tokens of at least two runes.
// Letters, digits and underscores form words; everything else separates them.
func Tokenize(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 32)
	var b strings.Builder
	runes := 0
	flush := func() {
		if runes >= 2 {
			out = append(out, b.String())
		}
		b.Reset()
		runes = 0
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_' {
			b.WriteRune(unicode.ToLower(r))
			runes++
			continue
		}
		flush()
	}
	flush()
	return out
}

// Vectorizer is a TF-IDF encoder with smoothed idf and l2-normalised rows.
type Vectorizer struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
}

func FitVectorizer(docs []string) *Vectorizer {
	docFreq := make(map[string]int, 256)
	for _, doc := range docs {
		seen := make(map[string]struct{}, 32)
		for _, tok := range Tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			docFreq[tok]++
		}
	}

	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	return newVectorizer(terms, idf)
}

func newVectorizer(terms []string, idf []float64) *Vectorizer {
	vocab := make(map[string]int, len(terms))
	for i, term := range terms {
		vocab[term] = i
	}
	return &Vectorizer{vocabulary: vocab, terms: terms, idf: idf}
}

func (v *Vectorizer) Size() int {
	return len(v.terms)
}

// Transform encodes text; out-of-vocabulary tokens are dropped.
func (v *Vectorizer) Transform(text string) SparseVector {
	counts := make(map[int]float64, 32)
	for _, tok := range Tokenize(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}

	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	var norm float64
	for i, idx := range indices {
		w := counts[idx] * v.idf[idx]
		values[i] = w
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range values {
			values[i] /= norm
		}
	}
	return SparseVector{Indices: indices, Values: values}
}
