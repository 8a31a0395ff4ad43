// Package similarity vectorizes composed feature text with TF-IDF and
// computes cosine similarity rows on demand. The vectorizer is fitted once
// per corpus build and cached inside the Index; a query only costs one dot
// product per corpus entry.
package similarity

import (
	"math"
	"strings"
)

// sparseVec maps vocabulary term IDs to weights.
type sparseVec map[int]float64

// Vectorizer holds the fitted vocabulary and per-term inverse document
// frequencies.
type Vectorizer struct {
	vocab map[string]int
	idf   []float64
}

// tokenize lowercases the text, splits on whitespace, trims punctuation at
// token edges, and removes English stop-words. No stemming is applied.
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
		})
		if len(f) < 2 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// fit builds the vocabulary and smoothed IDF weights over the corpus:
// idf(t) = ln((1+n)/(1+df(t))) + 1.
func fit(docs []string) (*Vectorizer, [][]string) {
	v := &Vectorizer{vocab: make(map[string]int)}
	tokenized := make([][]string, len(docs))
	docFreq := make([]int, 0)

	for i, doc := range docs {
		tokens := tokenize(doc)
		tokenized[i] = tokens
		seen := make(map[int]struct{}, len(tokens))
		for _, tok := range tokens {
			id, ok := v.vocab[tok]
			if !ok {
				id = len(v.vocab)
				v.vocab[tok] = id
				docFreq = append(docFreq, 0)
			}
			if _, dup := seen[id]; !dup {
				docFreq[id]++
				seen[id] = struct{}{}
			}
		}
	}

	n := float64(len(docs))
	v.idf = make([]float64, len(docFreq))
	for id, df := range docFreq {
		v.idf[id] = math.Log((1+n)/(1+float64(df))) + 1
	}
	return v, tokenized
}

// transform converts a tokenized document into an L2-normalized TF-IDF
// vector. Normalizing here makes cosine similarity a plain dot product and
// pins self-similarity at exactly 1.0 for non-empty vectors.
func (v *Vectorizer) transform(tokens []string) sparseVec {
	vec := make(sparseVec)
	for _, tok := range tokens {
		if id, ok := v.vocab[tok]; ok {
			vec[id]++
		}
	}
	var norm float64
	for id, tf := range vec {
		w := tf * v.idf[id]
		vec[id] = w
		norm += w * w
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for id := range vec {
		vec[id] /= norm
	}
	return vec
}

// dot computes the inner product of two sparse vectors, iterating the
// smaller one.
func dot(a, b sparseVec) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for id, w := range a {
		if other, ok := b[id]; ok {
			sum += w * other
		}
	}
	return sum
}
