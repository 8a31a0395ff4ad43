package similarity

// Index is the fitted vectorizer plus the corpus vectors. Build once per
// corpus load; the Index is read-only afterwards and safe for concurrent
// readers.
type Index struct {
	vectorizer *Vectorizer
	vectors    []sparseVec
}

// Build fits the TF-IDF vectorizer over the composed feature documents and
// transforms every document into its corpus vector.
func Build(docs []string) *Index {
	vectorizer, tokenized := fit(docs)
	vectors := make([]sparseVec, len(docs))
	for i, tokens := range tokenized {
		vectors[i] = vectorizer.transform(tokens)
	}
	return &Index{vectorizer: vectorizer, vectors: vectors}
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	return len(ix.vectors)
}

// VocabSize returns the fitted vocabulary size.
func (ix *Index) VocabSize() int {
	return len(ix.vectorizer.vocab)
}

// ScoreAgainstAll returns the cosine similarity of the anchor document
// against every corpus document, the anchor itself included. Vectors are
// L2-normalized at build time, so the anchor's own entry is 1.0 whenever
// its feature text is non-empty.
func (ix *Index) ScoreAgainstAll(anchor int) []float64 {
	anchorVec := ix.vectors[anchor]
	scores := make([]float64, len(ix.vectors))
	for i, vec := range ix.vectors {
		scores[i] = dot(anchorVec, vec)
	}
	return scores
}
