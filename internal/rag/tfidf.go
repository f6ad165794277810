package rag

import (
	"math"
	"sort"
)

// Vector is a sparse term → weight mapping.
type Vector map[string]float64

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Index holds the TF-IDF statistics of a fixed document set.
// It is immutable after NewIndex returns and safe for concurrent reads.
type Index struct {
	// counts holds the raw term frequencies of each document.
	counts []map[string]int
	// df is the number of documents each term occurs in.
	df map[string]int
	// vectors caches the TF-IDF vector of each document.
	vectors []Vector
	// termIDs assigns each vocabulary term a stable numeric id (sorted order),
	// used as the sparse index when vectors leave the process.
	termIDs map[string]uint32
}

// NewIndex tokenizes texts and computes their TF-IDF vectors.
func NewIndex(texts []string) *Index {
	ix := &Index{
		counts: make([]map[string]int, len(texts)),
		df:     make(map[string]int),
	}

	for i, text := range texts {
		tf := make(map[string]int)
		for _, tok := range Tokenize(text) {
			tf[tok]++
		}
		ix.counts[i] = tf
		for term := range tf {
			ix.df[term]++
		}
	}

	terms := make([]string, 0, len(ix.df))
	for term := range ix.df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	ix.termIDs = make(map[string]uint32, len(terms))
	for i, term := range terms {
		ix.termIDs[term] = uint32(i)
	}

	ix.vectors = make([]Vector, len(texts))
	for i, tf := range ix.counts {
		vec := make(Vector, len(tf))
		for term, n := range tf {
			vec[term] = float64(n) * ix.IDF(term)
		}
		ix.vectors[i] = vec
	}

	return ix
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int { return len(ix.counts) }

// VocabularySize returns the number of distinct terms in the index.
func (ix *Index) VocabularySize() int { return len(ix.termIDs) }

// IDF returns 1 + ln(N / (1 + df(term))). The +1 in the denominator keeps
// terms present in every document from collapsing to zero weight.
func (ix *Index) IDF(term string) float64 {
	n := float64(len(ix.counts))
	return 1 + math.Log(n/(1+float64(ix.df[term])))
}

// DocumentVector returns the TF-IDF vector of document i. The returned map is
// shared and must not be modified.
func (ix *Index) DocumentVector(i int) Vector {
	return ix.vectors[i]
}

// TermID returns the numeric id of term, or false if the term never occurs in
// the indexed documents.
func (ix *Index) TermID(term string) (uint32, bool) {
	id, ok := ix.termIDs[term]
	return id, ok
}

// Sparse converts v into parallel index/value slices over this index's
// vocabulary, L2-normalised by the norm of the whole of v. Terms outside the
// vocabulary are dropped after normalisation, so the dot product of two
// converted vectors still equals their cosine similarity.
func (ix *Index) Sparse(v Vector) ([]uint32, []float32) {
	norm := v.Norm()
	if norm == 0 {
		return nil, nil
	}

	type entry struct {
		id uint32
		w  float64
	}
	entries := make([]entry, 0, len(v))
	for term, w := range v {
		if id, ok := ix.termIDs[term]; ok && w != 0 {
			entries = append(entries, entry{id: id, w: w / norm})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	indices := make([]uint32, len(entries))
	values := make([]float32, len(entries))
	for i, e := range entries {
		indices[i] = e.id
		values[i] = float32(e.w)
	}
	return indices, values
}

// QueryVector vectorizes a question as a single-document set of its own.
// Every query term then carries the same idf, so the vector is proportional
// to the raw term counts.
func QueryVector(query string) Vector {
	return NewIndex([]string{query}).DocumentVector(0)
}

// Cosine returns the cosine similarity of a and b, or 0 if either is empty.
func Cosine(a, b Vector) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}

	var dot float64
	for term, wa := range a {
		dot += wa * b[term]
	}

	magA, magB := a.Norm(), b.Norm()
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (magA * magB)
}
