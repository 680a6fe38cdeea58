// Package embedding holds the pre-built word vector table and the document
// vectorizer that averages it into classifier features.
package embedding

import "fmt"

// Table is an immutable token to vector mapping. All vectors share Dim.
type Table struct {
	dim     int
	vectors map[string][]float32
}

// NewTable wraps vectors in a Table after checking every row has length dim.
// The map is owned by the table afterwards.
func NewTable(dim int, vectors map[string][]float32) (*Table, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension %d", dim)
	}
	for word, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("vector for %q has dimension %d, want %d", word, len(vec), dim)
		}
	}
	return &Table{dim: dim, vectors: vectors}, nil
}

// Lookup returns the vector for token. Out-of-vocabulary tokens report false.
func (t *Table) Lookup(token string) ([]float32, bool) {
	vec, ok := t.vectors[token]
	return vec, ok
}

func (t *Table) Dim() int {
	return t.dim
}

func (t *Table) Len() int {
	return len(t.vectors)
}
