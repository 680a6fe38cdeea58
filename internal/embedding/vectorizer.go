package embedding

import "strings"

// Lookup is the read-only view of a word vector table the vectorizer needs.
type Lookup interface {
	Lookup(token string) ([]float32, bool)
	Dim() int
}

// Vectorizer turns a job title and description into one feature vector by
// averaging the vectors of every in-vocabulary token.
type Vectorizer struct {
	table Lookup
}

func NewVectorizer(table Lookup) *Vectorizer {
	return &Vectorizer{table: table}
}

func (v *Vectorizer) Dim() int {
	return v.table.Dim()
}

// Vectorize splits title+" "+description on whitespace without any other
// normalisation. When no token is known the zero vector is returned.
func (v *Vectorizer) Vectorize(title, description string) []float32 {
	dim := v.table.Dim()
	sum := make([]float64, dim)
	found := 0
	for _, token := range strings.Fields(title + " " + description) {
		vec, ok := v.table.Lookup(token)
		if !ok {
			continue
		}
		for i, x := range vec {
			sum[i] += float64(x)
		}
		found++
	}

	out := make([]float32, dim)
	if found == 0 {
		return out
	}
	for i, s := range sum {
		out[i] = float32(s / float64(found))
	}
	return out
}
