package classifier

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// LogisticRegression is a pre-trained linear model exported from
// scikit-learn: one coefficient row per class (a single row for binary
// problems) plus intercepts.
type LogisticRegression struct {
	classes   []int
	coef      [][]float64
	intercept []float64
}

func NewLogisticRegression(classes []int, coef [][]float64, intercept []float64) (*LogisticRegression, error) {
	if len(coef) == 0 {
		return nil, errors.New("model has no coefficients")
	}
	if len(intercept) != len(coef) {
		return nil, fmt.Errorf("model has %d intercepts for %d coefficient rows", len(intercept), len(coef))
	}
	features := len(coef[0])
	if features == 0 {
		return nil, errors.New("model has zero features")
	}
	for i, row := range coef {
		if len(row) != features {
			return nil, fmt.Errorf("coefficient row %d has %d features, want %d", i, len(row), features)
		}
	}

	wantClasses := len(coef)
	if len(coef) == 1 {
		wantClasses = 2
	}
	if classes == nil {
		classes = make([]int, wantClasses)
		for i := range classes {
			classes[i] = i
		}
	}
	if len(classes) != wantClasses {
		return nil, fmt.Errorf("model has %d classes for %d coefficient rows", len(classes), len(coef))
	}

	return &LogisticRegression{classes: classes, coef: coef, intercept: intercept}, nil
}

func LoadLogisticRegression(path string) (*LogisticRegression, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}
	model, err := ParseLogisticRegression(data)
	if err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	return model, nil
}

// ParseLogisticRegression decodes {"classes":[...],"coef":[[...]],"intercept":[...]}.
func ParseLogisticRegression(data []byte) (*LogisticRegression, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("model file is not valid JSON")
	}
	root := gjson.ParseBytes(data)

	coefResult := root.Get("coef")
	if !coefResult.IsArray() {
		return nil, errors.New(`model is missing "coef"`)
	}
	var coef [][]float64
	for _, row := range coefResult.Array() {
		if !row.IsArray() {
			return nil, errors.New(`"coef" must be a matrix`)
		}
		values := row.Array()
		out := make([]float64, len(values))
		for i, v := range values {
			if v.Type != gjson.Number {
				return nil, fmt.Errorf(`"coef"[%d][%d] is not a number: %s`, len(coef), i, v.Raw)
			}
			out[i] = v.Float()
		}
		coef = append(coef, out)
	}

	interceptResult := root.Get("intercept")
	if !interceptResult.IsArray() {
		return nil, errors.New(`model is missing "intercept"`)
	}
	var intercept []float64
	for i, v := range interceptResult.Array() {
		if v.Type != gjson.Number {
			return nil, fmt.Errorf(`"intercept"[%d] is not a number: %s`, i, v.Raw)
		}
		intercept = append(intercept, v.Float())
	}

	var classes []int
	if c := root.Get("classes"); c.Exists() {
		if !c.IsArray() || len(c.Array()) == 0 {
			return nil, errors.New(`"classes" must be a non-empty array`)
		}
		for i, v := range c.Array() {
			if v.Type != gjson.Number || v.Float() != float64(v.Int()) {
				return nil, fmt.Errorf(`"classes"[%d] is not an integer: %s`, i, v.Raw)
			}
			classes = append(classes, int(v.Int()))
		}
	}

	return NewLogisticRegression(classes, coef, intercept)
}

func (m *LogisticRegression) NumFeatures() int {
	return len(m.coef[0])
}

// DecisionFunction returns coef·x + intercept for every coefficient row.
func (m *LogisticRegression) DecisionFunction(x []float32) ([]float64, error) {
	if len(x) != m.NumFeatures() {
		return nil, fmt.Errorf("feature vector has %d values, model expects %d", len(x), m.NumFeatures())
	}
	scores := make([]float64, len(m.coef))
	for k, row := range m.coef {
		s := m.intercept[k]
		for i, w := range row {
			s += w * float64(x[i])
		}
		scores[k] = s
	}
	return scores, nil
}

// Predict returns the class value with the highest score. Ties go to the
// first class; binary models pick the second class only on a positive score.
func (m *LogisticRegression) Predict(x []float32) (int, error) {
	scores, err := m.DecisionFunction(x)
	if err != nil {
		return 0, err
	}
	if len(scores) == 1 {
		if scores[0] > 0 {
			return m.classes[1], nil
		}
		return m.classes[0], nil
	}
	best := 0
	for k := 1; k < len(scores); k++ {
		if scores[k] > scores[best] {
			best = k
		}
	}
	return m.classes[best], nil
}
