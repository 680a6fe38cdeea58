// Package classifier maps document vectors to job categories with a
// pre-trained logistic regression model.
package classifier

import "fmt"

type Prediction struct {
	Index    int
	Category Category
}

// Classifier pairs a model with the category set it was trained against.
type Classifier struct {
	model      *LogisticRegression
	categories *CategorySet
}

// New checks that every class the model can emit indexes into categories and
// that the model consumes vectors of dim values.
func New(model *LogisticRegression, categories *CategorySet, dim int) (*Classifier, error) {
	if model.NumFeatures() != dim {
		return nil, fmt.Errorf("model expects %d features but embeddings have dimension %d", model.NumFeatures(), dim)
	}
	for _, class := range model.classes {
		if _, ok := categories.At(class); !ok {
			return nil, fmt.Errorf("model class %d is outside the %d known categories", class, categories.Len())
		}
	}
	return &Classifier{model: model, categories: categories}, nil
}

func (c *Classifier) Categories() *CategorySet {
	return c.categories
}

func (c *Classifier) Classify(x []float32) (Prediction, error) {
	idx, err := c.model.Predict(x)
	if err != nil {
		return Prediction{}, err
	}
	category, _ := c.categories.At(idx)
	return Prediction{Index: idx, Category: category}, nil
}
