package domain

import "context"

// Classification is the predicted locality type of a sub-locality and the
// per-type scores behind the prediction.
type Classification struct {
	Type   LocalityType       `json:"locality_type"`
	Scores map[string]float64 `json:"scores,omitempty"`
}

// Classifier predicts the locality type of a sub-locality name.
type Classifier interface {
	Classify(ctx context.Context, name string) (Classification, error)
}

// RuleClassifier classifies locally: a name that parses completely as a
// feature-offset-heading locality is one, anything else is a feature.
type RuleClassifier struct{}

func (RuleClassifier) Classify(_ context.Context, name string) (Classification, error) {
	if Parse(name, FeatureOffsetHeading).Complete() {
		return Classification{
			Type:   FeatureOffsetHeading,
			Scores: map[string]float64{string(FeatureOffsetHeading): 1, string(FeatureOnly): 0},
		}, nil
	}
	return Classification{
		Type:   FeatureOnly,
		Scores: map[string]float64{string(FeatureOffsetHeading): 0, string(FeatureOnly): 1},
	}, nil
}
