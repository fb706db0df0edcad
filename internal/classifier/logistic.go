package classifier

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/smartride/ecodrive-service/internal/models"
)

// LogisticModel is a logistic regression over the standardized 8-feature
// vector. It stands in for the exported neural model on deployments where
// only the regression weights are shipped.
type LogisticModel struct {
	Weights [models.FeatureVectorSize]float64 `json:"weights"`
	Bias    float64                           `json:"bias"`

	// Per-feature standardization parameters from the training set
	Means   [models.FeatureVectorSize]float64 `json:"means"`
	StdDevs [models.FeatureVectorSize]float64 `json:"stdDevs"`
}

// DefaultLogisticModel returns a model with the training-set normalization
// constants and weights dominated by the magnitude and jerk features.
func DefaultLogisticModel() *LogisticModel {
	return &LogisticModel{
		Weights: [models.FeatureVectorSize]float64{0.21, -0.14, 0.08, 0.35, 0.41, 0.28, 1.62, 1.87},
		Bias:    -1.15,
		Means:   [models.FeatureVectorSize]float64{0.0404, -0.0734, 0.0082, 0.0015, -0.0013, 0.0079, 1.4378, 0.0002},
		StdDevs: [models.FeatureVectorSize]float64{0.9855, 0.9033, 0.9850, 0.0669, 0.1262, 0.1157, 0.8349, 0.9532},
	}
}

// LoadLogisticModel reads model weights from a JSON file.
func LoadLogisticModel(path string) (*LogisticModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	model := &LogisticModel{}
	if err := json.Unmarshal(data, model); err != nil {
		return nil, fmt.Errorf("failed to parse model file: %w", err)
	}

	for i, sd := range model.StdDevs {
		if sd == 0 {
			return nil, fmt.Errorf("model file has zero stddev for feature %d", i)
		}
	}

	return model, nil
}

// Predict implements Model.
func (m *LogisticModel) Predict(features []float64) (float64, error) {
	if len(features) != models.FeatureVectorSize {
		return 0, fmt.Errorf("expected %d features, got %d", models.FeatureVectorSize, len(features))
	}

	z := m.Bias
	for i, f := range features {
		z += m.Weights[i] * (f - m.Means[i]) / m.StdDevs[i]
	}

	return 1 / (1 + math.Exp(-z)), nil
}

// Close implements Model. The regression holds no resources.
func (m *LogisticModel) Close() error {
	return nil
}
