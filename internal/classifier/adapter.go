// Package classifier wraps an opaque driving-behavior model behind a
// shape-validating adapter that produces Normal/Aggressive labels.
package classifier

import (
	"errors"
	"fmt"

	"github.com/smartride/ecodrive-service/internal/models"
)

var (
	// ErrBadShape is returned when the feature vector does not have
	// exactly models.FeatureVectorSize elements.
	ErrBadShape = errors.New("feature vector must have exactly 8 elements")

	// ErrPrediction is returned when the underlying model fails or
	// produces a probability outside [0,1].
	ErrPrediction = errors.New("prediction failed")
)

// aggressiveThreshold is the probability at or above which a sample is
// labeled aggressive.
const aggressiveThreshold = 0.5

// Model is an opaque binary classifier. Predict takes an 8-float feature
// vector and returns the probability of aggressive driving in [0,1].
type Model interface {
	Predict(features []float64) (float64, error)
	Close() error
}

// ModelFunc adapts a plain function to the Model interface.
type ModelFunc func(features []float64) (float64, error)

// Predict implements Model.
func (f ModelFunc) Predict(features []float64) (float64, error) {
	return f(features)
}

// Close implements Model. It is a no-op.
func (f ModelFunc) Close() error {
	return nil
}

// Adapter validates feature vectors, invokes the model, and thresholds its
// scalar output into a label. A session owns one adapter; its lifetime ends
// with the session.
type Adapter struct {
	model Model
}

// NewAdapter wraps the given model.
func NewAdapter(model Model) *Adapter {
	return &Adapter{model: model}
}

// Predict classifies one feature vector. On any failure the error is
// returned as a value and callers must treat the sample as producing no
// label: no counters advance, the session continues.
func (a *Adapter) Predict(v models.FeatureVector) (models.Label, error) {
	if !v.Valid() {
		return 0, fmt.Errorf("%w: got %d", ErrBadShape, len(v))
	}

	probability, err := a.model.Predict(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrPrediction, err)
	}
	if probability < 0 || probability > 1 {
		return 0, fmt.Errorf("%w: probability %v out of range", ErrPrediction, probability)
	}

	if probability >= aggressiveThreshold {
		return models.LabelAggressive, nil
	}
	return models.LabelNormal, nil
}

// Close releases the underlying model.
func (a *Adapter) Close() error {
	return a.model.Close()
}
