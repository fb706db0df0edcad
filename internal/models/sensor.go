package models

import "time"

// FeatureVectorSize is the fixed input width of the behavior classifier.
// The vector layout is [accX, accY, accZ, gyroX, gyroY, gyroZ, magnitude, jerk].
const FeatureVectorSize = 8

// FeatureVector is the per-sample input handed to the classifier.
// It must always have exactly FeatureVectorSize elements; the classifier
// adapter rejects any other length.
type FeatureVector []float64

// Valid reports whether the vector has the required length.
func (v FeatureVector) Valid() bool {
	return len(v) == FeatureVectorSize
}

// Label is the classifier's verdict for a single sensor sample.
type Label int

const (
	// LabelNormal indicates normal driving behavior
	LabelNormal Label = iota

	// LabelAggressive indicates aggressive driving behavior
	LabelAggressive
)

// String returns a human-readable label name.
func (l Label) String() string {
	if l == LabelAggressive {
		return "Aggressive"
	}
	return "Normal"
}

// AxisReading is a single 3-axis sensor reading (accelerometer or gyroscope).
type AxisReading struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`

	// Sample timestamp; the server receipt time is used when zero
	Timestamp time.Time `json:"timestamp"`
}

// LocationFix is a raw geolocation fix from the phone's location provider.
type LocationFix struct {
	// Latitude in degrees
	Latitude float64 `json:"latitude"`

	// Longitude in degrees
	Longitude float64 `json:"longitude"`

	// Horizontal accuracy in meters; fixes without a positive accuracy
	// estimate are discarded
	AccuracyM float64 `json:"accuracy"`

	// Fix timestamp
	Timestamp time.Time `json:"timestamp"`
}

// SpeedUpdate is the speed estimator's filtered output for one accepted fix.
type SpeedUpdate struct {
	// Median-filtered speed in km/h (0 while stationary)
	SpeedKmh float64 `json:"speedKmh"`

	// Whether the vehicle is considered to be moving
	Moving bool `json:"moving"`
}
