// Package motion derives classifier feature vectors from raw accelerometer
// and gyroscope readings.
package motion

import (
	"math"

	"github.com/smartride/ecodrive-service/internal/models"
)

// Extractor pairs the most recent accelerometer and gyroscope readings into
// an 8-float feature vector: [accX, accY, accZ, gyroX, gyroY, gyroZ,
// magnitude, jerk].
//
// Only the latest reading per sensor is retained. When one sensor reports
// less frequently than the other, its stale reading is knowingly paired with
// multiple fresh readings from the faster sensor until it updates again.
// Not safe for concurrent use; the session aggregator serializes calls.
type Extractor struct {
	lastAcc  *[3]float64
	lastGyro *[3]float64

	prevMagnitude float64
	hasPrev       bool
}

// NewExtractor creates an empty extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// OnAccelerometer records an accelerometer reading. It returns a feature
// vector and true once readings from both sensors are available.
func (e *Extractor) OnAccelerometer(x, y, z float64) (models.FeatureVector, bool) {
	e.lastAcc = &[3]float64{x, y, z}
	return e.emitIfComplete()
}

// OnGyroscope records a gyroscope reading. It returns a feature vector and
// true once readings from both sensors are available.
func (e *Extractor) OnGyroscope(x, y, z float64) (models.FeatureVector, bool) {
	e.lastGyro = &[3]float64{x, y, z}
	return e.emitIfComplete()
}

// Reset discards all retained readings and the previous magnitude.
func (e *Extractor) Reset() {
	e.lastAcc = nil
	e.lastGyro = nil
	e.prevMagnitude = 0
	e.hasPrev = false
}

func (e *Extractor) emitIfComplete() (models.FeatureVector, bool) {
	acc := e.lastAcc
	gyro := e.lastGyro
	if acc == nil || gyro == nil {
		return nil, false
	}

	magnitude := math.Sqrt(acc[0]*acc[0] + acc[1]*acc[1] + acc[2]*acc[2])

	// Jerk is the change in magnitude since the previous emitted vector,
	// zero for the very first one.
	var jerk float64
	if e.hasPrev {
		jerk = magnitude - e.prevMagnitude
	}
	e.prevMagnitude = magnitude
	e.hasPrev = true

	return models.FeatureVector{
		acc[0], acc[1], acc[2],
		gyro[0], gyro[1], gyro[2],
		magnitude, jerk,
	}, true
}
