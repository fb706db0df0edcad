// Package speed converts raw geolocation fixes into a median-filtered speed
// and a moving/stationary state.
package speed

import (
	"log"
	"math"
	"sort"
	"time"

	"github.com/smartride/ecodrive-service/internal/models"
)

const (
	// DefaultMaxAccuracyM is the worst horizontal accuracy (meters) a fix
	// may have and still be used.
	DefaultMaxAccuracyM = 10.0

	// DefaultMinFixInterval is the minimum time between two fixes used for
	// a speed calculation.
	DefaultMinFixInterval = 200 * time.Millisecond

	// DefaultStationaryThresholdKmh is the speed below which the vehicle is
	// reported as stationary.
	DefaultStationaryThresholdKmh = 3.0

	// historySize is the number of instantaneous speeds kept for filtering.
	historySize = 5

	earthRadiusM = 6371000.0
)

// Estimator turns a stream of location fixes into filtered speed updates.
// It is not safe for concurrent use; the session aggregator serializes all
// calls onto a single goroutine.
type Estimator struct {
	maxAccuracyM   float64
	minInterval    time.Duration
	stationaryKmh  float64
	lastFix        *models.LocationFix
	readings       [historySize]float64 // instantaneous speeds in m/s
	readingIndex   int
	moving         bool
	currentSpeedMS float64
}

// NewEstimator creates an estimator with the given thresholds. Non-positive
// arguments fall back to the package defaults.
func NewEstimator(maxAccuracyM float64, minInterval time.Duration, stationaryKmh float64) *Estimator {
	if maxAccuracyM <= 0 {
		maxAccuracyM = DefaultMaxAccuracyM
	}
	if minInterval <= 0 {
		minInterval = DefaultMinFixInterval
	}
	if stationaryKmh <= 0 {
		stationaryKmh = DefaultStationaryThresholdKmh
	}
	return &Estimator{
		maxAccuracyM:  maxAccuracyM,
		minInterval:   minInterval,
		stationaryKmh: stationaryKmh,
	}
}

// OnFix processes one raw fix. It returns a speed update and true when the
// fix produced a new filtered speed; fixes that fail the accuracy or interval
// gates are discarded without touching any state relevant to filtering.
func (e *Estimator) OnFix(fix models.LocationFix) (models.SpeedUpdate, bool) {
	if fix.AccuracyM <= 0 || fix.AccuracyM > e.maxAccuracyM {
		log.Printf("speed: ignoring fix with poor accuracy: %.1fm", fix.AccuracyM)
		return models.SpeedUpdate{}, false
	}

	previous := e.lastFix
	if previous == nil {
		// First usable fix: remember it, nothing to compute yet.
		f := fix
		e.lastFix = &f
		return models.SpeedUpdate{}, false
	}

	elapsed := fix.Timestamp.Sub(previous.Timestamp)
	if elapsed < e.minInterval {
		// Too close to the previous fix. Keep the prior fix as reference
		// so a burst of near-simultaneous fixes cannot collapse the
		// interval to effectively zero.
		return models.SpeedUpdate{}, false
	}

	distanceM := haversineM(previous.Latitude, previous.Longitude, fix.Latitude, fix.Longitude)
	instantaneous := distanceM / elapsed.Seconds()

	e.readings[e.readingIndex] = instantaneous
	e.readingIndex = (e.readingIndex + 1) % historySize

	filtered := e.medianFilteredSpeed()
	kmh := filtered * 3.6

	if kmh < e.stationaryKmh {
		if e.moving {
			log.Printf("speed: below threshold (%d km/h), considering stationary", int(kmh))
			e.moving = false
		}
		e.currentSpeedMS = 0
	} else {
		if !e.moving {
			log.Printf("speed: above threshold (%d km/h), considering moving", int(kmh))
			e.moving = true
		}
		e.currentSpeedMS = filtered
	}

	f := fix
	e.lastFix = &f

	return models.SpeedUpdate{SpeedKmh: e.SpeedKmh(), Moving: e.moving}, true
}

// Reset clears all estimator state, for example when the location provider
// is disabled mid-session. It returns the zero-speed update that should be
// reported so consumers do not keep showing stale speed.
func (e *Estimator) Reset() models.SpeedUpdate {
	e.lastFix = nil
	e.readings = [historySize]float64{}
	e.readingIndex = 0
	e.currentSpeedMS = 0
	e.moving = false
	return models.SpeedUpdate{SpeedKmh: 0, Moving: false}
}

// SpeedKmh returns the current filtered speed in km/h.
func (e *Estimator) SpeedKmh() float64 {
	return e.currentSpeedMS * 3.6
}

// Moving reports whether the vehicle is currently considered moving.
func (e *Estimator) Moving() bool {
	return e.moving
}

// medianFilteredSpeed returns the median of the speed history buffer.
// With an even buffer size the two central values are averaged.
func (e *Estimator) medianFilteredSpeed() float64 {
	sorted := make([]float64, historySize)
	copy(sorted, e.readings[:])
	sort.Float64s(sorted)

	if historySize%2 == 0 {
		return (sorted[historySize/2-1] + sorted[historySize/2]) / 2
	}
	return sorted[historySize/2]
}

// haversineM returns the great-circle distance between two coordinates in meters.
func haversineM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusM * c
}
