package speed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartride/ecodrive-service/internal/models"
)

// metersPerDegreeLat is the haversine distance of one degree of latitude.
const metersPerDegreeLat = earthRadiusM * 3.141592653589793 / 180

// fixAt builds a fix on the prime meridian at the given latitude offset.
func fixAt(latDeg float64, at time.Time) models.LocationFix {
	return models.LocationFix{
		Latitude:  latDeg,
		Longitude: 0,
		AccuracyM: 5,
		Timestamp: at,
	}
}

func TestMedianFilteredSpeed(t *testing.T) {
	e := NewEstimator(0, 0, 0)

	// 5-slot buffer always yields the true median of the recent speeds.
	e.readings = [historySize]float64{10, 20, 30, 40, 50}
	assert.Equal(t, 30.0, e.medianFilteredSpeed())

	// A single spike cannot dominate the filter.
	e.readings = [historySize]float64{10, 10, 500, 10, 10}
	assert.Equal(t, 10.0, e.medianFilteredSpeed())
}

func TestOnFixFirstFixEmitsNothing(t *testing.T) {
	e := NewEstimator(0, 0, 0)

	_, ok := e.OnFix(fixAt(0, time.Unix(1000, 0)))
	assert.False(t, ok, "first fix should only be stored")
}

func TestOnFixRejectsPoorAccuracy(t *testing.T) {
	e := NewEstimator(0, 0, 0)
	now := time.Unix(1000, 0)

	_, _ = e.OnFix(fixAt(0, now))

	bad := fixAt(0.001, now.Add(time.Second))
	bad.AccuracyM = 25
	_, ok := e.OnFix(bad)
	assert.False(t, ok)
	assert.Equal(t, [historySize]float64{}, e.readings, "rejected fix must not enter the history")

	// Missing accuracy is rejected the same way.
	bad.AccuracyM = 0
	_, ok = e.OnFix(bad)
	assert.False(t, ok)
}

func TestOnFixMinimumInterval(t *testing.T) {
	e := NewEstimator(0, 0, 0)
	start := time.Unix(1000, 0)

	_, _ = e.OnFix(fixAt(0, start))

	// 100ms later: below the minimum interval, discarded, and the first
	// fix stays as the reference point.
	_, ok := e.OnFix(fixAt(0.0001, start.Add(100*time.Millisecond)))
	assert.False(t, ok)

	// One second after the first fix: the elapsed time is measured against
	// the first fix, not the discarded one.
	target := 20.0 / metersPerDegreeLat // 20 m/s over 1s
	_, ok = e.OnFix(fixAt(target, start.Add(time.Second)))
	require.True(t, ok)
	assert.InDelta(t, 20.0, e.readings[0], 0.1, "instantaneous speed spans the full interval")
}

func TestOnFixComputesFilteredSpeed(t *testing.T) {
	e := NewEstimator(0, 0, 0)
	start := time.Unix(1000, 0)

	// Drive north at a constant 20 m/s (72 km/h), one fix per second.
	lat := 0.0
	_, _ = e.OnFix(fixAt(lat, start))
	var update models.SpeedUpdate
	var ok bool
	for i := 1; i <= 6; i++ {
		lat += 20.0 / metersPerDegreeLat
		update, ok = e.OnFix(fixAt(lat, start.Add(time.Duration(i)*time.Second)))
		require.True(t, ok)
	}

	assert.True(t, update.Moving)
	assert.InDelta(t, 72.0, update.SpeedKmh, 0.5)
}

func TestOnFixStationaryHysteresis(t *testing.T) {
	e := NewEstimator(0, 0, 0)
	start := time.Unix(1000, 0)

	// Creep at 0.5 m/s (1.8 km/h), below the 3 km/h stationary threshold.
	lat := 0.0
	_, _ = e.OnFix(fixAt(lat, start))
	var update models.SpeedUpdate
	var ok bool
	for i := 1; i <= 6; i++ {
		lat += 0.5 / metersPerDegreeLat
		update, ok = e.OnFix(fixAt(lat, start.Add(time.Duration(i)*time.Second)))
		require.True(t, ok)
	}

	assert.False(t, update.Moving)
	assert.Equal(t, 0.0, update.SpeedKmh, "stationary speed is reported as zero")
}

func TestReset(t *testing.T) {
	e := NewEstimator(0, 0, 0)
	start := time.Unix(1000, 0)

	lat := 0.0
	_, _ = e.OnFix(fixAt(lat, start))
	for i := 1; i <= 5; i++ {
		lat += 20.0 / metersPerDegreeLat
		_, _ = e.OnFix(fixAt(lat, start.Add(time.Duration(i)*time.Second)))
	}
	require.True(t, e.Moving())

	update := e.Reset()
	assert.Equal(t, models.SpeedUpdate{SpeedKmh: 0, Moving: false}, update)
	assert.Equal(t, [historySize]float64{}, e.readings)

	// The next fix resumes cleanly without using stale geometry.
	_, ok := e.OnFix(fixAt(lat+1, start.Add(time.Minute)))
	assert.False(t, ok, "fix after reset should only re-seed the reference point")
}

func TestHaversine(t *testing.T) {
	// One degree of latitude is ~111.2 km regardless of longitude.
	d := haversineM(0, 0, 1, 0)
	assert.InDelta(t, 111194.9, d, 1.0)

	assert.Equal(t, 0.0, haversineM(42.5, 23.3, 42.5, 23.3))
}
