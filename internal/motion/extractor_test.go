package motion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoVectorUntilBothSensorsReport(t *testing.T) {
	e := NewExtractor()

	_, ok := e.OnAccelerometer(1, 2, 3)
	assert.False(t, ok, "accelerometer alone should not emit")

	v, ok := e.OnGyroscope(0.1, 0.2, 0.3)
	require.True(t, ok)
	require.Len(t, v, 8)
}

func TestVectorLayoutAndMagnitude(t *testing.T) {
	e := NewExtractor()

	_, _ = e.OnGyroscope(0.1, 0.2, 0.3)
	v, ok := e.OnAccelerometer(3, 4, 0)
	require.True(t, ok)

	assert.Equal(t, []float64{3, 4, 0}, []float64(v[0:3]))
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, []float64(v[3:6]))
	assert.InDelta(t, 5.0, v[6], 1e-9, "magnitude is the euclidean norm of acceleration")
	assert.Equal(t, 0.0, v[7], "first vector has zero jerk")
}

func TestJerkIsMagnitudeDelta(t *testing.T) {
	e := NewExtractor()

	_, _ = e.OnGyroscope(0, 0, 0)
	_, _ = e.OnAccelerometer(3, 4, 0) // magnitude 5
	v, ok := e.OnAccelerometer(6, 8, 0) // magnitude 10
	require.True(t, ok)

	assert.InDelta(t, 5.0, v[7], 1e-9)
}

func TestStaleGyroIsReused(t *testing.T) {
	e := NewExtractor()

	_, _ = e.OnGyroscope(0.5, 0.5, 0.5)

	// Multiple accelerometer readings pair with the same gyro reading.
	for i := 0; i < 3; i++ {
		v, ok := e.OnAccelerometer(float64(i), 0, 0)
		require.True(t, ok)
		assert.Equal(t, []float64{0.5, 0.5, 0.5}, []float64(v[3:6]))
	}
}

func TestReset(t *testing.T) {
	e := NewExtractor()

	_, _ = e.OnGyroscope(0, 0, 0)
	_, _ = e.OnAccelerometer(3, 4, 0)

	e.Reset()

	_, ok := e.OnAccelerometer(1, 0, 0)
	assert.False(t, ok, "reset requires both sensors to report again")

	_, _ = e.OnGyroscope(0, 0, 0)
	v, ok := e.OnAccelerometer(1, 0, 0)
	require.True(t, ok)
	assert.Equal(t, 0.0, v[7], "jerk restarts at zero after reset")
}
