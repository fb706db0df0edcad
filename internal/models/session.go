// Package models contains data models for the EcoDrive service.
package models

import (
	"time"

	"github.com/google/uuid"
)

// DrivingSession represents one recorded drive from start to end.
// It is created with zeroed counters when a session starts, mutated only by
// the session aggregator while the session is active, and finalized exactly
// once when the session ends. After that it is immutable.
type DrivingSession struct {
	// Unique session identifier
	ID uuid.UUID `json:"id"`

	// Calendar date of the drive (YYYY-MM-DD)
	Date string `json:"date"`

	// Wall-clock start of the session
	StartTime time.Time `json:"startTime"`

	// Wall-clock end of the session (zero while active)
	EndTime time.Time `json:"endTime"`

	// Total session duration in minutes
	DurationMinutes float64 `json:"durationMinutes"`

	// Highest filtered speed observed, in km/h
	MaxSpeedKmh float64 `json:"maxSpeedKmh"`

	// Average filtered speed while moving, in km/h
	AvgSpeedKmh float64 `json:"avgSpeedKmh"`

	// Number of samples classified as aggressive
	AggressiveCount int `json:"aggressiveCount"`

	// Number of samples classified as normal
	NormalCount int `json:"normalCount"`

	// Composite eco score in [0,100], 100 being the most eco-friendly
	EcoScore int `json:"ecoScore"`
}

// TotalPredictions returns the total number of classified samples.
func (s *DrivingSession) TotalPredictions() int {
	return s.NormalCount + s.AggressiveCount
}
