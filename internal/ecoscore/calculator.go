// Package ecoscore computes the composite 0-100 eco score for a driving
// session from its motion history and classification counts.
package ecoscore

import "math"

const (
	// SmoothDrivingThreshold is the jerk level (m/s³) used to scale the
	// smoothness sub-score.
	SmoothDrivingThreshold = 1.5

	// AccelerationSpikeThreshold is the acceleration magnitude (m/s²)
	// above which a sample counts as a spike.
	AccelerationSpikeThreshold = 3.0

	// MinFullModeSamples is the minimum number of magnitude samples
	// required for the full-mode score.
	MinFullModeSamples = 11

	maxSmoothnessScore = 30.0
	maxSpikeScore      = 30.0
	maxAggressionScore = 30.0
	zeroAggressionBonus = 10.0
)

// Inputs is the motion history and classification tally accumulated over a
// session. Magnitudes holds acceleration magnitudes in sample order;
// DeltaMillis holds the inter-sample gaps, so len(DeltaMillis) is expected
// to be len(Magnitudes)-1.
type Inputs struct {
	Magnitudes  []float64
	DeltaMillis []int64

	AggressiveCount int
	TotalCount      int
}

// Compute returns the session's eco score in [0,100]. When fewer than
// MinFullModeSamples magnitude samples are available it falls back to the
// simplified score, which is also the path for historical records that were
// stored without motion data.
func Compute(in Inputs) int {
	if len(in.Magnitudes) < MinFullModeSamples {
		return ComputeSimplified(in.AggressiveCount, in.TotalCount)
	}

	smoothness := smoothnessScore(jerkValues(in.Magnitudes, in.DeltaMillis))
	spikes := spikeScore(in.Magnitudes, in.DeltaMillis)
	aggression := aggressionScore(in.AggressiveCount, in.TotalCount)
	bonus := bonusScore(in.AggressiveCount, in.TotalCount)

	// Maximum possible is 30+30+30+10 = 100. Truncate toward zero, never round.
	return clampScore(int(smoothness + spikes + aggression + bonus))
}

// ComputeSimplified scores a session from classification counts alone. The
// aggression sub-score carries triple weight (max 90) plus the same bonus.
func ComputeSimplified(aggressiveCount, totalCount int) int {
	score := aggressionScore(aggressiveCount, totalCount)*3 + bonusScore(aggressiveCount, totalCount)
	return clampScore(int(score))
}

// jerkValues derives the jerk series (m/s³) from consecutive magnitude
// differences divided by the inter-sample delta time. Non-positive deltas
// are skipped.
func jerkValues(magnitudes []float64, deltaMillis []int64) []float64 {
	if len(magnitudes) <= 1 || len(deltaMillis) < len(magnitudes)-1 {
		return nil
	}

	jerks := make([]float64, 0, len(magnitudes)-1)
	for i := 1; i < len(magnitudes); i++ {
		deltaSec := float64(deltaMillis[i-1]) / 1000
		if deltaSec > 0 {
			jerks = append(jerks, (magnitudes[i]-magnitudes[i-1])/deltaSec)
		}
	}
	return jerks
}

// smoothnessScore maps mean absolute jerk linearly onto [0,30]: zero jerk
// scores 30, jerk at or above twice the smooth-driving threshold scores 0.
func smoothnessScore(jerks []float64) float64 {
	if len(jerks) == 0 {
		return 0
	}

	var sum float64
	for _, j := range jerks {
		sum += math.Abs(j)
	}
	avgJerk := sum / float64(len(jerks))

	return (1 - clampUnit(avgJerk/(2*SmoothDrivingThreshold))) * maxSmoothnessScore
}

// spikeScore maps the spike rate (spikes per minute) linearly onto [0,30]:
// zero spikes score 30, ten or more spikes per minute score 0.
func spikeScore(magnitudes []float64, deltaMillis []int64) float64 {
	if len(magnitudes) == 0 || len(deltaMillis) == 0 {
		return 0
	}

	spikeCount := 0
	for _, m := range magnitudes {
		if m > AccelerationSpikeThreshold {
			spikeCount++
		}
	}

	var totalMillis int64
	for _, d := range deltaMillis {
		totalMillis += d
	}
	totalSeconds := float64(totalMillis) / 1000

	var spikeRate float64
	if totalSeconds > 0 {
		spikeRate = float64(spikeCount) / (totalSeconds / 60)
	}

	return (1 - clampUnit(spikeRate/10)) * maxSpikeScore
}

// aggressionScore maps the aggression percentage linearly onto [0,30]:
// 0% scores 30, 100% or more scores exactly 0.
func aggressionScore(aggressiveCount, totalCount int) float64 {
	if totalCount == 0 {
		return 0
	}

	percentage := float64(aggressiveCount) / float64(totalCount) * 100
	return (1 - clampUnit(percentage/100)) * maxAggressionScore
}

func bonusScore(aggressiveCount, totalCount int) float64 {
	if aggressiveCount == 0 && totalCount > 0 {
		return zeroAggressionBonus
	}
	return 0
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
