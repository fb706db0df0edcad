// Package session owns the driving-session lifecycle: it serializes all
// sensor events for one session onto a single goroutine, accumulates counts,
// speeds and motion history, and produces the final persisted record.
package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/smartride/ecodrive-service/internal/advisor"
	"github.com/smartride/ecodrive-service/internal/classifier"
	"github.com/smartride/ecodrive-service/internal/ecoscore"
	"github.com/smartride/ecodrive-service/internal/models"
	"github.com/smartride/ecodrive-service/internal/motion"
	"github.com/smartride/ecodrive-service/internal/repository"
	"github.com/smartride/ecodrive-service/internal/speed"
)

// ErrNoActiveSession is returned when End is called on a session that has
// already ended.
var ErrNoActiveSession = errors.New("no active session")

// DefaultMotionCap bounds the motion history kept for eco scoring; the
// oldest samples are evicted first.
const DefaultMotionCap = 1000

const eventBufferSize = 256

// Config holds the tunable pipeline thresholds for one session.
type Config struct {
	MotionCap              int
	StreakThreshold        int
	MaxAccuracyM           float64
	MinFixInterval         time.Duration
	StationaryThresholdKmh float64
}

// Update is one element of a session's output stream.
type Update struct {
	Speed *models.SpeedUpdate `json:"speed,omitempty"`
	Alert *advisor.Alert      `json:"alert,omitempty"`
}

// Snapshot is a point-in-time view of a running session, safe to read from
// any goroutine.
type Snapshot struct {
	ID              uuid.UUID `json:"id"`
	StartTime       time.Time `json:"startTime"`
	NormalCount     int       `json:"normalCount"`
	AggressiveCount int       `json:"aggressiveCount"`
	Streak          int       `json:"streak"`
	SpeedKmh        float64   `json:"speedKmh"`
	Moving          bool      `json:"moving"`
}

// EndResult is the outcome of ending a session. Persisted is false when the
// repository insert failed; the finalized record is still returned so the
// caller can retry persistence.
type EndResult struct {
	Session   models.DrivingSession
	Persisted bool
	// PersistErr holds the insert failure when Persisted is false
	PersistErr error
}

type event interface{}

type accelEvent struct{ reading models.AxisReading }
type gyroEvent struct{ reading models.AxisReading }
type fixEvent struct{ fix models.LocationFix }
type providerLostEvent struct{}

type endEvent struct {
	ctx  context.Context
	resp chan EndResult
}

// Aggregator runs one driving session. All mutating events are funneled
// through a single event channel and applied by one goroutine, which is the
// only writer of the session's state (counters, speed history, motion
// buffer). Ingestion never blocks: events arriving faster than the loop can
// drain them, or after the session ended, are dropped.
type Aggregator struct {
	id        uuid.UUID
	startTime time.Time
	cfg       Config

	repo      repository.SessionRepository
	adapter   *classifier.Adapter
	extractor *motion.Extractor
	estimator *speed.Estimator
	monitor   *advisor.Monitor

	events  chan event
	updates chan Update
	ended   atomic.Bool

	// loop-owned accumulation state
	normalCount     int
	aggressiveCount int
	maxSpeedKmh     float64
	movingSpeedSum  float64
	movingSamples   int
	magnitudes      []float64
	deltaMillis     []int64
	lastMotionAt    time.Time

	snapMu sync.RWMutex
	snap   Snapshot
}

// New creates a session aggregator and starts its event loop. The session is
// active immediately; the classifier adapter is owned by the session and
// released when it ends.
func New(cfg Config, repo repository.SessionRepository, adapter *classifier.Adapter, notifier advisor.Notifier) *Aggregator {
	if cfg.MotionCap <= 0 {
		cfg.MotionCap = DefaultMotionCap
	}

	a := &Aggregator{
		id:        uuid.New(),
		startTime: time.Now(),
		cfg:       cfg,
		repo:      repo,
		adapter:   adapter,
		extractor: motion.NewExtractor(),
		estimator: speed.NewEstimator(cfg.MaxAccuracyM, cfg.MinFixInterval, cfg.StationaryThresholdKmh),
		monitor:   advisor.NewMonitor(cfg.StreakThreshold, notifier),
		events:    make(chan event, eventBufferSize),
		updates:   make(chan Update, 16),
	}
	a.snap = Snapshot{ID: a.id, StartTime: a.startTime}

	// Checkpoint counters whenever an alert fires, so a crash between
	// alerts loses at most one stretch of counting.
	a.monitor.SetAlertHook(func(alert advisor.Alert) {
		log.Printf("session %s: checkpoint at alert: normal=%d aggressive=%d",
			a.id, a.normalCount, a.aggressiveCount)
		a.publish(Update{Alert: &alert})
	})

	log.Printf("session %s: started", a.id)
	go a.run()
	return a
}

// ID returns the session identifier.
func (a *Aggregator) ID() uuid.UUID {
	return a.id
}

// Updates returns the session's output stream of speed updates and fired
// alerts. The channel is closed when the session ends. Slow consumers miss
// updates rather than stalling ingestion.
func (a *Aggregator) Updates() <-chan Update {
	return a.updates
}

// Snapshot returns the current counters and speed.
func (a *Aggregator) Snapshot() Snapshot {
	a.snapMu.RLock()
	defer a.snapMu.RUnlock()
	return a.snap
}

// Active reports whether the session is still accepting events.
func (a *Aggregator) Active() bool {
	return !a.ended.Load()
}

// OnAccelerometer ingests one accelerometer reading. It reports whether the
// event was accepted.
func (a *Aggregator) OnAccelerometer(reading models.AxisReading) bool {
	return a.send(accelEvent{reading})
}

// OnGyroscope ingests one gyroscope reading.
func (a *Aggregator) OnGyroscope(reading models.AxisReading) bool {
	return a.send(gyroEvent{reading})
}

// OnLocationFix ingests one raw location fix.
func (a *Aggregator) OnLocationFix(fix models.LocationFix) bool {
	return a.send(fixEvent{fix})
}

// OnProviderDisabled signals that the location provider was lost; speed
// state is reset and a zero-speed update is emitted.
func (a *Aggregator) OnProviderDisabled() bool {
	return a.send(providerLostEvent{})
}

// End finalizes the session: it computes the eco score, persists the record,
// and stops the event loop. Events already queued are applied first; events
// arriving after End are dropped. Calling End on an ended session returns
// ErrNoActiveSession.
func (a *Aggregator) End(ctx context.Context) (EndResult, error) {
	// Flip the flag before queueing so late sensor callbacks are refused
	// immediately, even while the loop drains the backlog.
	if a.ended.Swap(true) {
		return EndResult{}, ErrNoActiveSession
	}

	resp := make(chan EndResult, 1)
	a.events <- endEvent{ctx: ctx, resp: resp}

	select {
	case result := <-resp:
		return result, nil
	case <-ctx.Done():
		return EndResult{}, ctx.Err()
	}
}

// send enqueues an event without ever blocking the caller.
func (a *Aggregator) send(ev event) bool {
	if a.ended.Load() {
		return false
	}
	select {
	case a.events <- ev:
		return true
	default:
		log.Printf("session %s: event buffer full, dropping event", a.id)
		return false
	}
}

// publish offers an update to the output stream, dropping it if the
// consumer is slow.
func (a *Aggregator) publish(u Update) {
	select {
	case a.updates <- u:
	default:
	}
}

// run is the single writer of all session state.
func (a *Aggregator) run() {
	for ev := range a.events {
		switch e := ev.(type) {
		case accelEvent:
			vector, ok := a.extractor.OnAccelerometer(e.reading.X, e.reading.Y, e.reading.Z)
			if ok {
				a.handleVector(vector, e.reading.Timestamp)
			}
		case gyroEvent:
			vector, ok := a.extractor.OnGyroscope(e.reading.X, e.reading.Y, e.reading.Z)
			if ok {
				a.handleVector(vector, e.reading.Timestamp)
			}
		case fixEvent:
			if update, ok := a.estimator.OnFix(e.fix); ok {
				a.handleSpeed(update)
			}
		case providerLostEvent:
			update := a.estimator.Reset()
			a.handleSpeed(update)
		case endEvent:
			e.resp <- a.finalize(e.ctx)
			return
		}
	}
}

// handleVector records the motion sample and classifies it.
func (a *Aggregator) handleVector(vector models.FeatureVector, at time.Time) {
	if at.IsZero() {
		at = time.Now()
	}
	a.recordMotion(vector[6], at)

	label, err := a.adapter.Predict(vector)
	if err != nil {
		// No label produced for this sample; counters stay untouched.
		log.Printf("session %s: skipping sample: %v", a.id, err)
		return
	}

	// Alert delivery and checkpointing happen inside the monitor hook.
	a.monitor.OnLabel(label)

	if label == models.LabelAggressive {
		a.aggressiveCount++
	} else {
		a.normalCount++
	}

	a.updateSnapshot(func(s *Snapshot) {
		s.NormalCount = a.normalCount
		s.AggressiveCount = a.aggressiveCount
		s.Streak = a.monitor.Streak()
	})
}

// recordMotion appends one acceleration magnitude and its inter-sample delta
// to the bounded eco-score history.
func (a *Aggregator) recordMotion(magnitude float64, at time.Time) {
	if !a.lastMotionAt.IsZero() {
		delta := at.Sub(a.lastMotionAt).Milliseconds()
		if delta < 0 {
			delta = 0
		}
		a.deltaMillis = append(a.deltaMillis, delta)
	}
	a.lastMotionAt = at

	a.magnitudes = append(a.magnitudes, magnitude)
	if len(a.magnitudes) > a.cfg.MotionCap {
		a.magnitudes = a.magnitudes[1:]
		a.deltaMillis = a.deltaMillis[1:]
	}
}

func (a *Aggregator) handleSpeed(update models.SpeedUpdate) {
	if update.Moving {
		if update.SpeedKmh > a.maxSpeedKmh {
			a.maxSpeedKmh = update.SpeedKmh
		}
		a.movingSpeedSum += update.SpeedKmh
		a.movingSamples++
	}

	a.updateSnapshot(func(s *Snapshot) {
		s.SpeedKmh = update.SpeedKmh
		s.Moving = update.Moving
	})
	a.publish(Update{Speed: &update})
}

func (a *Aggregator) updateSnapshot(mutate func(*Snapshot)) {
	a.snapMu.Lock()
	mutate(&a.snap)
	a.snapMu.Unlock()
}

// finalize builds the immutable session record, computes its eco score, and
// persists it. A persistence failure is reported in the result, never as a
// crash; the record is returned either way so the caller can retry.
func (a *Aggregator) finalize(ctx context.Context) EndResult {
	endTime := time.Now()

	avgSpeed := 0.0
	if a.movingSamples > 0 {
		avgSpeed = a.movingSpeedSum / float64(a.movingSamples)
	}

	score := ecoscore.Compute(ecoscore.Inputs{
		Magnitudes:      a.magnitudes,
		DeltaMillis:     a.deltaMillis,
		AggressiveCount: a.aggressiveCount,
		TotalCount:      a.normalCount + a.aggressiveCount,
	})

	record := models.DrivingSession{
		ID:              a.id,
		Date:            a.startTime.Format("2006-01-02"),
		StartTime:       a.startTime,
		EndTime:         endTime,
		DurationMinutes: endTime.Sub(a.startTime).Minutes(),
		MaxSpeedKmh:     a.maxSpeedKmh,
		AvgSpeedKmh:     avgSpeed,
		AggressiveCount: a.aggressiveCount,
		NormalCount:     a.normalCount,
		EcoScore:        score,
	}

	result := EndResult{Session: record, Persisted: true}
	if err := a.repo.Insert(ctx, &record); err != nil {
		log.Printf("session %s: failed to persist session: %v", a.id, err)
		result.Persisted = false
		result.PersistErr = err
	} else {
		log.Printf("session %s: ended after %.1f minutes, eco score %d",
			a.id, record.DurationMinutes, score)
	}

	if err := a.adapter.Close(); err != nil {
		log.Printf("session %s: failed to release classifier: %v", a.id, err)
	}
	close(a.updates)

	// Discard the transient eco-score inputs; the record is all that remains.
	a.magnitudes = nil
	a.deltaMillis = nil

	return result
}
