// Package advisor tracks consecutive aggressive classifications and fires
// calming advisory alerts when the streak crosses its threshold.
package advisor

import (
	"log"
	"math/rand"
	"time"

	"github.com/smartride/ecodrive-service/internal/models"
)

// DefaultStreakThreshold is the number of consecutive aggressive labels that
// triggers an alert.
const DefaultStreakThreshold = 5

// AlertTitle is the title delivered with every advisory alert.
const AlertTitle = "Aggressive Driving"

// defaultAdvice is the pool of rotating advisory messages.
var defaultAdvice = []string{
	"Let's have a cup of coffee, shall we?",
	"Take a deep breath, think of your loved ones, and relax while driving.",
	"Nothing to hurry for, sit back and drive safely!",
	"It's a beautiful day! Enjoy it with calm driving.",
	"Stay safe! Aggressive driving isn't worth it.",
	"Relax, the destination isn't running away!",
}

// Notifier delivers an advisory alert to the driver. Delivery failures are
// not the monitor's concern and never affect its state.
type Notifier interface {
	Notify(title, message string) error
}

// Alert describes one fired advisory.
type Alert struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Monitor is the aggression state machine for a single session. It counts
// consecutive aggressive labels, resets on a normal label, and fires exactly
// one alert per threshold crossing; the reset back to zero after firing is
// the only cooldown. Not safe for concurrent use; the session aggregator
// serializes calls.
type Monitor struct {
	threshold int
	notifier  Notifier

	advice          []string
	lastAdviceIndex int
	rng             *rand.Rand

	streak int

	// onAlert, when set, is invoked after every alert so the owner can
	// checkpoint its counters.
	onAlert func(Alert)
}

// NewMonitor creates a monitor that delivers alerts through notifier.
// A nil notifier is valid; alerts are then only logged.
func NewMonitor(threshold int, notifier Notifier) *Monitor {
	if threshold <= 0 {
		threshold = DefaultStreakThreshold
	}
	return &Monitor{
		threshold:       threshold,
		notifier:        notifier,
		advice:          defaultAdvice,
		lastAdviceIndex: -1,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetAlertHook registers a callback invoked after each fired alert.
func (m *Monitor) SetAlertHook(hook func(Alert)) {
	m.onAlert = hook
}

// setRandSource replaces the rotation source, for deterministic tests.
func (m *Monitor) setRandSource(src rand.Source) {
	m.rng = rand.New(src)
}

// OnLabel feeds one classification result. It returns the fired alert and
// true when this label completed a threshold crossing.
func (m *Monitor) OnLabel(label models.Label) (Alert, bool) {
	if label == models.LabelAggressive {
		return m.onAggressive()
	}
	m.onNormal()
	return Alert{}, false
}

// Streak returns the current count of trailing consecutive aggressive labels.
func (m *Monitor) Streak() int {
	return m.streak
}

func (m *Monitor) onAggressive() (Alert, bool) {
	m.streak++
	log.Printf("advisor: consecutive aggressive count: %d", m.streak)

	if m.streak < m.threshold {
		return Alert{}, false
	}

	alert := Alert{Title: AlertTitle, Message: m.nextAdvice()}
	log.Printf("advisor: %d consecutive aggressive predictions, triggering alert: %s", m.threshold, alert.Message)

	if m.notifier != nil {
		if err := m.notifier.Notify(alert.Title, alert.Message); err != nil {
			log.Printf("advisor: failed to deliver alert: %v", err)
		}
	}
	if m.onAlert != nil {
		m.onAlert(alert)
	}

	m.streak = 0
	return alert, true
}

func (m *Monitor) onNormal() {
	if m.streak > 0 {
		log.Printf("advisor: normal driving detected, resetting consecutive aggressive count from %d to 0", m.streak)
		m.streak = 0
	}
}

// nextAdvice picks a random advisory, never repeating the immediately
// previous one unless only a single message exists.
func (m *Monitor) nextAdvice() string {
	if len(m.advice) == 1 {
		return m.advice[0]
	}

	index := m.rng.Intn(len(m.advice))
	for index == m.lastAdviceIndex {
		index = m.rng.Intn(len(m.advice))
	}
	m.lastAdviceIndex = index
	return m.advice[index]
}
