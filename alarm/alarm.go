// Package alarm compares per-frame observations against the configured
// thresholds and emits console warnings plus optional MQTT events.
package alarm

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/fortym2/HumanCount/config"
	"github.com/fortym2/HumanCount/geometry"
)

// Event types published on threshold breaches.
const (
	EventCount    = "count"
	EventDistance = "distance"
)

// Event is one threshold breach on one frame.
type Event struct {
	ID    string    `json:"id"`
	Type  string    `json:"type"`
	Value float64   `json:"value"`
	Limit float64   `json:"limit"`
	Frame int       `json:"frame"`
	Time  time.Time `json:"time"`
}

// Notifier delivers alarm events to an external sink.
type Notifier interface {
	Publish(ev Event) error
}

// Result reports which alarms fired for a frame, so the presentation
// layer can stamp the matching markers.
type Result struct {
	Count    bool
	Distance bool
}

// Evaluator holds the immutable thresholds and suppression flags.
type Evaluator struct {
	cfg             config.AlarmConfig
	disableCount    bool
	disableDistance bool
	notifier        Notifier

	countTotal    int
	distanceTotal int
}

// NewEvaluator builds an evaluator. The notifier may be nil.
func NewEvaluator(cfg config.AlarmConfig, disableCount, disableDistance bool, notifier Notifier) *Evaluator {
	return &Evaluator{
		cfg:             cfg,
		disableCount:    disableCount,
		disableDistance: disableDistance,
		notifier:        notifier,
	}
}

// Evaluate checks one frame's people count and pairwise distances.
// Each alarm fires at most once per frame. The distance alarm is
// skipped entirely when no distances were computed.
func (e *Evaluator) Evaluate(frame, peopleCount int, distances []float64) Result {
	var res Result

	if !e.disableCount && peopleCount > e.cfg.MaxPeople {
		log.Warnf("[People count alarm] Current: %d;\tmaximum allowed: %d",
			peopleCount, e.cfg.MaxPeople)
		e.countTotal++
		res.Count = true
		e.notify(Event{
			ID:    uuid.NewString(),
			Type:  EventCount,
			Value: float64(peopleCount),
			Limit: float64(e.cfg.MaxPeople),
			Frame: frame,
			Time:  time.Now(),
		})
	}

	if !e.disableDistance && len(distances) > 0 {
		if min, ok := geometry.Min(distances); ok && min < e.cfg.MinDistance {
			log.Warnf("[People distance alarm] Found: %.2f;\tminimum allowed: %v",
				min, e.cfg.MinDistance)
			e.distanceTotal++
			res.Distance = true
			e.notify(Event{
				ID:    uuid.NewString(),
				Type:  EventDistance,
				Value: min,
				Limit: e.cfg.MinDistance,
				Frame: frame,
				Time:  time.Now(),
			})
		}
	}

	return res
}

// Totals returns the cumulative count and distance alarm totals.
func (e *Evaluator) Totals() (count, distance int) {
	return e.countTotal, e.distanceTotal
}

// notify is fire-and-forget: a broken sink must not stall the loop.
func (e *Evaluator) notify(ev Event) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Publish(ev); err != nil {
		log.Warnf("alarm: could not publish %s event: %v", ev.Type, err)
	}
}
