// Package progress turns (completed, total, elapsed) counters into
// percentages, ETA estimates and human readable messages. It never blocks
// and has no say over the run it observes.
package progress

import (
	"fmt"
	"time"
)

// Estimator names
const (
	EstimatorCumulative = "cumulative"
	EstimatorSmoothed   = "smoothed"
)

// Event is one progress update
type Event struct {
	Completed int
	Total     int
	Percent   float64 // 0..1
	Elapsed   time.Duration
	ETA       time.Duration
	Message   string
}

// Done reports whether every task has been processed
func (e Event) Done() bool {
	return e.Completed >= e.Total
}

// Estimator derives the expected duration of one task
type Estimator interface {
	PerTask(completed int, elapsed time.Duration) time.Duration
}

// NewEstimator returns the named estimator
func NewEstimator(name string) (Estimator, error) {
	switch name {
	case EstimatorCumulative, "":
		return Cumulative{}, nil
	case EstimatorSmoothed:
		return NewSmoothed(DefaultAlpha), nil
	default:
		return nil, fmt.Errorf("unknown ETA estimator: %s", name)
	}
}

// Cumulative averages over the whole run: elapsed / completed
type Cumulative struct{}

func (Cumulative) PerTask(completed int, elapsed time.Duration) time.Duration {
	if completed <= 0 {
		return elapsed
	}
	return elapsed / time.Duration(completed)
}

// DefaultAlpha is the weight of the newest sample in Smoothed
const DefaultAlpha = 0.3

// Smoothed keeps an exponentially weighted average of per-task durations,
// so a slow language early on does not dominate the estimate for the rest
type Smoothed struct {
	alpha         float64
	avg           float64
	seeded        bool
	lastCompleted int
	lastElapsed   time.Duration
}

// NewSmoothed creates a smoothed estimator; alpha outside (0,1] falls back to DefaultAlpha
func NewSmoothed(alpha float64) *Smoothed {
	if alpha <= 0 || alpha > 1 {
		alpha = DefaultAlpha
	}
	return &Smoothed{alpha: alpha}
}

func (s *Smoothed) PerTask(completed int, elapsed time.Duration) time.Duration {
	if completed <= 0 {
		return elapsed
	}

	if completed > s.lastCompleted {
		sample := float64(elapsed-s.lastElapsed) / float64(completed-s.lastCompleted)
		if !s.seeded {
			s.avg = sample
			s.seeded = true
		} else {
			s.avg = s.alpha*sample + (1-s.alpha)*s.avg
		}
		s.lastCompleted = completed
		s.lastElapsed = elapsed
	}

	return time.Duration(s.avg)
}

// Reporter builds Events
type Reporter struct {
	estimator Estimator
}

// NewReporter creates a reporter; a nil estimator means Cumulative
func NewReporter(estimator Estimator) *Reporter {
	if estimator == nil {
		estimator = Cumulative{}
	}
	return &Reporter{estimator: estimator}
}

// Report derives percent and ETA. A run without tasks is complete.
func (r *Reporter) Report(completed, total int, elapsed time.Duration) Event {
	if total <= 0 {
		return Event{
			Percent: 1,
			Elapsed: elapsed,
			Message: "No translation tasks",
		}
	}

	if completed < 0 {
		completed = 0
	}
	if completed > total {
		completed = total
	}

	perTask := r.estimator.PerTask(completed, elapsed)
	eta := perTask * time.Duration(total-completed)

	e := Event{
		Completed: completed,
		Total:     total,
		Percent:   float64(completed) / float64(total),
		Elapsed:   elapsed,
		ETA:       eta,
	}
	e.Message = fmt.Sprintf("Translated %d of %d cells (%.0f%%), ETA %s",
		completed, total, e.Percent*100, FormatDuration(eta))
	return e
}

// FormatDuration renders d rounded to whole seconds
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return d.Round(time.Second).String()
}
