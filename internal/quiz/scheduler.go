package quiz

import "time"

// Task is a delayed callback that can be cancelled before it fires.
type Task interface {
	// Stop prevents the task from firing. It reports false if the task
	// already fired or was stopped.
	Stop() bool
}

// Scheduler runs callbacks after a delay. Sessions drive every timed
// transition through one so that Close can cancel what is pending.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Task
}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Task {
	return time.AfterFunc(d, f)
}

// SystemScheduler uses the runtime timers.
var SystemScheduler Scheduler = systemScheduler{}

// Timing holds the two UX delays of a session.
type Timing struct {
	// AdvanceDelay is how long the explanation stays visible before the
	// next question (or the scoring step) is shown.
	AdvanceDelay time.Duration
	// CompletionDelay separates scoring the last answer from the summary.
	CompletionDelay time.Duration
}

// DefaultTiming mirrors the pacing of the web client.
var DefaultTiming = Timing{
	AdvanceDelay:    2000 * time.Millisecond,
	CompletionDelay: 1000 * time.Millisecond,
}
