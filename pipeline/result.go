package pipeline

import (
	"time"
)

// Status of a finished run.
type Status string

const (
	// StatusCompleted means every step ran, regardless of individual outcomes.
	StatusCompleted Status = "completed"
	// StatusAborted means an abort-policy failure or an interrupt halted the
	// run before the remaining steps could execute.
	StatusAborted Status = "aborted"
)

// Result is the recorded outcome of one executed step. Results are
// append-only and never mutated once recorded. ExitCode is nil for
// natively executed actions that spawn no process.
type Result struct {
	StepName  string    `yaml:"step"`
	Succeeded bool      `yaml:"succeeded"`
	Skipped   bool      `yaml:"skipped,omitempty"`
	Reason    string    `yaml:"reason,omitempty"`
	ExitCode  *int      `yaml:"exitCode,omitempty"`
	Stdout    string    `yaml:"-"`
	Stderr    string    `yaml:"-"`
	StartedAt time.Time `yaml:"startedAt"`
	EndedAt   time.Time `yaml:"endedAt"`
}

func (r Result) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// Run records one execution of an ordered list of steps. Results is always
// a prefix of Steps in execution order.
type Run struct {
	Steps       []Step    `yaml:"-"`
	Results     []Result  `yaml:"steps"`
	Status      Status    `yaml:"status"`
	Interrupted bool      `yaml:"interrupted,omitempty"`
	StartedAt   time.Time `yaml:"startedAt"`
	EndedAt     time.Time `yaml:"endedAt"`
}

// Succeeded returns the count of steps that ran and succeeded
func (r *Run) Succeeded() int {
	var n int
	for _, res := range r.Results {
		if res.Succeeded && !res.Skipped {
			n++
		}
	}
	return n
}

// Failed returns the count of steps that ran and failed
func (r *Run) Failed() int {
	var n int
	for _, res := range r.Results {
		if !res.Succeeded {
			n++
		}
	}
	return n
}

// Skipped returns the count of steps that were skipped
func (r *Run) Skipped() int {
	var n int
	for _, res := range r.Results {
		if res.Skipped {
			n++
		}
	}
	return n
}
