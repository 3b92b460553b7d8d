// Package report records pipeline failures and renders them for CI logs.
//
// Install and verify steps never unwind the caller on failure. They record a
// Failure into an Outcome that is threaded through the call chain, and the
// CLI decides the process exit status from Outcome.Failed once every step
// has run.
package report

import (
	"fmt"
	"strings"
	"sync"
)

// Step names the pipeline stage a failure came from.
type Step string

const (
	StepConfig         Step = "config"
	StepFetch          Step = "fetch"
	StepInstallSDK     Step = "install-sdk"
	StepInstallRuntime Step = "install-runtime"
	StepVerifySDK      Step = "verify-sdk"
	StepVerifyRuntime  Step = "verify-runtime"
)

// Failure is one fatal problem recorded during a run.
type Failure struct {
	Step    Step   `yaml:"step"`
	Message string `yaml:"message"`
	// Detail is Err's text, kept for the summary file.
	Detail string `yaml:"detail,omitempty"`
	Err    error  `yaml:"-"`
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Step, f.Text())
}

// Text is the message followed by the cause, if any. A trailing period on
// the message is dropped before the cause is appended.
func (f Failure) Text() string {
	if f.Err == nil {
		return f.Message
	}
	return fmt.Sprintf("%s: %v", strings.TrimSuffix(f.Message, "."), f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Sink receives failures as they are recorded.
type Sink interface {
	Fatal(f Failure)
}

// Outcome accumulates failures for a run. The zero value is usable and has
// no sink.
type Outcome struct {
	mu       sync.Mutex
	sink     Sink
	failures []Failure
}

// NewOutcome returns an Outcome forwarding each failure to sink. sink may be nil.
func NewOutcome(sink Sink) *Outcome {
	return &Outcome{sink: sink}
}

// Fatal records a failure and marks the run as failed. It does not interrupt
// the caller.
func (o *Outcome) Fatal(step Step, message string, err error) {
	f := Failure{Step: step, Message: message, Err: err}
	if err != nil {
		f.Detail = err.Error()
	}

	o.mu.Lock()
	o.failures = append(o.failures, f)
	sink := o.sink
	o.mu.Unlock()

	if sink != nil {
		sink.Fatal(f)
	}
}

// Failed reports whether any failure was recorded.
func (o *Outcome) Failed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.failures) > 0
}

// Failures returns a copy of the recorded failures in order.
func (o *Outcome) Failures() []Failure {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Failure, len(o.failures))
	copy(out, o.failures)
	return out
}

// Count returns the number of failures recorded for step.
func (o *Outcome) Count(step Step) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, f := range o.failures {
		if f.Step == step {
			n++
		}
	}
	return n
}
