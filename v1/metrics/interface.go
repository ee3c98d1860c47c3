package metrics

import "time"

// Recorder is the subset of *Metrics the harness reports into.
//
// This interface is implemented by the concrete *Metrics type and by Nop.
type Recorder interface {
	// ObserveProduceDuration records one produce-phase latency sample.
	ObserveProduceDuration(topic string, d time.Duration)

	// RecordCheck counts one verification check outcome.
	RecordCheck(name string, passed bool)

	// AddMessages counts produced or consumed messages.
	AddMessages(topic, direction string, n int)

	// RecordWorkerError counts a worker cycle aborted in the given phase.
	RecordWorkerError(phase string)
}

// Nop is a Recorder that drops everything.
type Nop struct{}

func (Nop) ObserveProduceDuration(string, time.Duration) {}
func (Nop) RecordCheck(string, bool)                     {}
func (Nop) AddMessages(string, string, int)              {}
func (Nop) RecordWorkerError(string)                     {}
