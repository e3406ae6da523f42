// Package counters reads hardware performance counters around single
// invocations of the function under test.
package counters

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"parallel-bench/internal/logging"

	"github.com/elastic/go-perf"
	"github.com/sirupsen/logrus"
)

// Sample holds counter deltas over one measured interval.
type Sample struct {
	Instructions uint64
	Cycles       uint64
	CacheMisses  uint64
}

func (s *Sample) Add(o Sample) {
	s.Instructions += o.Instructions
	s.Cycles += o.Cycles
	s.CacheMisses += o.CacheMisses
}

// Div returns the per-invocation mean over n samples.
func (s Sample) Div(n int) Sample {
	if n <= 0 {
		return Sample{}
	}
	d := uint64(n)
	return Sample{
		Instructions: s.Instructions / d,
		Cycles:       s.Cycles / d,
		CacheMisses:  s.CacheMisses / d,
	}
}

type eventState struct {
	value   uint64
	enabled time.Duration
	running time.Duration
}

type counterEvent struct {
	counter perf.HardwareCounter
	event   *perf.Event
	start   eventState
}

var measured = []perf.HardwareCounter{
	perf.Instructions,
	perf.CPUCycles,
	perf.CacheMisses,
}

// Set counts user-space events for every thread of this process. Events
// are opened with inherit so threads the runtime starts later are counted
// too.
type Set struct {
	events []*counterEvent
	mutex  sync.Mutex
}

// Open attaches the counters to every existing thread of the process. It
// fails when perf events are not permitted, which callers treat as
// counters being unavailable.
func Open() (*Set, error) {
	logger := logging.GetLogger()

	tids, err := threadIDs()
	if err != nil {
		return nil, err
	}

	set := &Set{}
	for _, tid := range tids {
		for _, counter := range measured {
			attr := &perf.Attr{}
			counter.Configure(attr)
			attr.CountFormat.Enabled = true
			attr.CountFormat.Running = true
			attr.Options.Inherit = true
			attr.Options.ExcludeKernel = true
			attr.Options.ExcludeHypervisor = true

			event, err := perf.Open(attr, tid, perf.AnyCPU, nil)
			if err != nil {
				set.Close()
				logger.WithFields(logrus.Fields{
					"counter": counter.String(),
					"tid":     tid,
				}).WithError(err).Debug("Failed to open perf event")
				return nil, fmt.Errorf("opening %s counter: %w", counter, err)
			}
			set.events = append(set.events, &counterEvent{counter: counter, event: event})
		}
	}

	for _, ce := range set.events {
		if err := ce.event.Enable(); err != nil {
			set.Close()
			return nil, fmt.Errorf("failed to enable perf event: %w", err)
		}
	}

	logger.WithFields(logrus.Fields{
		"threads": len(tids),
		"events":  len(set.events),
	}).Debug("Hardware counters opened")
	return set, nil
}

func threadIDs() ([]int, error) {
	entries, err := os.ReadDir("/proc/self/task")
	if err != nil {
		return nil, fmt.Errorf("listing process threads: %w", err)
	}
	tids := make([]int, 0, len(entries))
	for _, e := range entries {
		tid, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		tids = append(tids, tid)
	}
	return tids, nil
}

// Start records the baseline for the next Stop.
func (s *Set) Start() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, ce := range s.events {
		count, err := ce.event.ReadCount()
		if err != nil {
			return err
		}
		ce.start = eventState{value: count.Value, enabled: count.Enabled, running: count.Running}
	}
	return nil
}

// Stop returns the counts accumulated since Start, corrected for
// multiplexing.
func (s *Set) Stop() (Sample, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	var sample Sample
	for _, ce := range s.events {
		count, err := ce.event.ReadCount()
		if err != nil {
			return Sample{}, err
		}
		delta := scaled(
			count.Value-ce.start.value,
			count.Enabled-ce.start.enabled,
			count.Running-ce.start.running,
		)
		switch ce.counter {
		case perf.Instructions:
			sample.Instructions += delta
		case perf.CPUCycles:
			sample.Cycles += delta
		case perf.CacheMisses:
			sample.CacheMisses += delta
		}
	}
	return sample, nil
}

// scaled extrapolates a delta to the full enabled time when the kernel
// multiplexed the counter.
func scaled(value uint64, enabled, running time.Duration) uint64 {
	if running > 0 && enabled > 0 && running != enabled {
		return uint64(float64(value) * float64(enabled) / float64(running))
	}
	return value
}

func (s *Set) Close() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, ce := range s.events {
		if ce.event != nil {
			ce.event.Close()
		}
	}
	s.events = nil
}
