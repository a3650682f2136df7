package core

import (
	"sort"
	"time"
)

const AVG_COUNT uint8 = 30

// OperationStats accumulates timings for one kind of operation.
type OperationStats struct {
	Count    int
	Failures int
	// Last AVG_COUNT durations, used for the moving average.
	times   [AVG_COUNT]time.Duration
	counter uint8
	filled  uint8
}

// Average is the mean of the most recent durations.
func (s *OperationStats) Average() time.Duration {
	if s.filled == 0 {
		return 0
	}
	var total time.Duration
	for i := uint8(0); i < s.filled; i++ {
		total += s.times[i]
	}
	return total / time.Duration(s.filled)
}

// Metrics keeps per-operation counters. It is not safe for concurrent use.
type Metrics struct {
	ops map[string]*OperationStats
}

func NewMetrics() *Metrics {
	return &Metrics{ops: make(map[string]*OperationStats)}
}

// Record adds one run of op that took elapsed and ended with err.
func (m *Metrics) Record(op string, elapsed time.Duration, err error) {
	s, ok := m.ops[op]
	if !ok {
		s = &OperationStats{}
		m.ops[op] = s
	}
	s.Count++
	if err != nil {
		s.Failures++
	}
	s.times[s.counter] = elapsed
	s.counter = (s.counter + 1) % AVG_COUNT
	if s.filled < AVG_COUNT {
		s.filled++
	}
}

// Stats returns the counters of op; the zero value when op never ran.
func (m *Metrics) Stats(op string) OperationStats {
	if s, ok := m.ops[op]; ok {
		return *s
	}
	return OperationStats{}
}

// Operations lists every recorded operation name, sorted.
func (m *Metrics) Operations() []string {
	out := make([]string, 0, len(m.ops))
	for op := range m.ops {
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}
