package experiment

import (
	"github.com/san-kum/forcesim/internal/geom"
	"github.com/san-kum/forcesim/internal/metrics"
	"github.com/san-kum/forcesim/internal/sim"
)

// Trace is the per-tick history of alpha and every metric. Values line up
// with Columns.
type Trace struct {
	Columns []string
	Samples []Sample
}

type Sample struct {
	Tick   int
	Alpha  float64
	Values []float64
}

func newTrace[P geom.Point[P]](ms []metrics.Metric[P]) *Trace {
	cols := make([]string, len(ms))
	for i, m := range ms {
		cols[i] = m.Name()
	}
	return &Trace{Columns: cols}
}

// Series returns one column across all samples, or nil if absent.
func (t *Trace) Series(column string) []float64 {
	if column == "alpha" {
		out := make([]float64, len(t.Samples))
		for i, s := range t.Samples {
			out[i] = s.Alpha
		}
		return out
	}
	for c, name := range t.Columns {
		if name != column {
			continue
		}
		out := make([]float64, len(t.Samples))
		for i, s := range t.Samples {
			out[i] = s.Values[c]
		}
		return out
	}
	return nil
}

func (t *Trace) Len() int { return len(t.Samples) }

// recorder appends a sample after the metrics have seen the frame.
type recorder[P geom.Point[P]] struct {
	trace   *Trace
	metrics []metrics.Metric[P]
}

func (r recorder[P]) OnTick(f sim.Frame[P]) {
	vals := make([]float64, len(r.metrics))
	for i, m := range r.metrics {
		vals[i] = m.Value()
	}
	r.trace.Samples = append(r.trace.Samples, Sample{Tick: f.Tick, Alpha: f.Alpha, Values: vals})
}
