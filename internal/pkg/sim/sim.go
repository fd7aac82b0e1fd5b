// Package sim drives the control primitives against the virtual plant one
// fixed-period tick at a time and records a trace of every tick.
package sim

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Clock identifies the tick being executed.
type Clock struct {
	Ts   float64
	Tick int
}

// Time in seconds at the start of the tick.
func (c Clock) Time() float64 {
	return float64(c.Tick) * c.Ts
}

// Sample is one trace row, ordered like the scenario's Columns.
type Sample []float64

// Scenario is a closed loop of plant and controllers advanced once per tick.
type Scenario interface {
	Name() string
	Columns() []string
	Step(c Clock) Sample
}

// Trace is the recorded output of one run.
type Trace struct {
	PID      uuid.UUID
	Scenario string
	Ts       float64
	Columns  []string
	Rows     []Sample
}

// Column returns the named column of every row.
func (t Trace) Column(name string) ([]float64, error) {
	for j, c := range t.Columns {
		if c == name {
			out := make([]float64, len(t.Rows))
			for i, row := range t.Rows {
				out[i] = row[j]
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("sim: no column %q in %s trace", name, t.Scenario)
}

// WriteCSV writes a header line followed by one line per tick.
func (t Trace) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for j, v := range row {
			record[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Runner executes scenarios at a fixed sample period.
type Runner struct {
	pid uuid.UUID
	log *zap.Logger
	ts  float64
}

// New returns a Runner ticking every ts seconds.
func New(ts float64, log *zap.Logger) (*Runner, error) {
	if !(ts > 0) {
		return nil, fmt.Errorf("sim: sample period %v", ts)
	}
	pid, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}
	return &Runner{
		pid: pid,
		log: log.Named("sim").With(zap.Stringer("pid", pid)),
		ts:  ts,
	}, nil
}

// PID is an accessor for the process id
func (r *Runner) PID() uuid.UUID {
	return r.pid
}

// Run steps s for the given number of ticks. The context is checked between
// ticks; on cancellation the trace recorded so far is returned with ctx.Err().
func (r *Runner) Run(ctx context.Context, s Scenario, ticks int) (Trace, error) {
	if ticks < 0 {
		return Trace{}, fmt.Errorf("sim: negative tick count %d", ticks)
	}
	trace := Trace{
		PID:      r.pid,
		Scenario: s.Name(),
		Ts:       r.ts,
		Columns:  s.Columns(),
		Rows:     make([]Sample, 0, ticks),
	}
	log := r.log.With(zap.String("scenario", s.Name()))
	log.Info("run started", zap.Int("ticks", ticks), zap.Float64("ts", r.ts))

	for k := 0; k < ticks; k++ {
		if err := ctx.Err(); err != nil {
			log.Warn("run cancelled", zap.Int("tick", k))
			return trace, err
		}
		row := s.Step(Clock{Ts: r.ts, Tick: k})
		if len(row) != len(trace.Columns) {
			return trace, fmt.Errorf("sim: %s returned %d values for %d columns", s.Name(), len(row), len(trace.Columns))
		}
		trace.Rows = append(trace.Rows, row)
	}

	log.Info("run finished", zap.Int("ticks", ticks), zap.Float64("duration", float64(ticks)*r.ts))
	return trace, nil
}
