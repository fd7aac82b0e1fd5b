package sim

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/assert/cmp"

	"github.com/ohowland/cgc_control/internal/lib/asset/grid/virtualgrid"
	"github.com/ohowland/cgc_control/internal/pkg/analysis"
	"github.com/ohowland/cgc_control/internal/pkg/config"
)

type rampScenario struct {
	width int
	stop  func(tick int)
}

func (rampScenario) Name() string { return "ramp" }

func (rampScenario) Columns() []string { return []string{"time", "tick"} }

func (s rampScenario) Step(c Clock) Sample {
	if s.stop != nil {
		s.stop(c.Tick)
	}
	row := Sample{c.Time(), float64(c.Tick)}
	return row[:s.width]
}

func newRunner(t *testing.T) *Runner {
	r, err := New(1e-3, zap.NewNop())
	assert.NilError(t, err)
	return r
}

func run(t *testing.T, cfg config.Config, ticks int) Trace {
	t.Helper()
	s, err := Build(cfg, zap.NewNop())
	assert.NilError(t, err)
	r, err := New(cfg.Ts, zap.NewNop())
	assert.NilError(t, err)
	trace, err := r.Run(context.Background(), s, ticks)
	assert.NilError(t, err)
	assert.Equal(t, len(trace.Rows), ticks)
	return trace
}

func column(t *testing.T, trace Trace, name string) []float64 {
	t.Helper()
	x, err := trace.Column(name)
	assert.NilError(t, err)
	return x
}

func TestNewRejectsSamplePeriod(t *testing.T) {
	_, err := New(0, zap.NewNop())
	assert.Assert(t, cmp.ErrorContains(err, "sample period"))
}

func TestRunRecordsEveryTick(t *testing.T) {
	r := newRunner(t)
	trace, err := r.Run(context.Background(), rampScenario{width: 2}, 5)
	assert.NilError(t, err)
	assert.Equal(t, trace.Scenario, "ramp")
	assert.Equal(t, trace.PID, r.PID())
	assert.Equal(t, len(trace.Rows), 5)
	assert.DeepEqual(t, column(t, trace, "tick"), []float64{0, 1, 2, 3, 4})
	assert.Equal(t, trace.Rows[4][0], 4e-3)

	_, err = trace.Column("missing")
	assert.Assert(t, cmp.ErrorContains(err, `no column "missing"`))
}

func TestRunRejectsBadInput(t *testing.T) {
	r := newRunner(t)
	_, err := r.Run(context.Background(), rampScenario{width: 2}, -1)
	assert.Assert(t, cmp.ErrorContains(err, "negative tick count"))

	_, err = r.Run(context.Background(), rampScenario{width: 1}, 3)
	assert.Assert(t, cmp.ErrorContains(err, "returned 1 values for 2 columns"))
}

func TestRunCancelled(t *testing.T) {
	r := newRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := rampScenario{width: 2, stop: func(tick int) {
		if tick == 2 {
			cancel()
		}
	}}
	trace, err := r.Run(ctx, s, 10)
	assert.Assert(t, errors.Is(err, context.Canceled))
	assert.Equal(t, len(trace.Rows), 3)
}

func TestWriteCSV(t *testing.T) {
	r := newRunner(t)
	trace, err := r.Run(context.Background(), rampScenario{width: 2}, 3)
	assert.NilError(t, err)

	var buf bytes.Buffer
	assert.NilError(t, trace.WriteCSV(&buf))
	records, err := csv.NewReader(&buf).ReadAll()
	assert.NilError(t, err)
	assert.DeepEqual(t, records, [][]string{
		{"time", "tick"},
		{"0", "0"},
		{"0.001", "1"},
		{"0.002", "2"},
	})
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Scenario = "island"
	_, err := Build(cfg, zap.NewNop())
	assert.Assert(t, errors.Is(err, config.ErrInvalid))
}

func TestPLLScenarioFollowsFrequencyStep(t *testing.T) {
	for _, kind := range []string{config.PLLDQ, config.PLLSOGI, config.PLLDSOGI} {
		cfg := config.Default()
		cfg.PLL.Kind = kind
		cfg.Grid.Event = &virtualgrid.Event{Time: 0.3, Frequency: 51}

		trace := run(t, cfg, 10000)
		assert.Equal(t, trace.Scenario, "pll/"+kind)

		phase := analysis.Summarize(analysis.Tail(column(t, trace, "phase_error"), 0.2))
		assert.Assert(t, math.Abs(phase.Min) < 0.1 && math.Abs(phase.Max) < 0.1, "%s: %+v", kind, phase)

		freq := analysis.Summarize(analysis.Tail(column(t, trace, "frequency"), 0.2))
		assert.Assert(t, math.Abs(freq.Mean-51) < 0.05, "%s: %+v", kind, freq)

		posD := analysis.Summarize(analysis.Tail(column(t, trace, "pos_d"), 0.2))
		assert.Assert(t, math.Abs(posD.Mean-1) < 0.01, "%s: %+v", kind, posD)
	}
}

func TestPLLScenarioSeparatesSequences(t *testing.T) {
	cfg := config.Default()
	cfg.Grid.Negative = 0.1

	trace := run(t, cfg, 10000)
	negD := analysis.Summarize(analysis.Tail(column(t, trace, "neg_d"), 0.2))
	assert.Assert(t, math.Abs(negD.Min-0.1) < 0.01 && math.Abs(negD.Max-0.1) < 0.01, "%+v", negD)

	negQ := analysis.Summarize(analysis.Tail(column(t, trace, "neg_q"), 0.2))
	assert.Assert(t, math.Abs(negQ.Mean) < 0.01, "%+v", negQ)
}

func TestMPPTScenarioTracksIrradianceStep(t *testing.T) {
	cfg := config.Default()
	cfg.Scenario = config.ScenarioMPPT
	cfg.MPPT.IrradianceStep = &config.IrradianceStep{Time: 0.6, Irradiance: 600}

	trace := run(t, cfg, 10000)
	eff := column(t, trace, "efficiency")
	mpp := column(t, trace, "mpp_power")

	before := analysis.Summarize(eff[5000:6000])
	after := analysis.Summarize(eff[9000:])
	assert.Assert(t, before.Min > 0.98, "before step %+v", before)
	assert.Assert(t, after.Min > 0.98, "after step %+v", after)
	assert.Assert(t, mpp[9999] < mpp[0])
}

func TestCurrentScenarioTracksReference(t *testing.T) {
	for _, mode := range []string{config.CurrentPR, config.CurrentDQ} {
		cfg := config.Default()
		cfg.Scenario = config.ScenarioCurrent
		cfg.Current.Mode = mode

		trace := run(t, cfg, 6000)
		assert.Equal(t, trace.Scenario, "current/"+mode)

		state := column(t, trace, "state")
		assert.Equal(t, state[0], stateCodes["STANDBY"])
		assert.Equal(t, state[len(state)-1], stateCodes["NORMAL"])

		e := analysis.Summarize(analysis.Tail(column(t, trace, "error"), 1.0/3))
		assert.Assert(t, e.RMS < 0.2, "%s: %+v", mode, e)

		i := analysis.Summarize(analysis.Tail(column(t, trace, "i"), 1.0/3))
		assert.Assert(t, math.Abs(i.Max-10) < 0.3, "%s: %+v", mode, i)
	}
}

func TestCurrentScenarioTripLatchesEmergency(t *testing.T) {
	cfg := config.Default()
	cfg.Scenario = config.ScenarioCurrent
	cfg.Current.Line.Trip = 5

	trace := run(t, cfg, 4000)
	state := column(t, trace, "state")
	enabled := column(t, trace, "enabled")
	assert.Equal(t, state[len(state)-1], stateCodes["EMERGENCY"])
	assert.Equal(t, enabled[len(enabled)-1], 0.0)

	i := analysis.Summarize(analysis.Tail(column(t, trace, "i"), 0.25))
	assert.Equal(t, i.Max, 0.0)
	assert.Equal(t, i.Min, 0.0)
}
