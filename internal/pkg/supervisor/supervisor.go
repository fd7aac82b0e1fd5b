// Package supervisor sequences the converter operating states and owns the
// enabled signal consumed by the integrating controllers.
package supervisor

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Input is sampled once per tick.
type Input struct {
	RunRequest bool // operator asks for power transfer
	Fault      bool // any protection trip
	Ready      bool // synchronized, e.g. PLL locked
}

// Output of the present state.
type Output struct {
	Enabled bool
	State   string
}

type state interface {
	name() string
	transition(in Input, ack bool) state
	action() Output
}

type standbyState struct{}

func (standbyState) name() string {
	return "STANDBY"
}

func (standbyState) transition(in Input, ack bool) state {
	switch {
	case in.Fault:
		return emergencyState{}
	case in.RunRequest:
		return startupState{}
	}
	return standbyState{}
}

func (s standbyState) action() Output {
	return Output{Enabled: false, State: s.name()}
}

type startupState struct{}

func (startupState) name() string {
	return "STARTUP"
}

func (startupState) transition(in Input, ack bool) state {
	switch {
	case in.Fault:
		return emergencyState{}
	case !in.RunRequest:
		return standbyState{}
	case in.Ready:
		return normalState{}
	}
	return startupState{}
}

func (s startupState) action() Output {
	return Output{Enabled: false, State: s.name()}
}

type normalState struct{}

func (normalState) name() string {
	return "NORMAL"
}

func (normalState) transition(in Input, ack bool) state {
	switch {
	case in.Fault:
		return emergencyState{}
	case !in.RunRequest:
		return shutdownState{}
	}
	return normalState{}
}

func (s normalState) action() Output {
	return Output{Enabled: true, State: s.name()}
}

// shutdownState holds the outputs disabled for one tick before standby.
type shutdownState struct{}

func (shutdownState) name() string {
	return "SHUTDOWN"
}

func (shutdownState) transition(in Input, ack bool) state {
	if in.Fault {
		return emergencyState{}
	}
	return standbyState{}
}

func (s shutdownState) action() Output {
	return Output{Enabled: false, State: s.name()}
}

// emergencyState latches until acknowledged with the fault cleared and no run request.
type emergencyState struct{}

func (emergencyState) name() string {
	return "EMERGENCY"
}

func (emergencyState) transition(in Input, ack bool) state {
	if ack && !in.Fault && !in.RunRequest {
		return standbyState{}
	}
	return emergencyState{}
}

func (s emergencyState) action() Output {
	return Output{Enabled: false, State: s.name()}
}

// Supervisor runs the operating state machine.
type Supervisor struct {
	pid          uuid.UUID
	log          *zap.Logger
	currentState state
	ack          bool
}

// New returns a Supervisor in STANDBY.
func New(log *zap.Logger) (*Supervisor, error) {
	pid, err := uuid.NewUUID()
	if err != nil {
		return nil, err
	}
	return &Supervisor{
		pid:          pid,
		log:          log.Named("supervisor").With(zap.Stringer("pid", pid)),
		currentState: standbyState{},
	}, nil
}

// PID is an accessor for the process id
func (s *Supervisor) PID() uuid.UUID {
	return s.pid
}

// State returns the name of the present state.
func (s *Supervisor) State() string {
	return s.currentState.name()
}

// Acknowledge requests leaving EMERGENCY. It is consumed by the next Run.
func (s *Supervisor) Acknowledge() {
	s.ack = true
}

// Run evaluates the transition for this tick and returns the new state's output.
func (s *Supervisor) Run(in Input) Output {
	next := s.currentState.transition(in, s.ack)
	s.ack = false
	if next.name() != s.currentState.name() {
		s.log.Info("state change",
			zap.String("from", s.currentState.name()),
			zap.String("to", next.name()),
			zap.Bool("fault", in.Fault))
	}
	s.currentState = next
	return s.currentState.action()
}
