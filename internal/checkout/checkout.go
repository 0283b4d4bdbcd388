// internal/checkout/checkout.go
//
// Simulated checkout choreography: a progress indicator advancing on its
// own timer, and an independent hard completion after a fixed delay. The
// machine is an explicit idle → processing → complete → idle state
// machine. It never sleeps itself: it describes the transitions it wants
// scheduled and the caller (the TUI) delivers them back as events, so a
// torn-down run can discard everything that was still in flight.

package checkout

import (
	"time"

	"github.com/google/uuid"
)

// Timing of the simulation. Completion is independent of the progress
// ticks; the ceiling keeps the bar from finishing itself before the hard
// completion forces it to 100.
const (
	ProgressInterval = 150 * time.Millisecond
	ProgressStep     = 10
	progressCeiling  = 95
	CompleteAfter    = 1500 * time.Millisecond
	SettleAfter      = 600 * time.Millisecond
)

// Phase is the machine's state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseProcessing
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseProcessing:
		return "processing"
	case PhaseComplete:
		return "complete"
	default:
		return "idle"
	}
}

// EventKind identifies a scheduled transition.
type EventKind int

const (
	// EventProgress advances the indicator by one step.
	EventProgress EventKind = iota
	// EventComplete forces the indicator to 100 and enters complete.
	EventComplete
	// EventSettle ends the run: success notice, cart cleared, back to idle.
	EventSettle
)

// Event is a scheduled transition delivered back to the machine. Run is
// the token of the run that scheduled it; events from a cancelled run are
// discarded.
type Event struct {
	Run  int
	Kind EventKind
}

// Schedule asks the caller to deliver Event after the given delay.
type Schedule struct {
	After time.Duration
	Event Event
}

// Result reports what applying an event did. Done fires exactly once per
// run, on the settle transition.
type Result struct {
	Done     bool
	OrderRef string
	Schedule []Schedule
}

// Machine drives the checkout simulation.
type Machine struct {
	phase    Phase
	run      int
	progress int
	orderRef string
	newRef   func() string
}

// NewMachine builds an idle machine.
func NewMachine() *Machine {
	return &Machine{newRef: uuid.NewString}
}

// Start begins a run and returns the transitions to schedule. Starting a
// run that is already underway returns nil.
func (m *Machine) Start() []Schedule {
	if m.phase != PhaseIdle {
		return nil
	}
	m.run++
	m.phase = PhaseProcessing
	m.progress = 0
	m.orderRef = ""
	return []Schedule{
		{After: ProgressInterval, Event: Event{Run: m.run, Kind: EventProgress}},
		{After: CompleteAfter, Event: Event{Run: m.run, Kind: EventComplete}},
	}
}

// Cancel tears the current run down. Any event still in flight carries a
// stale run token and will be discarded, so no transition or notice can
// fire after cancellation.
func (m *Machine) Cancel() {
	m.run++
	m.phase = PhaseIdle
	m.progress = 0
	m.orderRef = ""
}

// Apply consumes one scheduled event and returns the resulting effect.
func (m *Machine) Apply(ev Event) Result {
	if ev.Run != m.run {
		return Result{}
	}
	switch ev.Kind {
	case EventProgress:
		if m.phase != PhaseProcessing {
			return Result{}
		}
		m.progress += ProgressStep
		if m.progress > progressCeiling {
			m.progress = progressCeiling
		}
		return Result{Schedule: []Schedule{
			{After: ProgressInterval, Event: Event{Run: m.run, Kind: EventProgress}},
		}}
	case EventComplete:
		if m.phase != PhaseProcessing {
			return Result{}
		}
		m.phase = PhaseComplete
		m.progress = 100
		m.orderRef = m.newRef()
		return Result{Schedule: []Schedule{
			{After: SettleAfter, Event: Event{Run: m.run, Kind: EventSettle}},
		}}
	case EventSettle:
		if m.phase != PhaseComplete {
			return Result{}
		}
		ref := m.orderRef
		m.phase = PhaseIdle
		m.progress = 0
		m.orderRef = ""
		return Result{Done: true, OrderRef: ref}
	}
	return Result{}
}

// Phase reports the machine's current state.
func (m *Machine) Phase() Phase { return m.phase }

// Active reports whether a run is underway.
func (m *Machine) Active() bool { return m.phase != PhaseIdle }

// Progress is the indicator position, 0 through 100.
func (m *Machine) Progress() int { return m.progress }

// Percent is Progress scaled to 0.0 through 1.0 for the progress bar.
func (m *Machine) Percent() float64 { return float64(m.progress) / 100 }
