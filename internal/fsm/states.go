package fsm

import "github.com/librescoot/librefsm"

// Match controller states
const (
	StateIdle       librefsm.StateID = "idle"
	StateReadyDelay librefsm.StateID = "ready-delay"
	StateSearching  librefsm.StateID = "searching"
	StatePursuing   librefsm.StateID = "pursuing"

	// Evading parent state and phase substates (hierarchical)
	StateEvading        librefsm.StateID = "evading"
	StateEvadingReverse librefsm.StateID = "evading-reverse"
	StateEvadingTurn    librefsm.StateID = "evading-turn"
)

// Controller events. Every event is dispatched by the control loop;
// the arm trigger originates from a physical input but is consumed
// and raised by the loop, never from the input goroutine.
const (
	// Physical input
	EvArm librefsm.EventID = "arm"

	// Sensor threshold crossings
	EvBoundaryDetected librefsm.EventID = "boundary-detected"
	EvTargetAcquired   librefsm.EventID = "target-acquired"
	EvTargetLost       librefsm.EventID = "target-lost"

	// Elapsed-time markers measured by the loop
	EvDelayElapsed librefsm.EventID = "delay-elapsed"
	EvReverseDone  librefsm.EventID = "reverse-done"
	EvTurnDone     librefsm.EventID = "turn-done"
)
