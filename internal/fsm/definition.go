package fsm

import (
	"github.com/librescoot/librefsm"
)

// NewDefinition creates the match controller FSM definition. The
// machine orders states, guards and entry/exit side effects; all
// timing is elapsed-time comparison in the control loop, so no state
// carries a timeout of its own.
func NewDefinition(actions Actions) *librefsm.Definition {
	return librefsm.NewDefinition().
		// Basic states
		State(StateIdle).
		State(StateReadyDelay,
			librefsm.WithOnEnter(actions.EnterReadyDelay),
			librefsm.WithOnExit(actions.ExitReadyDelay),
		).
		State(StateSearching,
			librefsm.WithOnEnter(actions.EnterSearching),
		).
		State(StatePursuing,
			librefsm.WithOnEnter(actions.EnterPursuing),
		).

		// Evading parent state (one escape episode)
		State(StateEvading,
			librefsm.WithOnEnter(actions.EnterEvading),
		).

		// Escape phases (hierarchical)
		State(StateEvadingReverse,
			librefsm.WithParent(StateEvading),
			librefsm.WithOnEnter(actions.EnterEvadingReverse),
		).
		State(StateEvadingTurn,
			librefsm.WithParent(StateEvading),
			librefsm.WithOnEnter(actions.EnterEvadingTurn),
		).

		// === Transitions ===

		// Arming. Refused while the required sensors are missing.
		Transition(StateIdle, EvArm, StateReadyDelay,
			librefsm.WithGuard(actions.CanArm),
		).

		// Pre-activity delay
		Transition(StateReadyDelay, EvDelayElapsed, StateSearching).

		// Target tracking
		Transition(StateSearching, EvTargetAcquired, StatePursuing).
		Transition(StatePursuing, EvTargetLost, StateSearching).

		// Boundary safety. Dominates every active state; a boundary
		// seen mid-turn restarts the escape from its reverse phase.
		Transition(StateSearching, EvBoundaryDetected, StateEvadingReverse).
		Transition(StatePursuing, EvBoundaryDetected, StateEvadingReverse).
		Transition(StateEvadingTurn, EvBoundaryDetected, StateEvadingReverse).

		// Escape phases
		Transition(StateEvadingReverse, EvReverseDone, StateEvadingTurn).
		Transition(StateEvadingTurn, EvTurnDone, StateSearching,
			librefsm.WithAction(actions.OnEvadeComplete),
		).

		// Initial state
		Initial(StateIdle)
}
