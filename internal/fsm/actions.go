package fsm

import "github.com/librescoot/librefsm"

// Actions defines the interface for match controller side effects.
// SumoSystem implements this interface. All callbacks run
// synchronously inside the control loop's event dispatch, so they may
// touch loop-owned data without locking.
type Actions interface {
	// State entry actions
	EnterReadyDelay(c *librefsm.Context) error
	EnterSearching(c *librefsm.Context) error
	EnterPursuing(c *librefsm.Context) error
	EnterEvading(c *librefsm.Context) error
	EnterEvadingReverse(c *librefsm.Context) error
	EnterEvadingTurn(c *librefsm.Context) error

	// State exit actions
	ExitReadyDelay(c *librefsm.Context) error

	// Guards for conditional transitions
	CanArm(c *librefsm.Context) bool // True when the required sensors initialized at startup

	// Transition actions
	OnEvadeComplete(c *librefsm.Context) error // Flips the scan direction after a finished escape turn
}
