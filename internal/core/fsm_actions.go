package core

import (
	"context"
	"time"

	"github.com/librescoot/librefsm"

	"sumo-service/internal/fsm"
	"sumo-service/internal/hardware"
	"sumo-service/internal/types"
)

// Ensure SumoSystem implements fsm.Actions
var _ fsm.Actions = (*SumoSystem)(nil)

// stateIDToBotState converts librefsm StateID to types.BotState
func stateIDToBotState(id librefsm.StateID) types.BotState {
	switch id {
	case fsm.StateIdle:
		return types.StateIdle
	case fsm.StateReadyDelay:
		return types.StateReadyDelay
	case fsm.StateSearching:
		return types.StateSearching
	case fsm.StatePursuing:
		return types.StatePursuing
	case fsm.StateEvadingReverse:
		return types.StateEvadingReverse
	case fsm.StateEvadingTurn:
		return types.StateEvadingTurn
	default:
		return types.BotState(string(id))
	}
}

// botStateToStateID converts types.BotState to librefsm StateID
func botStateToStateID(s types.BotState) librefsm.StateID {
	switch s {
	case types.StateIdle:
		return fsm.StateIdle
	case types.StateReadyDelay:
		return fsm.StateReadyDelay
	case types.StateSearching:
		return fsm.StateSearching
	case types.StatePursuing:
		return fsm.StatePursuing
	case types.StateEvadingReverse:
		return fsm.StateEvadingReverse
	case types.StateEvadingTurn:
		return fsm.StateEvadingTurn
	default:
		return librefsm.StateID(string(s))
	}
}

// initFSM initializes and starts the librefsm machine
func (s *SumoSystem) initFSM(ctx context.Context) error {
	def := fsm.NewDefinition(s)
	machine, err := def.Build()
	if err != nil {
		return err
	}
	s.machine = machine

	// Sync the published state field and stamp the entry time the loop
	// measures phase durations against
	s.machine.OnStateChange(func(from, to librefsm.StateID) {
		newState := stateIDToBotState(to)
		oldState := stateIDToBotState(from)

		s.mu.Lock()
		s.state = newState
		s.stateEnteredAt = s.cycleNow
		s.mu.Unlock()

		s.logger.Infof("State transition: %s -> %s", oldState, newState)

		// Publish directly using the known new state (avoid calling
		// getCurrentState() which would cause a deadlock with the FSM mutex)
		if err := s.redis.PublishBotState(newState); err != nil {
			s.logger.Errorf("Failed to publish state: %v", err)
		}
	})

	if err := s.machine.Start(ctx); err != nil {
		return err
	}

	s.logger.Infof("librefsm state machine started")
	return nil
}

// sendEvent sends an event to the FSM
func (s *SumoSystem) sendEvent(event librefsm.EventID) error {
	return s.machine.SendSync(librefsm.Event{ID: event})
}

// === State Entry Actions ===

func (s *SumoSystem) EnterReadyDelay(c *librefsm.Context) error {
	s.logger.Debugf("FSM: EnterReadyDelay")

	// Seed the countdown one above the top value so the first loop cycle
	// in this state emits it exactly once
	s.lastCountdown = int((s.cfg.ReadyDelay+time.Second-1)/time.Second) + 1

	s.playCue(hardware.CueArmed, "armed")

	deadline := s.cycleNow.Add(s.cfg.ReadyDelay)
	if err := s.redis.PublishReadyDeadline(deadline); err != nil {
		s.logger.Warnf("Warning: Failed to publish ready deadline: %v", err)
	}
	if err := s.redis.PublishMatchEvent("armed"); err != nil {
		s.logger.Warnf("Warning: Failed to publish armed event: %v", err)
	}

	s.logger.Infof("Armed, match starts in %s", s.cfg.ReadyDelay)
	return nil
}

func (s *SumoSystem) EnterSearching(c *librefsm.Context) error {
	s.logger.Debugf("FSM: EnterSearching")

	// Every entry restarts the stuck timeout
	s.scan.MarkDetection(s.cycleNow)

	prevState := stateIDToBotState(c.FromState)
	switch prevState {
	case types.StateReadyDelay:
		s.playCue(hardware.CueMatchStart, "match start")
		if err := s.redis.PublishMatchEvent("started"); err != nil {
			s.logger.Warnf("Warning: Failed to publish match start event: %v", err)
		}
		s.logger.Infof("Match started, searching %s", s.scan.Direction())
	case types.StatePursuing:
		if err := s.redis.PublishDetection(false); err != nil {
			s.logger.Warnf("Warning: Failed to publish detection state: %v", err)
		}
		s.logger.Infof("Target lost, searching %s", s.scan.Direction())
	}

	return nil
}

func (s *SumoSystem) EnterPursuing(c *librefsm.Context) error {
	s.logger.Debugf("FSM: EnterPursuing")

	s.playCue(hardware.CueTargetAcquired, "target acquired")
	if err := s.redis.PublishDetection(true); err != nil {
		s.logger.Warnf("Warning: Failed to publish detection state: %v", err)
	}
	if err := s.redis.PublishMatchEvent("target-acquired"); err != nil {
		s.logger.Warnf("Warning: Failed to publish target event: %v", err)
	}

	return nil
}

func (s *SumoSystem) EnterEvading(c *librefsm.Context) error {
	s.logger.Debugf("FSM: EnterEvading")

	s.playCue(hardware.CueBoundary, "boundary")

	prevState := stateIDToBotState(c.FromState)
	if prevState == types.StatePursuing {
		if err := s.redis.PublishDetection(false); err != nil {
			s.logger.Warnf("Warning: Failed to publish detection state: %v", err)
		}
	}
	if err := s.redis.PublishMatchEvent("boundary"); err != nil {
		s.logger.Warnf("Warning: Failed to publish boundary event: %v", err)
	}

	return nil
}

func (s *SumoSystem) EnterEvadingReverse(c *librefsm.Context) error {
	s.logger.Debugf("FSM: EnterEvadingReverse")
	s.logger.Infof("Boundary detected, reversing for %s", s.cfg.ReverseDuration)
	return nil
}

func (s *SumoSystem) EnterEvadingTurn(c *librefsm.Context) error {
	s.logger.Debugf("FSM: EnterEvadingTurn")
	s.logger.Infof("Turning %s for %s", s.scan.Direction(), s.cfg.TurnDuration)
	return nil
}

// === State Exit Actions ===

func (s *SumoSystem) ExitReadyDelay(c *librefsm.Context) error {
	s.logger.Debugf("FSM: ExitReadyDelay")
	if err := s.redis.ClearReadyDeadline(); err != nil {
		s.logger.Warnf("Warning: Failed to clear ready deadline: %v", err)
	}
	return nil
}

// === Guards ===

func (s *SumoSystem) CanArm(c *librefsm.Context) bool {
	if !s.io.SensorsHealthy() {
		s.logger.Warnf("Cannot arm: sensors unavailable")
		return false
	}
	return true
}

// === Transition Actions ===

// OnEvadeComplete runs on the turn-to-searching transition only. A turn
// cut short by a boundary re-sighting restarts the reverse phase instead,
// so an aborted turn never flips the sweep direction.
func (s *SumoSystem) OnEvadeComplete(c *librefsm.Context) error {
	dir := s.scan.Flip()
	if err := s.redis.PublishScanDirection(dir); err != nil {
		s.logger.Warnf("Warning: Failed to publish scan direction: %v", err)
	}
	if err := s.redis.PublishMatchEvent("evade-complete"); err != nil {
		s.logger.Warnf("Warning: Failed to publish evade event: %v", err)
	}
	s.logger.Infof("Evade complete, next sweep %s", dir)
	return nil
}
