package core

import (
	"context"
	"time"

	"github.com/librescoot/librefsm"

	"sumo-service/internal/fsm"
	"sumo-service/internal/hardware"
	"sumo-service/internal/types"
)

// runControlLoop drives the controller. All timing and every FSM event
// originates here; one iteration reads the sensors, advances the state
// machine by at most one transition, and issues exactly one speed
// command.
func (s *SumoSystem) runControlLoop(ctx context.Context) {
	s.logger.Infof("Control loop running at %s intervals", s.cfg.PollInterval)

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	stop := s.stopChan
	for {
		select {
		case <-ctx.Done():
			s.logger.Infof("Control loop stopped: %v", ctx.Err())
			return
		case <-stop:
			s.logger.Infof("Control loop stopped")
			return
		case now := <-ticker.C:
			s.step(now)
		}
	}
}

// step runs one control cycle. Split from the ticker so tests can drive
// the loop with an explicit clock.
func (s *SumoSystem) step(now time.Time) {
	s.cycleNow = now

	s.consumeArm()

	snap := s.readSnapshot()

	// Any sighting refreshes the stuck timeout, whatever the state
	if s.targetVisible(snap) {
		s.scan.MarkDetection(now)
	}

	s.dispatchEvents(now, snap)

	cmd := s.command(snap).Clamp(s.cfg.MaxSpeed)
	if err := s.io.SetSpeeds(cmd.Left, cmd.Right); err != nil {
		s.logger.Warnf("Warning: Failed to set speeds: %v", err)
	}
}

// consumeArm applies at most one pending start-button press. Arming is
// refused while the sensors are unavailable.
func (s *SumoSystem) consumeArm() {
	select {
	case <-s.armCh:
	default:
		return
	}

	if s.getCurrentStateID() != fsm.StateIdle {
		s.logger.Debugf("Ignoring start button outside idle")
		return
	}
	if !s.io.SensorsHealthy() {
		s.logger.Warnf("Arming refused: sensors unavailable")
		s.playCue(hardware.CueFault, "fault")
		return
	}
	s.raise(fsm.EvArm)
}

// dispatchEvents raises at most one FSM event per cycle. Boundary
// contact outranks every other condition; the remaining checks are
// per-state elapsed-time markers and threshold crossings.
func (s *SumoSystem) dispatchEvents(now time.Time, snap types.SensorSnapshot) {
	stateID := s.getCurrentStateID()
	elapsed := now.Sub(s.stateEnteredAt)

	if s.boundaryVisible(snap) {
		switch stateID {
		case fsm.StateSearching, fsm.StatePursuing, fsm.StateEvadingTurn:
			s.raise(fsm.EvBoundaryDetected)
			return
		case fsm.StateEvadingReverse:
			// Already backing away; restart the phase clock so the
			// full reverse duration runs from this sighting
			s.stateEnteredAt = now
			return
		}
	}

	switch stateID {
	case fsm.StateReadyDelay:
		if elapsed >= s.cfg.ReadyDelay {
			s.raise(fsm.EvDelayElapsed)
			return
		}
		s.emitCountdown(elapsed)

	case fsm.StateSearching:
		if s.targetVisible(snap) {
			s.raise(fsm.EvTargetAcquired)
			return
		}
		if s.scan.SinceDetection(now) > s.cfg.StuckTimeout {
			dir := s.scan.Flip()
			s.scan.MarkDetection(now)
			s.logger.Infof("No contact for %s, sweeping %s", s.cfg.StuckTimeout, dir)
			if err := s.redis.PublishScanDirection(dir); err != nil {
				s.logger.Warnf("Warning: Failed to publish scan direction: %v", err)
			}
		}

	case fsm.StatePursuing:
		if !s.targetVisible(snap) {
			s.raise(fsm.EvTargetLost)
		}

	case fsm.StateEvadingReverse:
		if elapsed >= s.cfg.ReverseDuration {
			s.raise(fsm.EvReverseDone)
		}

	case fsm.StateEvadingTurn:
		if elapsed >= s.cfg.TurnDuration {
			s.raise(fsm.EvTurnDone)
		}
	}
}

// emitCountdown plays one tick per whole second remaining in the ready
// delay. A late cycle may owe several values; each is emitted exactly
// once, in descending order.
func (s *SumoSystem) emitCountdown(elapsed time.Duration) {
	remaining := s.cfg.ReadyDelay - elapsed
	cur := int((remaining + time.Second - 1) / time.Second)
	for v := s.lastCountdown - 1; v >= cur; v-- {
		s.playCue(hardware.CueCountdownTick, "countdown tick")
		s.logger.Infof("Match starts in %d", v)
	}
	if cur < s.lastCountdown {
		s.lastCountdown = cur
	}
}

// command computes this cycle's motor speeds from the current state.
func (s *SumoSystem) command(snap types.SensorSnapshot) types.SpeedCommand {
	switch s.getCurrentStateID() {
	case fsm.StateSearching:
		return types.Rotation(s.scan.Direction(), s.cfg.SearchSpeed)
	case fsm.StatePursuing:
		return s.pursuitCommand(snap)
	case fsm.StateEvadingReverse:
		return types.SpeedCommand{Left: -s.cfg.ReverseSpeed, Right: -s.cfg.ReverseSpeed}
	case fsm.StateEvadingTurn:
		return types.Rotation(s.scan.Direction(), s.cfg.EvadeTurnSpeed)
	default:
		// Idle and ready-delay keep the wheels stopped
		return types.SpeedCommand{}
	}
}

// pursuitCommand steers toward the stronger reading by slowing the wheel
// on that side, arcing the bot into the target. Equal readings drive
// straight at full speed.
func (s *SumoSystem) pursuitCommand(snap types.SensorSnapshot) types.SpeedCommand {
	left := snap.Target[types.TargetLeft]
	right := snap.Target[types.TargetRight]
	switch {
	case left > right:
		return types.SpeedCommand{Left: s.cfg.PursuitTurnSpeed, Right: s.cfg.PursuitSpeed}
	case right > left:
		return types.SpeedCommand{Left: s.cfg.PursuitSpeed, Right: s.cfg.PursuitTurnSpeed}
	default:
		return types.SpeedCommand{Left: s.cfg.PursuitSpeed, Right: s.cfg.PursuitSpeed}
	}
}

// raise sends one FSM event and logs a refused or failed dispatch.
func (s *SumoSystem) raise(event librefsm.EventID) {
	if err := s.sendEvent(event); err != nil {
		s.logger.Warnf("Warning: Event %s not handled: %v", event, err)
	}
}

// Threshold comparisons are strict; a reading equal to the threshold
// does not trigger.

func (s *SumoSystem) boundaryVisible(snap types.SensorSnapshot) bool {
	for _, v := range snap.Boundary {
		if v > s.cfg.BoundaryThreshold {
			return true
		}
	}
	return false
}

func (s *SumoSystem) targetVisible(snap types.SensorSnapshot) bool {
	return snap.Target[types.TargetLeft] > s.cfg.TargetThreshold ||
		snap.Target[types.TargetRight] > s.cfg.TargetThreshold
}
