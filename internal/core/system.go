package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/librescoot/librefsm"

	"sumo-service/internal/config"
	"sumo-service/internal/hardware"
	"sumo-service/internal/logger"
	"sumo-service/internal/types"
)

// Fault codes reported when a sensor bank stops responding
const (
	faultBoundarySensor = 10
	faultTargetSensor   = 11
)

type SumoSystem struct {
	mu     sync.RWMutex
	state  types.BotState
	logger *logger.Logger
	io     HardwareIO
	redis  MessagingClient
	cfg    config.Config

	machine *librefsm.Machine

	// Loop-owned bookkeeping. FSM hooks run synchronously inside the
	// loop's event dispatch, so they share these fields without locking.
	cycleNow       time.Time
	stateEnteredAt time.Time
	scan           *scanOscillator
	lastCountdown  int

	armCh    chan struct{}
	stopChan chan struct{}

	// Latches so each sensor outage is reported once
	boundaryFaultReported bool
	targetFaultReported   bool
}

func NewSumoSystem(io HardwareIO, redis MessagingClient, cfg config.Config, l *logger.Logger) *SumoSystem {
	return &SumoSystem{
		state:    types.StateIdle,
		logger:   l,
		io:       io,
		redis:    redis,
		cfg:      cfg,
		cycleNow: time.Now(),
		scan:     newScanOscillator(),
		armCh:    make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}
}

func (s *SumoSystem) Start(ctx context.Context) error {
	s.logger.Infof("Starting sumo system")

	if err := s.redis.Connect(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// Settings are read once at startup; there is no runtime reconfiguration
	s.loadSettings()

	if err := s.io.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize hardware: %w", err)
	}

	if err := s.initFSM(ctx); err != nil {
		return fmt.Errorf("failed to initialize state machine: %w", err)
	}

	s.io.RegisterInputCallback("start_button", s.handleStartButton)
	s.logger.Debugf("Registered callback for channel: start_button")

	if err := s.redis.PublishBotState(s.getCurrentState()); err != nil {
		s.logger.Warnf("Warning: Failed to publish initial state: %v", err)
	}
	if err := s.redis.ClearReadyDeadline(); err != nil {
		s.logger.Warnf("Warning: Failed to clear stale ready deadline: %v", err)
	}
	if err := s.redis.PublishScanDirection(s.scan.Direction()); err != nil {
		s.logger.Warnf("Warning: Failed to publish scan direction: %v", err)
	}

	s.playCue(hardware.CueBoot, "boot")

	go s.runControlLoop(ctx)

	s.logger.Infof("System started successfully")
	return nil
}

func (s *SumoSystem) Shutdown() {
	s.logger.Infof("Shutting down sumo system")

	if s.stopChan != nil {
		close(s.stopChan)
		s.stopChan = nil
	}

	// Stop the wheels before tearing anything else down
	if s.io != nil {
		if err := s.io.SetSpeeds(0, 0); err != nil {
			s.logger.Warnf("Warning: Failed to stop motors: %v", err)
		}
		s.io.Cleanup()
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warnf("Warning: Failed to close Redis client: %v", err)
		}
	}
}

// loadSettings overlays tunables from the Redis settings hash. Missing
// keys keep their defaults; unparseable values are logged and skipped.
func (s *SumoSystem) loadSettings() {
	for _, key := range config.SettingKeys {
		value, err := s.redis.GetHashField("settings", key)
		if err != nil {
			s.logger.Warnf("Warning: Failed to read setting %s: %v", key, err)
			continue
		}
		if value == "" {
			continue
		}
		if err := s.cfg.Override(key, value); err != nil {
			s.logger.Warnf("Warning: Ignoring setting: %v", err)
			continue
		}
		s.logger.Infof("Setting %s = %s", key, value)
	}
}

// handleStartButton is the callback for the start button input. It runs
// on the input reader goroutine, so it only signals the loop.
func (s *SumoSystem) handleStartButton(channel string, value bool) error {
	if !value {
		return nil // Only care about the press edge
	}
	select {
	case s.armCh <- struct{}{}:
	default:
		// A press is already pending
	}
	return nil
}

func (s *SumoSystem) playCue(cueIndex int, cueName string) {
	if err := s.io.PlayCue(cueIndex); err != nil {
		s.logger.Warnf("Failed to play cue %s: %v", cueName, err)
	}
}

// readSnapshot polls both sensor banks. A failed bank degrades to zeroed
// readings, which sit below every threshold, so the controller sees no
// boundary and no target rather than acting on stale data.
func (s *SumoSystem) readSnapshot() types.SensorSnapshot {
	var snap types.SensorSnapshot

	boundary, err := s.io.ReadBoundary()
	if err != nil {
		s.reportSensorFault(&s.boundaryFaultReported, faultBoundarySensor, "boundary sensor read failure", err)
	} else {
		s.clearSensorFault(&s.boundaryFaultReported, faultBoundarySensor)
	}
	snap.Boundary = boundary

	target, err := s.io.ReadTarget()
	if err != nil {
		s.reportSensorFault(&s.targetFaultReported, faultTargetSensor, "target sensor read failure", err)
	} else {
		s.clearSensorFault(&s.targetFaultReported, faultTargetSensor)
	}
	snap.Target = target

	return snap
}

func (s *SumoSystem) reportSensorFault(latch *bool, code int, description string, err error) {
	if *latch {
		return
	}
	*latch = true
	s.logger.Warnf("%s: %v", description, err)
	if rerr := s.redis.ReportFaultPresent(code, description, s.cycleNow.Unix(), err.Error()); rerr != nil {
		s.logger.Warnf("Warning: Failed to report fault %d: %v", code, rerr)
	}
}

func (s *SumoSystem) clearSensorFault(latch *bool, code int) {
	if !*latch {
		return
	}
	*latch = false
	s.logger.Infof("Sensor fault %d cleared", code)
	if err := s.redis.ReportFaultAbsent(code); err != nil {
		s.logger.Warnf("Warning: Failed to clear fault %d: %v", code, err)
	}
}

// getCurrentState returns the current state (thread-safe) using FSM
func (s *SumoSystem) getCurrentState() types.BotState {
	if s.machine != nil {
		return stateIDToBotState(s.machine.CurrentState())
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// getCurrentStateID returns the current FSM state ID
func (s *SumoSystem) getCurrentStateID() librefsm.StateID {
	if s.machine != nil {
		return s.machine.CurrentState()
	}
	return botStateToStateID(s.state)
}
