package core

import (
	"time"

	"sumo-service/internal/hardware"
	"sumo-service/internal/types"
)

// MessagingClient defines the interface for Redis messaging operations needed by SumoSystem
type MessagingClient interface {
	Connect() error
	Close() error

	// State publishing
	PublishBotState(state types.BotState) error
	PublishScanDirection(dir types.ScanDirection) error
	PublishDetection(seen bool) error
	PublishReadyDeadline(deadline time.Time) error
	ClearReadyDeadline() error
	PublishMatchEvent(event string) error

	// Fault reporting
	ReportFaultPresent(code int, description string, timestamp int64, info string) error
	ReportFaultAbsent(code int) error

	// Settings
	GetHashField(hash, field string) (string, error)
}

// HardwareIO defines the interface for hardware I/O operations needed by SumoSystem
type HardwareIO interface {
	Initialize() error
	Cleanup()

	// Sensors
	ReadBoundary() ([3]int, error)
	ReadTarget() ([2]int, error)
	SensorsHealthy() bool

	// Actuators
	SetSpeeds(left, right int) error
	PlayCue(idx int) error

	// Input events
	RegisterInputCallback(channel string, callback hardware.InputCallback)
}
