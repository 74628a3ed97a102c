package config

import (
	"fmt"
	"strconv"
	"time"
)

// Settings hash keys that may override defaults at startup.
const (
	KeyReadyDelayMs   = "sumo.ready-delay-ms"
	KeyStuckTimeoutMs = "sumo.stuck-timeout-ms"
)

var SettingKeys = []string{KeyReadyDelayMs, KeyStuckTimeoutMs}

// Config holds every tunable the controller reads. Values are fixed
// once the system is constructed; there is no runtime
// reconfiguration.
type Config struct {
	ReadyDelay      time.Duration
	StuckTimeout    time.Duration
	ReverseDuration time.Duration
	TurnDuration    time.Duration
	PollInterval    time.Duration

	BoundaryThreshold int
	TargetThreshold   int

	MaxSpeed         int
	SearchSpeed      int
	PursuitSpeed     int
	PursuitTurnSpeed int
	ReverseSpeed     int
	EvadeTurnSpeed   int
}

// Default returns the tuning for the reference chassis.
func Default() Config {
	return Config{
		ReadyDelay:      5 * time.Second,
		StuckTimeout:    2 * time.Second,
		ReverseDuration: 450 * time.Millisecond,
		TurnDuration:    350 * time.Millisecond,
		PollInterval:    10 * time.Millisecond,

		BoundaryThreshold: 500,
		TargetThreshold:   300,

		MaxSpeed:         255,
		SearchSpeed:      140,
		PursuitSpeed:     255,
		PursuitTurnSpeed: 140,
		ReverseSpeed:     200,
		EvadeTurnSpeed:   170,
	}
}

// Override applies one settings-hash entry. Unknown keys and values
// that do not parse to a positive millisecond count are rejected.
func (c *Config) Override(key, value string) error {
	ms, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	if ms <= 0 {
		return fmt.Errorf("setting %s: value %d must be positive", key, ms)
	}
	d := time.Duration(ms) * time.Millisecond
	switch key {
	case KeyReadyDelayMs:
		c.ReadyDelay = d
	case KeyStuckTimeoutMs:
		c.StuckTimeout = d
	default:
		return fmt.Errorf("setting %s: unknown key", key)
	}
	return nil
}
