package hardware

import (
	"fmt"
	"log"

	"github.com/warthog618/go-gpiocdev"
)

// MotorDriver turns signed wheel speeds into H-bridge direction
// levels and PWM duty. Speeds beyond MotorSpeedMax clamp silently.
type MotorDriver struct {
	logger *log.Logger
	left   wheel
	right  wheel
	lastL  int
	lastR  int
}

type wheel struct {
	pwm *pwmChannel
	dir *gpiocdev.Line
}

const speedUnset = 1 << 30

func NewMotorDriver(logger *log.Logger, leftPwm, rightPwm *pwmChannel, leftDir, rightDir *gpiocdev.Line) *MotorDriver {
	return &MotorDriver{
		logger: logger,
		left:   wheel{pwm: leftPwm, dir: leftDir},
		right:  wheel{pwm: rightPwm, dir: rightDir},
		lastL:  speedUnset,
		lastR:  speedUnset,
	}
}

// SetSpeeds applies one command to both wheels. Redundant commands
// skip the sysfs writes.
func (m *MotorDriver) SetSpeeds(left, right int) error {
	left = clampMotor(left)
	right = clampMotor(right)

	if left == m.lastL && right == m.lastR {
		return nil
	}

	if err := m.left.apply(left); err != nil {
		return fmt.Errorf("left wheel: %w", err)
	}
	if err := m.right.apply(right); err != nil {
		return fmt.Errorf("right wheel: %w", err)
	}

	m.lastL, m.lastR = left, right
	m.logger.Printf("Set speeds left=%d right=%d", left, right)
	return nil
}

func (m *MotorDriver) Stop() error {
	return m.SetSpeeds(0, 0)
}

func (w wheel) apply(speed int) error {
	dir := 0
	if speed < 0 {
		dir = 1
	}
	if err := w.dir.SetValue(dir); err != nil {
		return fmt.Errorf("failed to set direction: %w", err)
	}
	return w.pwm.SetDuty(dutyForSpeed(speed))
}

func clampMotor(v int) int {
	if v > MotorSpeedMax {
		return MotorSpeedMax
	}
	if v < -MotorSpeedMax {
		return -MotorSpeedMax
	}
	return v
}

func dutyForSpeed(speed int) int {
	if speed < 0 {
		speed = -speed
	}
	if speed > MotorSpeedMax {
		speed = MotorSpeedMax
	}
	return speed * MotorPwmPeriodNs / MotorSpeedMax
}
