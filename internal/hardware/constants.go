package hardware

const (
	// IIO device exposing the five analog sensor channels
	AdcDevice = "iio:device0"

	GpioKeysInput = "/dev/input/by-path/platform-gpio-keys-event"

	// Largest wheel speed magnitude SetSpeeds accepts; anything
	// beyond is clamped.
	MotorSpeedMax = 255

	// PWM carrier period for the motor drivers, nanoseconds (20 kHz)
	MotorPwmPeriodNs = 50000

	// Idle buzzer carrier, nanoseconds (880 Hz); cues retune it
	BuzzerPwmPeriodNs = 1136364
)

// ADC channels: three downward reflectance sensors watching the ring
// boundary, two forward range sensors watching the target.
const (
	AdcBoundaryLeft   = 0
	AdcBoundaryCenter = 1
	AdcBoundaryRight  = 2
	AdcTargetLeft     = 3
	AdcTargetRight    = 4
)

var DoMappings = map[string]struct {
	Chip int
	Line int
}{
	"motor_left_dir":  {0, 6},
	"motor_right_dir": {0, 7},
	"status_led":      {2, 4},
}

var PwmMappings = map[string]struct {
	Chip    int
	Channel int
}{
	"motor_left":  {0, 0},
	"motor_right": {0, 1},
	"buzzer":      {1, 0},
}
