package types

// Channel indexes into SensorSnapshot.Boundary.
const (
	BoundaryLeft   = 0
	BoundaryCenter = 1
	BoundaryRight  = 2
)

// Channel indexes into SensorSnapshot.Target.
const (
	TargetLeft  = 0
	TargetRight = 1
)

// SensorSnapshot holds one control cycle's raw readings. Channels
// that could not be read are zero.
type SensorSnapshot struct {
	Boundary [3]int
	Target   [2]int
}

type ScanDirection int

const (
	ScanClockwise ScanDirection = iota
	ScanCounterClockwise
)

func (d ScanDirection) Opposite() ScanDirection {
	if d == ScanClockwise {
		return ScanCounterClockwise
	}
	return ScanClockwise
}

func (d ScanDirection) String() string {
	if d == ScanClockwise {
		return "clockwise"
	}
	return "counter-clockwise"
}

// SpeedCommand is a signed wheel speed pair. The zero value stops
// both wheels.
type SpeedCommand struct {
	Left  int
	Right int
}

// Rotation is an in-place turn. Clockwise means left wheel forward,
// right wheel backward.
func Rotation(dir ScanDirection, speed int) SpeedCommand {
	if dir == ScanClockwise {
		return SpeedCommand{Left: speed, Right: -speed}
	}
	return SpeedCommand{Left: -speed, Right: speed}
}

// Clamp bounds both wheels to [-max, max].
func (c SpeedCommand) Clamp(max int) SpeedCommand {
	return SpeedCommand{Left: clampSpeed(c.Left, max), Right: clampSpeed(c.Right, max)}
}

func (c SpeedCommand) IsZero() bool {
	return c.Left == 0 && c.Right == 0
}

func clampSpeed(v, max int) int {
	if v > max {
		return max
	}
	if v < -max {
		return -max
	}
	return v
}
