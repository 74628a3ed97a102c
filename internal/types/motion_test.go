package types

import "testing"

func TestRotationDirections(t *testing.T) {
	if got := Rotation(ScanClockwise, 140); got != (SpeedCommand{Left: 140, Right: -140}) {
		t.Errorf("Clockwise: expected {140 -140}, got %+v", got)
	}
	if got := Rotation(ScanCounterClockwise, 140); got != (SpeedCommand{Left: -140, Right: 140}) {
		t.Errorf("Counter-clockwise: expected {-140 140}, got %+v", got)
	}
}

func TestScanDirectionOpposite(t *testing.T) {
	if ScanClockwise.Opposite() != ScanCounterClockwise {
		t.Error("Expected clockwise to oppose counter-clockwise")
	}
	if ScanCounterClockwise.Opposite() != ScanClockwise {
		t.Error("Expected counter-clockwise to oppose clockwise")
	}
	if got := ScanClockwise.String(); got != "clockwise" {
		t.Errorf("Expected clockwise, got %s", got)
	}
	if got := ScanCounterClockwise.String(); got != "counter-clockwise" {
		t.Errorf("Expected counter-clockwise, got %s", got)
	}
}

func TestSpeedCommandClamp(t *testing.T) {
	cases := []struct {
		name string
		in   SpeedCommand
		want SpeedCommand
	}{
		{"within range", SpeedCommand{Left: 100, Right: -100}, SpeedCommand{Left: 100, Right: -100}},
		{"at limit", SpeedCommand{Left: 255, Right: -255}, SpeedCommand{Left: 255, Right: -255}},
		{"over max", SpeedCommand{Left: 300, Right: 256}, SpeedCommand{Left: 255, Right: 255}},
		{"under min", SpeedCommand{Left: -300, Right: -256}, SpeedCommand{Left: -255, Right: -255}},
		{"mixed", SpeedCommand{Left: -400, Right: 400}, SpeedCommand{Left: -255, Right: 255}},
	}
	for _, c := range cases {
		if got := c.in.Clamp(255); got != c.want {
			t.Errorf("%s: expected %+v, got %+v", c.name, c.want, got)
		}
	}
}

func TestSpeedCommandIsZero(t *testing.T) {
	if !(SpeedCommand{}).IsZero() {
		t.Error("Expected zero value to be zero")
	}
	if (SpeedCommand{Left: 1}).IsZero() {
		t.Error("Expected nonzero left to not be zero")
	}
	if (SpeedCommand{Right: -1}).IsZero() {
		t.Error("Expected nonzero right to not be zero")
	}
}
