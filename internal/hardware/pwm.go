package hardware

import (
	"fmt"
	"os"
	"time"
)

// pwmChannel drives one channel of a sysfs PWM chip
// (/sys/class/pwm/pwmchipN/pwmM).
type pwmChannel struct {
	chip    int
	channel int
	period  int // nanoseconds
}

func newPwmChannel(chip, channel, periodNs int) *pwmChannel {
	return &pwmChannel{chip: chip, channel: channel, period: periodNs}
}

func (p *pwmChannel) attrPath(attr string) string {
	return fmt.Sprintf("/sys/class/pwm/pwmchip%d/pwm%d/%s", p.chip, p.channel, attr)
}

// Init exports the channel if needed and brings it up enabled at
// zero duty.
func (p *pwmChannel) Init() error {
	dir := fmt.Sprintf("/sys/class/pwm/pwmchip%d/pwm%d", p.chip, p.channel)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		exportPath := fmt.Sprintf("/sys/class/pwm/pwmchip%d/export", p.chip)
		if err := writeSysfsInt(exportPath, p.channel); err != nil {
			return fmt.Errorf("failed to export pwm%d on chip %d: %w", p.channel, p.chip, err)
		}
		// Attribute files appear shortly after export
		time.Sleep(10 * time.Millisecond)
	}

	if err := writeSysfsInt(p.attrPath("period"), p.period); err != nil {
		return err
	}
	if err := p.SetDuty(0); err != nil {
		return err
	}
	return p.Enable(true)
}

// SetPeriod retunes the carrier. The duty cycle is dropped to zero
// first because the kernel rejects a period below the current duty.
func (p *pwmChannel) SetPeriod(ns int) error {
	if ns <= 0 {
		return fmt.Errorf("invalid PWM period: %d", ns)
	}
	if err := p.SetDuty(0); err != nil {
		return err
	}
	if err := writeSysfsInt(p.attrPath("period"), ns); err != nil {
		return err
	}
	p.period = ns
	return nil
}

func (p *pwmChannel) SetDuty(ns int) error {
	if ns < 0 {
		ns = 0
	}
	if ns > p.period {
		ns = p.period
	}
	return writeSysfsInt(p.attrPath("duty_cycle"), ns)
}

func (p *pwmChannel) Enable(on bool) error {
	v := 0
	if on {
		v = 1
	}
	return writeSysfsInt(p.attrPath("enable"), v)
}

func (p *pwmChannel) Cleanup() {
	p.SetDuty(0)
	p.Enable(false)
}
