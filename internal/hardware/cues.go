package hardware

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Feedback cues
const (
	CueBoot = iota
	CueArmed
	CueCountdownTick
	CueMatchStart
	CueTargetAcquired
	CueBoundary
	CueFault
)

// cueStep is one buzzer/LED segment. freq 0 means silence.
type cueStep struct {
	freq int // Hz
	led  bool
	dur  time.Duration
}

var cuePatterns = map[int][]cueStep{
	CueBoot: {
		{freq: 880, led: true, dur: 80 * time.Millisecond},
	},
	CueArmed: {
		{freq: 1320, led: true, dur: 120 * time.Millisecond},
		{freq: 0, led: false, dur: 60 * time.Millisecond},
		{freq: 1320, led: true, dur: 120 * time.Millisecond},
	},
	CueCountdownTick: {
		{freq: 990, led: true, dur: 90 * time.Millisecond},
	},
	CueMatchStart: {
		{freq: 1760, led: true, dur: 250 * time.Millisecond},
	},
	CueTargetAcquired: {
		{freq: 2200, led: true, dur: 60 * time.Millisecond},
	},
	CueBoundary: {
		{freq: 660, led: true, dur: 60 * time.Millisecond},
		{freq: 440, led: false, dur: 60 * time.Millisecond},
	},
	CueFault: {
		{freq: 330, led: true, dur: 400 * time.Millisecond},
		{freq: 0, led: false, dur: 100 * time.Millisecond},
		{freq: 330, led: true, dur: 400 * time.Millisecond},
	},
}

// CuePlayer renders feedback cues on the buzzer and status LED.
// Playback is fire and forget on its own goroutine; a request made
// while a cue is still playing is dropped.
type CuePlayer struct {
	logger  *log.Logger
	buzzer  *pwmChannel
	led     *gpiocdev.Line
	mu      sync.Mutex
	playing bool
}

func NewCuePlayer(logger *log.Logger, buzzer *pwmChannel, led *gpiocdev.Line) *CuePlayer {
	return &CuePlayer{logger: logger, buzzer: buzzer, led: led}
}

func (p *CuePlayer) Play(idx int) error {
	steps, ok := cuePatterns[idx]
	if !ok {
		return fmt.Errorf("unknown cue index: %d", idx)
	}

	p.mu.Lock()
	if p.playing {
		p.mu.Unlock()
		return nil
	}
	p.playing = true
	p.mu.Unlock()

	go p.run(idx, steps)
	return nil
}

func (p *CuePlayer) run(idx int, steps []cueStep) {
	for _, st := range steps {
		p.setTone(st.freq)
		p.setLed(st.led)
		time.Sleep(st.dur)
	}
	p.setTone(0)
	p.setLed(false)

	p.mu.Lock()
	p.playing = false
	p.mu.Unlock()
}

func (p *CuePlayer) setTone(freq int) {
	if freq <= 0 {
		if err := p.buzzer.SetDuty(0); err != nil {
			p.logger.Printf("Failed to silence buzzer: %v", err)
		}
		return
	}

	period := int(time.Second / time.Duration(freq))
	if err := p.buzzer.SetPeriod(period); err != nil {
		p.logger.Printf("Failed to set buzzer period: %v", err)
		return
	}
	if err := p.buzzer.SetDuty(period / 2); err != nil {
		p.logger.Printf("Failed to set buzzer duty: %v", err)
	}
}

func (p *CuePlayer) setLed(on bool) {
	val := 0
	if on {
		val = 1
	}
	if err := p.led.SetValue(val); err != nil {
		p.logger.Printf("Failed to set status LED: %v", err)
	}
}
