package hardware

import (
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
	"unsafe"

	"github.com/warthog618/go-gpiocdev"
	"golang.org/x/sys/unix"
)

const (
	EV_SYN = 0x00
	EV_KEY = 0x01

	KEY_START = 256 // BTN_0: start_button
)

// keycodeChannels maps gpio-keys codes to input channel names. The
// gpio-keys driver debounces in the kernel, so press/release events
// arrive as clean edges.
var keycodeChannels = map[uint16]string{
	KEY_START: "start_button",
}

type InputEvent struct {
	Sec   int32
	Usec  int32
	Type  uint16
	Code  uint16
	Value int32
}

type InputCallback func(channel string, value bool) error

type LinuxHardwareIO struct {
	logger          *log.Logger
	inputDevicePath string
	inputFile       *os.File
	chips           map[int]*gpiocdev.Chip
	lines           map[string]*gpiocdev.Line
	pwms            map[string]*pwmChannel
	motors          *MotorDriver
	cues            *CuePlayer
	inputCallbacks  map[string]InputCallback
	adcOK           bool
	mu              sync.RWMutex
	stopChan        chan struct{}
	activeKeys      map[uint16]bool
}

func NewLinuxHardwareIO() *LinuxHardwareIO {
	return &LinuxHardwareIO{
		logger:          log.New(log.Writer(), "HardwareIO: ", log.LstdFlags),
		inputDevicePath: GpioKeysInput,
		chips:           make(map[int]*gpiocdev.Chip),
		lines:           make(map[string]*gpiocdev.Line),
		pwms:            make(map[string]*pwmChannel),
		inputCallbacks:  make(map[string]InputCallback),
		stopChan:        make(chan struct{}),
		activeKeys:      make(map[uint16]bool),
	}
}

func (io *LinuxHardwareIO) Initialize() error {
	io.logger.Printf("Initializing hardware IO")

	// GPIO outputs, all low at boot
	for name, mapping := range DoMappings {
		chip, ok := io.chips[mapping.Chip]
		if !ok {
			c, err := gpiocdev.NewChip(fmt.Sprintf("gpiochip%d", mapping.Chip))
			if err != nil {
				return fmt.Errorf("failed to open GPIO chip %d: %w", mapping.Chip, err)
			}
			io.chips[mapping.Chip] = c
			chip = c
		}

		line, err := chip.RequestLine(mapping.Line,
			gpiocdev.AsOutput(0),
			gpiocdev.WithConsumer("sumo-service"))
		if err != nil {
			return fmt.Errorf("failed to request GPIO line %d: %w", mapping.Line, err)
		}

		io.lines[name] = line
		io.logger.Printf("Configured DO %s: chip=%d, line=%d", name, mapping.Chip, mapping.Line)
	}

	// PWM channels for wheels and buzzer
	for name, mapping := range PwmMappings {
		period := MotorPwmPeriodNs
		if name == "buzzer" {
			period = BuzzerPwmPeriodNs
		}
		ch := newPwmChannel(mapping.Chip, mapping.Channel, period)
		if err := ch.Init(); err != nil {
			return fmt.Errorf("failed to initialize PWM %s: %w", name, err)
		}
		io.pwms[name] = ch
		io.logger.Printf("Configured PWM %s: chip=%d, channel=%d", name, mapping.Chip, mapping.Channel)
	}

	io.motors = NewMotorDriver(io.logger,
		io.pwms["motor_left"], io.pwms["motor_right"],
		io.lines["motor_left_dir"], io.lines["motor_right_dir"])
	io.cues = NewCuePlayer(io.logger, io.pwms["buzzer"], io.lines["status_led"])

	// Sensor probe. A missing ADC is not fatal here; the controller
	// refuses to arm while SensorsHealthy is false.
	io.adcOK = AdcAvailable(AdcDevice,
		AdcBoundaryLeft, AdcBoundaryCenter, AdcBoundaryRight,
		AdcTargetLeft, AdcTargetRight)
	if !io.adcOK {
		io.logger.Printf("Warning: ADC device %s unavailable, arming will be refused", AdcDevice)
	}

	// Start button input device
	io.logger.Printf("Opening input device: %s", io.inputDevicePath)
	var err error
	io.inputFile, err = os.OpenFile(io.inputDevicePath, os.O_RDONLY, 0)
	if err != nil {
		return fmt.Errorf("failed to open input device %s: %w", io.inputDevicePath, err)
	}

	if err := io.readInitialState(); err != nil {
		io.logger.Printf("Warning: Failed to read initial input states: %v", err)
	}

	go io.monitorInputs()

	return nil
}

// readInitialState snapshots held keys via EVIOCGKEY so a button held
// across boot is not mistaken for a fresh press later.
func (io *LinuxHardwareIO) readInitialState() error {
	buffer := make([]byte, 128)
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		uintptr(io.inputFile.Fd()),
		uintptr(0x80804518), // EVIOCGKEY(len)
		uintptr(unsafe.Pointer(&buffer[0])),
	)
	if errno != 0 {
		return fmt.Errorf("EVIOCGKEY ioctl failed: %v", errno)
	}

	io.mu.Lock()
	defer io.mu.Unlock()

	for code, channel := range keycodeChannels {
		byteOffset := int(code / 8)
		bitOffset := code % 8
		if byteOffset >= len(buffer) {
			continue
		}
		if buffer[byteOffset]&(1<<bitOffset) != 0 {
			io.activeKeys[code] = true
			io.logger.Printf("Initial state: %s (code %d) is pressed", channel, code)
		}
	}

	return nil
}

func (io *LinuxHardwareIO) monitorInputs() {
	buffer := make([]byte, 16)

	for {
		select {
		case <-io.stopChan:
			io.logger.Printf("Stopping input monitoring")
			return
		default:
			n, err := io.inputFile.Read(buffer)
			if err != nil {
				select {
				case <-io.stopChan:
					return
				default:
				}
				io.logger.Printf("Error reading input: %v", err)
				time.Sleep(100 * time.Millisecond)
				continue
			}
			if n != len(buffer) {
				io.logger.Printf("Incomplete read: got %d bytes, expected %d", n, len(buffer))
				continue
			}

			typ := binary.LittleEndian.Uint16(buffer[8:10])
			code := binary.LittleEndian.Uint16(buffer[10:12])
			val := int32(binary.LittleEndian.Uint32(buffer[12:16]))

			if typ != EV_KEY {
				continue
			}

			io.handleKeyEvent(&InputEvent{
				Sec:   int32(binary.LittleEndian.Uint32(buffer[0:4])),
				Usec:  int32(binary.LittleEndian.Uint32(buffer[4:8])),
				Type:  typ,
				Code:  code,
				Value: val,
			})
		}
	}
}

func (io *LinuxHardwareIO) handleKeyEvent(event *InputEvent) {
	// Auto-repeat events carry value 2
	if event.Value > 1 {
		return
	}

	channel, known := keycodeChannels[event.Code]
	if !known {
		return
	}

	pressed := event.Value == 1
	io.logger.Printf("Key event: channel=%s pressed=%v", channel, pressed)

	io.mu.Lock()
	if pressed {
		io.activeKeys[event.Code] = true
	} else {
		delete(io.activeKeys, event.Code)
	}
	callback, exists := io.inputCallbacks[channel]
	io.mu.Unlock()

	if !exists {
		return
	}
	if err := callback(channel, pressed); err != nil {
		io.logger.Printf("Error in callback for %s: %v", channel, err)
	}
}

func (io *LinuxHardwareIO) RegisterInputCallback(channel string, callback InputCallback) {
	io.mu.Lock()
	defer io.mu.Unlock()
	io.inputCallbacks[channel] = callback
	io.logger.Printf("Registered callback for channel: %s", channel)
}

// ReadBoundary reads the three boundary channels. Channels that fail
// read as zero; the returned error reports the first failure.
func (io *LinuxHardwareIO) ReadBoundary() ([3]int, error) {
	var out [3]int
	channels := [3]int{AdcBoundaryLeft, AdcBoundaryCenter, AdcBoundaryRight}

	var firstErr error
	for i, ch := range channels {
		v, err := ReadAdcValue(AdcDevice, ch)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out[i] = v
	}
	return out, firstErr
}

// ReadTarget reads the two target channels with the same degraded
// semantics as ReadBoundary.
func (io *LinuxHardwareIO) ReadTarget() ([2]int, error) {
	var out [2]int
	channels := [2]int{AdcTargetLeft, AdcTargetRight}

	var firstErr error
	for i, ch := range channels {
		v, err := ReadAdcValue(AdcDevice, ch)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out[i] = v
	}
	return out, firstErr
}

func (io *LinuxHardwareIO) SetSpeeds(left, right int) error {
	return io.motors.SetSpeeds(left, right)
}

func (io *LinuxHardwareIO) SensorsHealthy() bool {
	return io.adcOK
}

func (io *LinuxHardwareIO) PlayCue(idx int) error {
	return io.cues.Play(idx)
}

func (io *LinuxHardwareIO) Cleanup() {
	close(io.stopChan)

	io.mu.Lock()
	defer io.mu.Unlock()

	io.logger.Printf("Cleaning up hardware resources")

	if io.motors != nil {
		if err := io.motors.Stop(); err != nil {
			io.logger.Printf("Failed to stop motors: %v", err)
		}
	}

	for name, ch := range io.pwms {
		ch.Cleanup()
		io.logger.Printf("Disabled PWM %s", name)
	}

	if io.inputFile != nil {
		io.inputFile.Close()
		io.logger.Printf("Closed input device")
	}

	for name, line := range io.lines {
		line.Close()
		io.logger.Printf("Closed GPIO line for %s", name)
	}

	for id, chip := range io.chips {
		chip.Close()
		io.logger.Printf("Closed GPIO chip %d", id)
	}

	io.logger.Printf("Hardware cleanup complete")
}
