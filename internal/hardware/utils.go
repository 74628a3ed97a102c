package hardware

import (
	"fmt"
	"os"
	"strconv"
)

func ReadAdcValue(device string, channel int) (int, error) {
	path := fmt.Sprintf("/sys/bus/iio/devices/%s/in_voltage%d_raw", device, channel)
	data, err := os.ReadFile(path)
	if err != nil {
		return -1, fmt.Errorf("failed reading %s: %w", path, err)
	}

	var value int
	if _, err := fmt.Sscanf(string(data), "%d", &value); err != nil {
		return -1, fmt.Errorf("failed parsing ADC value: %w", err)
	}

	return value, nil
}

// AdcAvailable probes each channel with a single read.
func AdcAvailable(device string, channels ...int) bool {
	for _, ch := range channels {
		if _, err := ReadAdcValue(device, ch); err != nil {
			return false
		}
	}
	return true
}

func writeSysfsInt(path string, value int) error {
	if err := os.WriteFile(path, []byte(strconv.Itoa(value)), 0644); err != nil {
		return fmt.Errorf("failed writing %s: %w", path, err)
	}
	return nil
}
