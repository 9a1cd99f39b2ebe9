package audio

import "fmt"

const (
	SampleRate = 16000
	Channels   = 1
)

// DataCallback receives one buffer of mono samples. It runs on the
// capture backend's goroutine, never the caller's.
type DataCallback func(samples []int16)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
	Gain       int // linear multiplier, values below 1 mean unity
}

func DefaultConfig() CaptureConfig {
	return CaptureConfig{SampleRate: SampleRate, Channels: Channels, Gain: 1}
}

// amplify scales samples in place with clipping.
func amplify(samples []int16, gain int) {
	if gain <= 1 {
		return
	}
	for i, s := range samples {
		v := int32(s) * int32(gain)
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		samples[i] = int16(v)
	}
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
	DeviceName() string
}

// FindDevice returns the capture device called name, or nil for the
// system default when name is empty.
func FindDevice(ctx Context, name string) (*DeviceInfo, error) {
	if name == "" {
		return nil, nil
	}
	devices, err := ctx.Devices()
	if err != nil {
		return nil, err
	}
	for i := range devices {
		if devices[i].Name == name {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("capture device %q not found", name)
}
