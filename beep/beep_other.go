//go:build !linux

package beep

import (
	"encoding/binary"
	"sync"

	"github.com/gen2brain/malgo"
)

func play(samples []int16) {
	if len(samples) == 0 {
		return
	}
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.Playback.Format = malgo.FormatS16
	config.Playback.Channels = 1
	config.SampleRate = sampleRate

	var (
		pos      int
		doneOnce sync.Once
		done     = make(chan struct{})
	)
	callbacks := malgo.DeviceCallbacks{
		Data: func(out, _ []byte, _ uint32) {
			n := copy(out, data[pos:])
			pos += n
			clear(out[n:])
			if pos >= len(data) {
				doneOnce.Do(func() { close(done) })
			}
		},
	}
	device, err := malgo.InitDevice(ctx.Context, config, callbacks)
	if err != nil {
		return
	}
	defer device.Uninit()
	if err := device.Start(); err != nil {
		return
	}
	<-done
	_ = device.Stop()
}
