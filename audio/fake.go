package audio

import (
	"sync"
	"time"
)

const fakeFrameSize = 1024

type FakeContext struct {
	pcm      []int16
	realtime bool
}

// NewFakeContext builds a context whose captures replay pcm. With
// realtime set, buffers are paced at the capture sample rate.
func NewFakeContext(pcm []int16, realtime bool) *FakeContext {
	return &FakeContext{pcm: pcm, realtime: realtime}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "fake"}}, nil
}

func (f *FakeContext) Close() {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	return &FakeCapture{pcm: f.pcm, realtime: f.realtime, audioDone: make(chan struct{})}, nil
}

type FakeCapture struct {
	pcm       []int16
	realtime  bool
	audioDone chan struct{}

	mu       sync.Mutex
	cb       DataCallback
	stopCh   chan struct{}
	feedDone chan struct{}
	started  bool
}

// AudioDone closes once every prerecorded sample has been delivered.
func (f *FakeCapture) AudioDone() <-chan struct{} { return f.audioDone }

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) DeviceName() string { return "fake" }

func (f *FakeCapture) callback() DataCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb
}

func (f *FakeCapture) Start() error {
	f.stopCh = make(chan struct{})
	f.feedDone = make(chan struct{})
	f.started = true

	interval := time.Duration(fakeFrameSize) * time.Second / SampleRate
	go func() {
		defer close(f.feedDone)
		defer close(f.audioDone)
		for pos := 0; pos < len(f.pcm); pos += fakeFrameSize {
			select {
			case <-f.stopCh:
				return
			default:
			}
			end := min(pos+fakeFrameSize, len(f.pcm))
			if cb := f.callback(); cb != nil {
				cb(f.pcm[pos:end])
			}
			if f.realtime {
				select {
				case <-f.stopCh:
					return
				case <-time.After(interval):
				}
			}
		}
	}()
	return nil
}

func (f *FakeCapture) Stop() {
	if !f.started {
		return
	}
	select {
	case <-f.stopCh:
	default:
		close(f.stopCh)
	}
	<-f.feedDone
	f.started = false
}

func (f *FakeCapture) Close() { f.Stop() }
