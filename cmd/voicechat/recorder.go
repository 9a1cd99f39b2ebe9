package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"voicechat/audio"
	"voicechat/beep"
	"voicechat/log"
	"voicechat/shutdown"
)

// micRecorder opens the capture backend on first use and records one
// utterance per call. On a terminal it shows the REC meter; otherwise
// Ctrl+C ends the recording.
type micRecorder struct {
	open       func() (audio.Context, error)
	device     string
	config     audio.CaptureConfig
	interrupts <-chan os.Signal
	tty        bool
	out        io.Writer

	once   sync.Once
	actx   audio.Context
	dev    *audio.DeviceInfo
	setupE error
}

func newMicRecorder(open func() (audio.Context, error), device string, gain int, interrupts <-chan os.Signal, tty bool, out io.Writer) *micRecorder {
	cfg := audio.DefaultConfig()
	if gain > 0 {
		cfg.Gain = gain
	}
	return &micRecorder{
		open:       open,
		device:     device,
		config:     cfg,
		interrupts: interrupts,
		tty:        tty,
		out:        out,
	}
}

func (r *micRecorder) setup() error {
	r.once.Do(func() {
		actx, err := r.open()
		if err != nil {
			r.setupE = fmt.Errorf("audio init: %w", err)
			return
		}
		dev, err := audio.FindDevice(actx, r.device)
		if err != nil {
			actx.Close()
			r.setupE = err
			return
		}
		r.actx, r.dev = actx, dev
	})
	return r.setupE
}

func (r *micRecorder) Record(ctx context.Context) ([]int16, error) {
	if err := r.setup(); err != nil {
		beep.PlayAsync(beep.Error)
		return nil, err
	}
	capture, err := r.actx.NewCapture(r.dev, r.config)
	if err != nil {
		beep.PlayAsync(beep.Error)
		return nil, fmt.Errorf("open microphone: %w", err)
	}
	defer capture.Close()

	log.Infof("recording device=%q", capture.DeviceName())
	beep.Play(beep.Start)

	stop := make(chan struct{})
	var stopOnce sync.Once
	closeStop := func() { stopOnce.Do(func() { close(stop) }) }

	var audioDone <-chan struct{}
	if d, ok := capture.(interface{ AudioDone() <-chan struct{} }); ok {
		audioDone = d.AudioDone()
	}

	var pcm []int16
	if r.tty {
		pcm, err = r.recordWithMeter(ctx, capture, stop, closeStop, audioDone)
	} else {
		fmt.Fprintln(r.out, "Recording... press Ctrl+C to stop.")
		go func() {
			select {
			case <-r.interrupts:
			case <-audioDone:
			case <-ctx.Done():
			case <-stop:
			}
			closeStop()
		}()
		pcm, err = audio.Record(capture, stop, nil)
		closeStop()
	}
	if err != nil {
		beep.PlayAsync(beep.Error)
		return nil, err
	}
	beep.PlayAsync(beep.End)
	log.Infof("recorded samples=%d", len(pcm))
	return pcm, nil
}

func (r *micRecorder) recordWithMeter(ctx context.Context, capture audio.CaptureDevice, stop chan struct{}, closeStop func(), audioDone <-chan struct{}) ([]int16, error) {
	gauge := &levelGauge{}
	p := tea.NewProgram(newMeter(gauge, capture.DeviceName()),
		tea.WithContext(ctx),
		tea.WithOutput(r.out),
	)

	uiDone := make(chan struct{})
	go func() {
		defer close(uiDone)
		if _, err := p.Run(); err != nil && ctx.Err() == nil {
			log.Warnf("meter: %v", err)
		}
		closeStop()
	}()
	go func() {
		select {
		case <-audioDone:
			p.Quit()
		case <-stop:
		}
	}()

	pcm, err := audio.Record(capture, stop, gauge.Set)
	if err != nil {
		p.Quit()
	}
	<-uiDone
	// Ctrl+C in raw mode reaches the meter as a key, but a signal sent
	// from outside would still be queued for the next prompt.
	shutdown.Drain(r.interrupts)
	return pcm, err
}

// Close releases the capture backend.
func (r *micRecorder) Close() {
	if r.actx != nil {
		r.actx.Close()
	}
}
