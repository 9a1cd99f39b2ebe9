package doctor

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"voicechat/audio"
	"voicechat/transcriber"
)

// Run prints the full report, then records a short sample and shows
// its transcript. It returns a process exit code.
func (d *Doctor) Run(ctx context.Context) int {
	fmt.Fprintln(d.Out, "voicechat doctor - system diagnostics")
	fmt.Fprintln(d.Out, "=====================================")

	allPass := d.Report(d.Checks())
	if allPass {
		allPass = d.checkMicAndTranscription(ctx)
	}

	fmt.Fprintln(d.Out)
	if allPass {
		fmt.Fprintln(d.Out, "All checks passed!")
		return 0
	}
	fmt.Fprintln(d.Out, "Some checks failed. See details above.")
	return 1
}

func (d *Doctor) checkMicAndTranscription(ctx context.Context) bool {
	fmt.Fprintln(d.Out)
	fmt.Fprintln(d.Out, "Microphone and transcription")

	actx, err := audio.NewContext()
	if err != nil {
		fmt.Fprintf(d.Out, "  FAIL: cannot connect to audio: %v\n", err)
		return false
	}
	defer actx.Close()

	device, err := audio.FindDevice(actx, d.Config.Device)
	if err != nil {
		fmt.Fprintf(d.Out, "  FAIL: %v\n", err)
		return false
	}

	tr, err := transcriber.New(d.Config.TranscriberOptions())
	if err != nil {
		fmt.Fprintf(d.Out, "  FAIL: %v\n", err)
		return false
	}
	defer tr.Close()

	fmt.Fprint(d.Out, "Press Enter and speak for 3 seconds...")
	_, _ = bufio.NewReader(os.Stdin).ReadString('\n')

	cfg := audio.DefaultConfig()
	cfg.Gain = d.Config.MicGain
	capture, err := actx.NewCapture(device, cfg)
	if err != nil {
		fmt.Fprintf(d.Out, "  FAIL: capture: %v\n", err)
		return false
	}
	defer capture.Close()

	stop := make(chan struct{})
	time.AfterFunc(3*time.Second, func() { close(stop) })
	pcm, err := audio.Record(capture, stop, nil)
	if err != nil {
		fmt.Fprintf(d.Out, "  FAIL: recording error: %v\n", err)
		return false
	}
	if len(pcm) == 0 {
		fmt.Fprintln(d.Out, "  FAIL: no audio captured")
		return false
	}
	fmt.Fprintf(d.Out, "  Recorded %.1fs from %s, transcribing...\n",
		float64(len(pcm))/audio.SampleRate, capture.DeviceName())

	result, err := transcriber.Transcribe(ctx, tr, pcm)
	if err != nil {
		fmt.Fprintf(d.Out, "  FAIL: transcription error: %v\n", err)
		return false
	}
	text := strings.TrimSpace(result.Text)
	if text == "" {
		text = "(no speech detected)"
	}
	fmt.Fprintf(d.Out, "  PASS: %s\n", text)
	return true
}
