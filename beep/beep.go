// Package beep plays short cues around recording.
package beep

import (
	"math"
	"sync"
	"sync/atomic"
)

const sampleRate = 44100

type Cue int

const (
	Start Cue = iota
	End
	Error
)

type tone struct {
	freq, volume, decay float64
	duration            float64
	repeat              int
	gap                 float64
}

var tones = map[Cue]tone{
	Start: {freq: 1200, volume: 0.5, decay: 60, duration: 0.08, repeat: 1},
	End:   {freq: 900, volume: 0.5, decay: 40, duration: 0.1, repeat: 1},
	Error: {freq: 350, volume: 0.6, decay: 30, duration: 0.08, repeat: 2, gap: 0.05},
}

var (
	disabled atomic.Bool
	cacheMu  sync.Mutex
	cache    = map[Cue][]int16{}
)

func Disable() { disabled.Store(true) }

func Enabled() bool { return !disabled.Load() }

// Samples returns the mono 44.1 kHz rendering of c.
func Samples(c Cue) []int16 {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if s, ok := cache[c]; ok {
		return s
	}
	t, ok := tones[c]
	if !ok {
		return nil
	}
	s := render(t)
	cache[c] = s
	return s
}

func render(t tone) []int16 {
	tick := decayingSine(t.freq, t.duration, t.volume, t.decay)
	gap := make([]int16, int(sampleRate*t.gap))
	out := make([]int16, 0, t.repeat*(len(tick)+len(gap)))
	for i := range t.repeat {
		if i > 0 {
			out = append(out, gap...)
		}
		out = append(out, tick...)
	}
	return out
}

func decayingSine(freq, duration, volume, decay float64) []int16 {
	n := int(sampleRate * duration)
	samples := make([]int16, n)
	for i := range samples {
		t := float64(i) / sampleRate
		samples[i] = int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * math.Exp(-t*decay))
	}
	return samples
}

// Play blocks until the cue has been handed to the sound server. Errors
// are ignored; a missing cue never matters.
func Play(c Cue) {
	if disabled.Load() {
		return
	}
	play(Samples(c))
}

func PlayAsync(c Cue) {
	go Play(c)
}
