package audio

import (
	"math"
	"sync"
)

// Record captures until stop fires and returns every sample in arrival
// order. It returns nil when no buffer arrived before stop. onLevel, if
// set, receives the RMS level (0..1) of each buffer.
func Record(capture CaptureDevice, stop <-chan struct{}, onLevel func(float64)) ([]int16, error) {
	var (
		mu      sync.Mutex
		buffers [][]int16
		total   int
		stopped bool
	)

	capture.SetCallback(func(samples []int16) {
		if len(samples) == 0 {
			return
		}
		buf := make([]int16, len(samples))
		copy(buf, samples)

		mu.Lock()
		if stopped {
			mu.Unlock()
			return
		}
		buffers = append(buffers, buf)
		total += len(buf)
		mu.Unlock()

		if onLevel != nil {
			onLevel(Level(buf))
		}
	})

	if err := capture.Start(); err != nil {
		capture.ClearCallback()
		return nil, err
	}

	<-stop

	capture.Stop()
	capture.ClearCallback()

	mu.Lock()
	stopped = true
	defer mu.Unlock()

	if total == 0 {
		return nil, nil
	}
	out := make([]int16, 0, total)
	for _, b := range buffers {
		out = append(out, b...)
	}
	return out, nil
}

// Level is the RMS of samples normalised to 0..1.
func Level(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sumSquares float64
	for _, s := range samples {
		n := float64(s) / 32768.0
		sumSquares += n * n
	}
	return math.Sqrt(sumSquares / float64(len(samples)))
}
