package encoder

import "fmt"

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

// Encoder accumulates 16-bit mono PCM into an in-memory container.
type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	Bytes() []byte
	TotalFrames() uint64
}

// Encode feeds pcm to enc in BlockSize pieces, closes it and returns
// the finished container.
func Encode(enc Encoder, pcm []int16) ([]byte, error) {
	for i := 0; i < len(pcm); i += BlockSize {
		end := min(i+BlockSize, len(pcm))
		if err := enc.EncodeBlock(pcm[i:end]); err != nil {
			return nil, fmt.Errorf("encode block at %d: %w", i, err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

// DurationSeconds is the playback length of n mono samples.
func DurationSeconds(n int) float64 {
	return float64(n) / SampleRate
}
