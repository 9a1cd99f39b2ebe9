package encoder

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

// WavEncoder builds a 16 kHz mono PCM WAV in memory. The wav encoder
// patches its header on Close, so the sink has to seek.
type WavEncoder struct {
	sink        *writerseeker.WriterSeeker
	enc         *wav.Encoder
	totalFrames uint64
	data        []byte
	closed      bool
}

func NewWav() *WavEncoder {
	sink := &writerseeker.WriterSeeker{}
	return &WavEncoder{
		sink: sink,
		enc:  wav.NewEncoder(sink, SampleRate, BitsPerSample, Channels, 1),
	}
}

// EncodeWAV is Encode with a fresh WavEncoder.
func EncodeWAV(pcm []int16) ([]byte, error) {
	return Encode(NewWav(), pcm)
}

func (e *WavEncoder) EncodeBlock(block []int16) error {
	if len(block) == 0 {
		return nil
	}
	ints := make([]int, len(block))
	for i, s := range block {
		ints[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: Channels, SampleRate: SampleRate},
		Data:           ints,
		SourceBitDepth: BitsPerSample,
	}
	if err := e.enc.Write(buf); err != nil {
		return fmt.Errorf("writing wav samples: %w", err)
	}
	e.totalFrames += uint64(len(block))
	return nil
}

func (e *WavEncoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if err := e.enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	data, err := io.ReadAll(e.sink.Reader())
	if err != nil {
		return fmt.Errorf("reading wav: %w", err)
	}
	e.data = data
	return nil
}

// Bytes is only populated after Close.
func (e *WavEncoder) Bytes() []byte { return e.data }

func (e *WavEncoder) TotalFrames() uint64 { return e.totalFrames }

// WriteWAVFile encodes pcm to path.
func WriteWAVFile(path string, pcm []int16) error {
	data, err := EncodeWAV(pcm)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// DecodeWAV reads 16-bit mono PCM. Other layouts are rejected rather
// than resampled.
func DecodeWAV(r io.ReadSeeker) ([]int16, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid wav file")
	}
	if dec.NumChans != Channels || dec.BitDepth != BitsPerSample {
		return nil, fmt.Errorf("unsupported wav layout: %d channels, %d bits", dec.NumChans, dec.BitDepth)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding wav: %w", err)
	}
	pcm := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		pcm[i] = int16(v)
	}
	return pcm, nil
}

// ReadWAVFile loads a WAV from disk. The sample rate is reported so
// callers can refuse recordings that don't match SampleRate.
func ReadWAVFile(path string) ([]int16, uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	dec := wav.NewDecoder(bytes.NewReader(data))
	dec.ReadInfo()
	rate := dec.SampleRate
	pcm, err := DecodeWAV(bytes.NewReader(data))
	if err != nil {
		return nil, 0, err
	}
	return pcm, rate, nil
}
