package transcriber

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"voicechat/encoder"
)

type transcribeFunc func(ctx context.Context, audio []byte, format string) (*Result, error)

// batchSession encodes blocks on a background goroutine while the
// caller is still feeding, then uploads the finished container on Close.
type batchSession struct {
	ctx        context.Context
	format     string
	transcribe transcribeFunc
	encoder    encoder.Encoder
	blockChan  chan []int16
	encodeDone chan struct{}
	encodeErr  error
	encodeTime time.Duration
	sampleBuf  []int16
	bufMu      sync.Mutex
}

func newBatchSession(ctx context.Context, enc encoder.Encoder, format string, transcribe transcribeFunc) *batchSession {
	bs := &batchSession{
		ctx:        ctx,
		format:     format,
		transcribe: transcribe,
		encoder:    enc,
		blockChan:  make(chan []int16, 64),
		encodeDone: make(chan struct{}),
	}

	go func() {
		defer close(bs.encodeDone)
		for block := range bs.blockChan {
			if bs.encodeErr != nil {
				continue
			}
			start := time.Now()
			bs.encodeErr = bs.encoder.EncodeBlock(block)
			bs.encodeTime += time.Since(start)
		}
	}()

	return bs
}

func (bs *batchSession) Feed(pcm []int16) {
	bs.bufMu.Lock()
	bs.sampleBuf = append(bs.sampleBuf, pcm...)
	var blocks [][]int16
	for len(bs.sampleBuf) >= encoder.BlockSize {
		block := make([]int16, encoder.BlockSize)
		copy(block, bs.sampleBuf[:encoder.BlockSize])
		bs.sampleBuf = bs.sampleBuf[encoder.BlockSize:]
		blocks = append(blocks, block)
	}
	bs.bufMu.Unlock()

	for _, block := range blocks {
		bs.blockChan <- block
	}
}

func (bs *batchSession) Close() (SessionResult, error) {
	bs.bufMu.Lock()
	if len(bs.sampleBuf) > 0 {
		partial := make([]int16, len(bs.sampleBuf))
		copy(partial, bs.sampleBuf)
		bs.sampleBuf = nil
		bs.blockChan <- partial
	}
	bs.bufMu.Unlock()

	close(bs.blockChan)
	<-bs.encodeDone

	if bs.encodeErr != nil {
		return SessionResult{}, bs.encodeErr
	}
	if err := bs.encoder.Close(); err != nil {
		return SessionResult{}, err
	}

	result, err := bs.transcribe(bs.ctx, bs.encoder.Bytes(), bs.format)
	if err != nil {
		return SessionResult{}, err
	}

	text := strings.TrimSpace(result.Text)
	rawSize := bs.encoder.TotalFrames() * 2
	encodedSize := uint64(len(bs.encoder.Bytes()))
	audioDuration := encoder.DurationSeconds(int(bs.encoder.TotalFrames()))

	stats := &BatchStats{
		AudioLengthS:     audioDuration,
		RawSizeKB:        float64(rawSize) / 1024,
		CompressedSizeKB: float64(encodedSize) / 1024,
		EncodeTimeMs:     float64(bs.encodeTime.Milliseconds()),
	}
	if m := result.Metrics; m != nil {
		stats.TTFBMs = float64(m.TTFB.Milliseconds())
		stats.TotalTimeMs = float64(m.Sum().Milliseconds())
		stats.ConnReused = m.ConnReused
	}

	return SessionResult{
		Text:      text,
		HasText:   text != "",
		NoSpeech:  text == "",
		RateLimit: result.RateLimit,
		Batch:     stats,
		Metrics:   bs.formatMetrics(stats, result),
	}, nil
}

func (bs *batchSession) formatMetrics(stats *BatchStats, result *Result) []string {
	lines := []string{
		fmt.Sprintf("audio:      %.1fs | %.1f KB -> %.1f KB %s",
			stats.AudioLengthS, stats.RawSizeKB, stats.CompressedSizeKB, bs.format),
		fmt.Sprintf("encode:     %.0fms (concurrent)", stats.EncodeTimeMs),
	}
	if m := result.Metrics; m != nil {
		reused := ""
		if m.ConnReused {
			reused = " (reused)"
		}
		lines = append(lines,
			fmt.Sprintf("conn_wait:  %dms%s", m.ConnWait.Milliseconds(), reused),
			fmt.Sprintf("req_body:   %dms", m.ReqBody.Milliseconds()),
			fmt.Sprintf("ttfb:       %dms", m.TTFB.Milliseconds()),
			fmt.Sprintf("total:      %dms", m.Sum().Milliseconds()),
		)
	}
	if result.Duration > 0 {
		lines = append(lines, fmt.Sprintf("api_dur:    %.2fs", result.Duration))
	}
	return lines
}
