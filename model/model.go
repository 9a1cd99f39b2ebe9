// Package model downloads speech-recognition model files.
package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Fetch downloads url to dest. The body is staged in a temp file next to
// dest and renamed into place only after it is complete and, when
// wantSHA256 is set, verified. progress may be nil.
func Fetch(ctx context.Context, url, dest, wantSHA256 string, progress io.Writer) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".model-download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		tmpFile.Close()
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("download model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		tmpFile.Close()
		return fmt.Errorf("download model: %s", resp.Status)
	}

	hasher := sha256.New()
	src := io.Reader(resp.Body)
	if progress != nil && resp.ContentLength > 0 {
		src = &progressReader{r: resp.Body, total: resp.ContentLength, out: progress}
	}
	if _, err := io.Copy(io.MultiWriter(tmpFile, hasher), src); err != nil {
		tmpFile.Close()
		return fmt.Errorf("write model: %w", err)
	}
	if progress != nil && resp.ContentLength > 0 {
		fmt.Fprintln(progress)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("write model: %w", err)
	}

	if wantSHA256 != "" {
		got := hex.EncodeToString(hasher.Sum(nil))
		if !strings.EqualFold(got, wantSHA256) {
			return fmt.Errorf("checksum mismatch: got %s, want %s", short(got), short(wantSHA256))
		}
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("install model: %w", err)
	}
	return nil
}

// Present reports whether path exists and is non-empty.
func Present(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}

func short(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

type progressReader struct {
	r     io.Reader
	out   io.Writer
	total int64
	read  int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	pct := float64(p.read) / float64(p.total) * 100
	fmt.Fprintf(p.out, "\r  %.0f%% (%d / %d MB)", pct, p.read>>20, p.total>>20)
	return n, err
}
