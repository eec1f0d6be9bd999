// Package log persists episode records as compressed JSONL, one file
// per UTC day.
package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"craftstream.ai/internal/sim/session"
)

// EpisodeLogger appends one JSONL line per finished episode to
// <dataDir>/episodes/episodes-YYYY-MM-DD.jsonl.zst. Episodes are
// infrequent relative to steps, so rotation is daily and every write
// is flushed through the compressor.
type EpisodeLogger struct {
	dir string

	mu     sync.Mutex
	curDay string
	f      *os.File
	enc    *zstd.Encoder
	buf    *bufio.Writer
}

func NewEpisodeLogger(dataDir string) *EpisodeLogger {
	return &EpisodeLogger{dir: filepath.Join(dataDir, "episodes")}
}

func (l *EpisodeLogger) WriteEpisode(e session.EpisodeLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	day := time.Now().UTC().Format("2006-01-02")
	if day != l.curDay {
		if err := l.rotateLocked(day); err != nil {
			return err
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := l.buf.Write(b); err != nil {
		return err
	}
	if err := l.buf.WriteByte('\n'); err != nil {
		return err
	}
	return l.buf.Flush()
}

func (l *EpisodeLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

func (l *EpisodeLogger) rotateLocked(day string) error {
	if err := l.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(l.dir, fmt.Sprintf("episodes-%s.jsonl.zst", day))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	l.f = f
	l.enc = enc
	l.buf = bufio.NewWriterSize(enc, 64*1024)
	l.curDay = day
	return nil
}

func (l *EpisodeLogger) closeLocked() error {
	var err error
	if l.buf != nil {
		_ = l.buf.Flush()
	}
	if l.enc != nil {
		err = l.enc.Close()
		l.enc = nil
	}
	if l.f != nil {
		_ = l.f.Close()
		l.f = nil
	}
	l.buf = nil
	return err
}
