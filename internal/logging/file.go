package logging

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for log files.
const (
	maxLogSizeMB  = 10
	maxLogBackups = 3
	maxLogAgeDays = 28
)

// NewRotatingFile returns a writer that appends to path and rotates it by size.
func NewRotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxLogSizeMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}
}

// Output picks the log destination. With an empty path it is w alone; with a
// path it is the rotating file, tee'd into w when w is not nil. The returned
// closer releases the file.
func Output(w io.Writer, path string) (io.Writer, io.Closer) {
	if path == "" {
		return w, nopCloser{}
	}
	f := NewRotatingFile(path)
	if w == nil {
		return f, f
	}
	return io.MultiWriter(w, f), f
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
