// Package spawn runs a single child process with all three standard streams
// attached to pipes and collects everything it leaves behind.
package spawn

import (
	"os"
	"time"

	"github.com/josephlewis42/cronsh/core/buffer"
	"github.com/josephlewis42/cronsh/core/logger"
	"github.com/spf13/afero"
)

const (
	// StatusFailed is the status of a command that never ran or whose exit
	// status couldn't be determined, including children killed by a signal.
	StatusFailed = -1

	// StatusExecFailed is the status of a command whose executable couldn't
	// be started. It is the same code a child gets from exit(-1).
	StatusExecFailed = 255

	// DefaultChunkSize is the most read from a child pipe at once.
	DefaultChunkSize = 64 * 1024

	// DefaultPollTimeout bounds a single wait for pipe readiness.
	DefaultPollTimeout = time.Second
)

// Usage is the child's resource accounting as reported by the OS. Fields are
// copied verbatim, so MaxRSS is in KiB on Linux and bytes on Darwin.
type Usage struct {
	UserTime   time.Duration
	SystemTime time.Duration
	MaxRSS     int64
	MinFlt     int64
	MajFlt     int64
	InBlock    int64
	OutBlock   int64
	NVCSw      int64
	NIVCSw     int64
}

// Result is everything known about one run.
//
// If Signal is non-zero the child was killed by that signal and Status is
// StatusFailed. Otherwise Status is the exit code, or StatusFailed if the
// child never started.
type Result struct {
	PID    int
	Status int
	Signal int
	Stdout *buffer.Buffer
	Stderr *buffer.Buffer
	Usage  Usage
}

func newResult() Result {
	return Result{
		Status: StatusFailed,
		Stdout: buffer.New(buffer.DefaultStep),
		Stderr: buffer.New(buffer.DefaultStep),
	}
}

// Signaled reports whether the child was killed by a signal.
func (r *Result) Signaled() bool {
	return r.Signal != 0
}

// Spawner runs commands. The zero value is not usable, use New.
type Spawner struct {
	Logger *logger.Logger

	// Env is the child environment, and its PATH is used to resolve
	// executables given without a slash.
	Env []string

	// Fs is where executables are looked up.
	Fs afero.Fs

	PollTimeout time.Duration
	ChunkSize   int
}

// New creates a spawner that passes the current environment to children.
func New(log *logger.Logger) *Spawner {
	return &Spawner{
		Logger:      log,
		Env:         os.Environ(),
		Fs:          afero.NewOsFs(),
		PollTimeout: DefaultPollTimeout,
		ChunkSize:   DefaultChunkSize,
	}
}

func (s *Spawner) chunkSize() int {
	if s.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return s.ChunkSize
}

func (s *Spawner) pollTimeout() time.Duration {
	if s.PollTimeout <= 0 {
		return DefaultPollTimeout
	}
	return s.PollTimeout
}

func (s *Spawner) fs() afero.Fs {
	if s.Fs == nil {
		return afero.NewOsFs()
	}
	return s.Fs
}
