package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Level is the severity of a diagnostic.
type Level int

const (
	LevelDebug Level = iota + 1
	LevelNotice
	LevelCritical
)

// DefaultLevel logs everything.
const DefaultLevel = LevelDebug

// ParseLevel converts a configured level name.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return LevelDebug, nil
	case "notice":
		return LevelNotice, nil
	case "critical":
		return LevelCritical, nil
	default:
		return DefaultLevel, fmt.Errorf("unknown log level %q", name)
	}
}

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelNotice:
		return "notice"
	case LevelCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Tag is the four letter form used in text logs.
func (l Level) Tag() string {
	switch l {
	case LevelDebug:
		return "DEBG"
	case LevelNotice:
		return "NOTE"
	case LevelCritical:
		return "CRIT"
	default:
		return "UNKN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Entry is a single diagnostic.
type Entry struct {
	Time    time.Time `json:"time"`
	Level   Level     `json:"level"`
	PID     int       `json:"pid"`
	Message string    `json:"message"`
}

// LogRecorder is a callback that stores entries somewhere.
type LogRecorder func(e *Entry) error

// Logger filters diagnostics by level and hands them to a recorder.
type Logger struct {
	Record LogRecorder
	Level  Level
	PID    int

	now func() time.Time
}

// New creates a logger for the current process.
func New(record LogRecorder, level Level) *Logger {
	return &Logger{
		Record: record,
		Level:  level,
		PID:    os.Getpid(),
		now:    time.Now,
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(func(*Entry) error { return nil }, LevelCritical)
}

// Debugf logs play by play information.
func (l *Logger) Debugf(format string, a ...interface{}) {
	l.logf(LevelDebug, format, a...)
}

// Noticef logs something unexpected that didn't stop the run.
func (l *Logger) Noticef(format string, a ...interface{}) {
	l.logf(LevelNotice, format, a...)
}

// Criticalf logs something that kept a command from running.
func (l *Logger) Criticalf(format string, a ...interface{}) {
	l.logf(LevelCritical, format, a...)
}

func (l *Logger) logf(level Level, format string, a ...interface{}) {
	if l == nil || l.Record == nil || level < l.Level {
		return
	}

	now := time.Now
	if l.now != nil {
		now = l.now
	}

	// Nowhere left to report a failing diagnostics sink.
	_ = l.Record(&Entry{
		Time:    now().UTC(),
		Level:   level,
		PID:     l.PID,
		Message: fmt.Sprintf(format, a...),
	})
}

// NewJSONLinesRecorder writes entries as newline delimited JSON objects.
func NewJSONLinesRecorder(w io.Writer) LogRecorder {
	return func(e *Entry) error {
		entry, err := json.Marshal(e)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(entry))
		return err
	}
}

// NewTextRecorder writes entries one per line:
//
//	[2014-04-05 15:38:00] DEBG 4470: message
//
// Level tags are colored if w is a terminal.
func NewTextRecorder(w io.Writer) LogRecorder {
	colors := map[Level]*color.Color{
		LevelDebug:    color.New(color.FgCyan),
		LevelNotice:   color.New(color.FgYellow),
		LevelCritical: color.New(color.FgRed, color.Bold),
	}
	useColor := isTerminal(w)
	for _, c := range colors {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return func(e *Entry) error {
		tag := e.Level.Tag()
		if c, ok := colors[e.Level]; ok {
			tag = c.Sprint(tag)
		}
		_, err := fmt.Fprintf(w, "[%s] %s %d: %s\n", e.Time.Format("2006-01-02 15:04:05"), tag, e.PID, e.Message)
		return err
	}
}

func isTerminal(w io.Writer) bool {
	fd, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(fd.Fd()) || isatty.IsCygwinTerminal(fd.Fd())
}

// Collector keeps entries in memory.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
}

// Record implements LogRecorder.
func (c *Collector) Record(e *Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, *e)
	return nil
}

// Entries returns a copy of the recorded entries.
func (c *Collector) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.entries...)
}

// Messages returns the messages logged at level.
func (c *Collector) Messages(level Level) []string {
	var out []string
	for _, e := range c.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}
