// Package options implements the behavior flags attached to a cron line and
// the textual grammar used to merge them.
//
// A merge text is a space separated list of flag names. A plain name sets the
// flag's bits, a name prefixed with '!' clears them and a name prefixed with
// '*' replaces everything merged so far with exactly the flag's bits. Tokens
// are applied left to right.
package options

import (
	"sort"
	"strings"
)

// Set is a bitset of behavior flags.
type Set uint32

const (
	// Silent suppresses all report delivery.
	Silent Set = 1 << iota
	// CaptureStdout keeps the child's stdout in the report.
	CaptureStdout
	// CaptureStderr keeps the child's stderr in the report.
	CaptureStderr
	// SendtoStdout delivers the report to cron through stdout.
	SendtoStdout
	// SendtoFile appends the report to the report file.
	SendtoFile
	// SendtoPipe feeds the report to the delivery command.
	SendtoPipe
	// SendtoFallback stops delivery after the first sink that succeeds.
	SendtoFallback
	// SendifStatus sends when the exit status is non-zero.
	SendifStatus
	// SendifStatusOK sends when the exit status is zero.
	SendifStatusOK
	// SendifSignal sends when the child was killed by a signal.
	SendifSignal
	// SendifSignalOK sends when the child was not killed by a signal.
	SendifSignalOK
	// SendifStdout sends when the child wrote to stdout.
	SendifStdout
	// SendifStdoutNone sends when the child wrote nothing to stdout.
	SendifStdoutNone
	// SendifStderr sends when the child wrote to stderr.
	SendifStderr
	// SendifStderrNone sends when the child wrote nothing to stderr.
	SendifStderrNone
)

// Groups of flags. These are masks over the bits above, not bits themselves.
const (
	None Set = 0

	CaptureAll = CaptureStdout | CaptureStderr
	SendtoAll  = SendtoStdout | SendtoFile | SendtoPipe

	SendifStatusAny = SendifStatus | SendifStatusOK
	SendifSignalAny = SendifSignal | SendifSignalOK
	SendifStdoutAny = SendifStdout | SendifStdoutNone
	SendifStderrAny = SendifStderr | SendifStderrNone
	SendifAny       = SendifStatusAny | SendifSignalAny | SendifStdoutAny | SendifStderrAny

	All = Silent | CaptureAll | SendtoAll | SendtoFallback | SendifAny

	// CronDefault mimics plain cron: capture everything and mail it only
	// if the job failed, was killed or produced output. Only the problem
	// half of each sendif pair is set; the -ok and -none halves would
	// send every report.
	CronDefault = CaptureAll | SendtoStdout | SendifStatus | SendifSignal | SendifStdout | SendifStderr
)

const (
	negatePrefix    = '!'
	exclusivePrefix = '*'
)

// bitNames holds the canonical name of every single bit, in bit order.
var bitNames = []struct {
	bit  Set
	name string
}{
	{Silent, "silent"},
	{CaptureStdout, "capture-stdout"},
	{CaptureStderr, "capture-stderr"},
	{SendtoStdout, "sendto-stdout"},
	{SendtoFile, "sendto-file"},
	{SendtoPipe, "sendto-pipe"},
	{SendtoFallback, "sendto-fallback"},
	{SendifStatus, "sendif-status"},
	{SendifStatusOK, "sendif-status-ok"},
	{SendifSignal, "sendif-signal"},
	{SendifSignalOK, "sendif-signal-ok"},
	{SendifStdout, "sendif-stdout"},
	{SendifStdoutNone, "sendif-stdout-none"},
	{SendifStderr, "sendif-stderr"},
	{SendifStderrNone, "sendif-stderr-none"},
}

var byName = map[string]Set{
	"capture-all":       CaptureAll,
	"sendto-all":        SendtoAll,
	"sendif-status-any": SendifStatusAny,
	"sendif-signal-any": SendifSignalAny,
	"sendif-stdout-any": SendifStdoutAny,
	"sendif-stderr-any": SendifStderrAny,
	"sendif-any":        SendifAny,
	"crondefault":       CronDefault,

	// Spellings used by earlier releases.
	"capturestdout": CaptureStdout,
	"capturestderr": CaptureStderr,
	"captureall":    CaptureAll,
	"sendtocron":    SendtoStdout,
	"sendtofile":    SendtoFile,
	"sendtolog":     SendtoFile,
	"sendtopipe":    SendtoPipe,
	"sendtoall":     SendtoAll,
	"sendfallback":  SendtoFallback,
}

func init() {
	for _, bn := range bitNames {
		byName[bn.name] = bn.bit
	}
}

// Lookup resolves a flag or group name to its bits.
func Lookup(name string) (Set, bool) {
	bits, ok := byName[name]
	return bits, ok
}

// Names returns every recognized name, sorted.
func Names() []string {
	out := make([]string, 0, len(byName))
	for name := range byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Merge applies text to base and returns the result along with any tokens
// that didn't name a flag. Unknown tokens leave the set untouched.
func Merge(base Set, text string) (Set, []string) {
	out := base
	var unknown []string

	for _, token := range strings.Split(text, " ") {
		if token == "" {
			continue
		}

		var modifier byte
		name := token
		if name[0] == negatePrefix || name[0] == exclusivePrefix {
			modifier = name[0]
			name = name[1:]
		}
		if name == "" {
			unknown = append(unknown, token)
			continue
		}

		bits, ok := Lookup(name)
		if !ok {
			unknown = append(unknown, token)
			continue
		}

		switch modifier {
		case exclusivePrefix:
			out = bits
		case negatePrefix:
			out &^= bits
		default:
			out |= bits
		}
	}

	return out, unknown
}

// Parse merges text against an empty set.
func Parse(text string) (Set, []string) {
	return Merge(None, text)
}

// Has reports whether every bit of flags is set.
func (s Set) Has(flags Set) bool {
	return s&flags == flags
}

// Any reports whether at least one bit of flags is set.
func (s Set) Any(flags Set) bool {
	return s&flags != 0
}

// Names returns the canonical names of the bits in s.
func (s Set) Names() []string {
	var out []string
	for _, bn := range bitNames {
		if s.Has(bn.bit) {
			out = append(out, bn.name)
		}
	}
	return out
}

// String returns the canonical names of the bits in s, space separated. The
// output can be fed back to Parse.
func (s Set) String() string {
	return strings.Join(s.Names(), " ")
}

// Outcome is what the sendif predicates look at.
type Outcome struct {
	Status    int
	Signal    int
	StdoutLen int
	StderrLen int
}

// ShouldSend reports whether a report for the outcome passes the sendif
// predicates in s. Without any sendif flag every report is sent.
func (s Set) ShouldSend(o Outcome) bool {
	if !s.Any(SendifAny) {
		return true
	}

	predicates := []struct {
		flag  Set
		holds bool
	}{
		{SendifStatus, o.Status != 0},
		{SendifStatusOK, o.Status == 0},
		{SendifSignal, o.Signal != 0},
		{SendifSignalOK, o.Signal == 0},
		{SendifStdout, o.StdoutLen > 0},
		{SendifStdoutNone, o.StdoutLen == 0},
		{SendifStderr, o.StderrLen > 0},
		{SendifStderrNone, o.StderrLen == 0},
	}

	for _, p := range predicates {
		if s.Has(p.flag) && p.holds {
			return true
		}
	}
	return false
}
