package shell

import (
	"os"

	"github.com/josephlewis42/cronsh/core/buffer"
	"github.com/josephlewis42/cronsh/core/options"
	"github.com/josephlewis42/cronsh/core/spawn"
)

// Runner executes an argument vector.
type Runner interface {
	Run(argv []string, stdin *buffer.Buffer) spawn.Result
}

// Command is a parsed cron line, its effective options and, once run, its
// result.
type Command struct {
	Raw  string
	Argv []string
	Tag  string
	// HasMarker is set if the line had a # word, even one with an empty tag.
	HasMarker bool
	Options   options.Set
	// Unknown holds option tokens that didn't name a flag.
	Unknown []string

	PID  int
	PPID int

	// Stdin is fed to the child if non-nil.
	Stdin  *buffer.Buffer
	Result spawn.Result
}

// NewCommand tokenizes raw and merges its options over defaults.
func NewCommand(raw string, defaults options.Set, stdin *buffer.Buffer) (*Command, error) {
	line, err := Tokenize(raw)
	if err != nil {
		return nil, err
	}

	opts, unknown := options.Merge(defaults, line.OptionText)

	return &Command{
		Raw:       raw,
		Argv:      line.Argv,
		Tag:       line.Tag,
		HasMarker: line.HasMarker,
		Options:   opts,
		Unknown:   unknown,
		PPID:      os.Getpid(),
		Stdin:     stdin,
		Result: spawn.Result{
			Status: spawn.StatusFailed,
			Stdout: buffer.New(buffer.DefaultStep),
			Stderr: buffer.New(buffer.DefaultStep),
		},
	}, nil
}

// Run executes the command and records the result.
func (c *Command) Run(r Runner) {
	c.Result = r.Run(c.Argv, c.Stdin)
	c.PID = c.Result.PID
}
