package shell

import (
	"os"
	"testing"

	"github.com/josephlewis42/cronsh/core/buffer"
	"github.com/josephlewis42/cronsh/core/options"
	"github.com/josephlewis42/cronsh/core/spawn"
	"github.com/stretchr/testify/assert"
)

type fakeRunner struct {
	gotArgv  []string
	gotStdin *buffer.Buffer
	result   spawn.Result
}

func (f *fakeRunner) Run(argv []string, stdin *buffer.Buffer) spawn.Result {
	f.gotArgv = argv
	f.gotStdin = stdin
	return f.result
}

func TestNewCommand(t *testing.T) {
	cmd, err := NewCommand(`/bin/echo "a b" #daily !capture-stderr sendto-file frobnicate`, options.CronDefault, nil)
	assert.Nil(t, err)

	assert.Equal(t, []string{"/bin/echo", "a b"}, cmd.Argv)
	assert.Equal(t, "daily", cmd.Tag)
	assert.True(t, cmd.HasMarker)
	assert.Equal(t, []string{"frobnicate"}, cmd.Unknown)
	assert.Equal(t, os.Getpid(), cmd.PPID)
	assert.Zero(t, cmd.PID)

	assert.True(t, cmd.Options.Has(options.CaptureStdout))
	assert.False(t, cmd.Options.Has(options.CaptureStderr))
	assert.True(t, cmd.Options.Has(options.SendtoFile))
	assert.True(t, cmd.Options.Has(options.SendtoStdout))

	// Not yet run.
	assert.Equal(t, spawn.StatusFailed, cmd.Result.Status)
	assert.Equal(t, 0, cmd.Result.Stdout.Len())
}

func TestNewCommandErrors(t *testing.T) {
	_, err := NewCommand(`"open`, options.None, nil)
	assert.ErrorIs(t, err, ErrMismatchedQuotes)

	_, err = NewCommand(`#only-a-tag`, options.None, nil)
	assert.ErrorIs(t, err, ErrNoCommand)
}

func TestCommandRun(t *testing.T) {
	stdin := buffer.FromBytes([]byte("input"))
	cmd, err := NewCommand(`job arg`, options.None, stdin)
	assert.Nil(t, err)

	runner := &fakeRunner{result: spawn.Result{
		PID:    1234,
		Status: 7,
		Stdout: buffer.FromBytes([]byte("out")),
		Stderr: buffer.New(buffer.DefaultStep),
	}}
	cmd.Run(runner)

	assert.False(t, cmd.HasMarker)
	assert.Equal(t, []string{"job", "arg"}, runner.gotArgv)
	assert.Same(t, stdin, runner.gotStdin)
	assert.Equal(t, 1234, cmd.PID)
	assert.Equal(t, 7, cmd.Result.Status)
	assert.Equal(t, "out", cmd.Result.Stdout.String())
}
