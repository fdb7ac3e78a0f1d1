package report

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/josephlewis42/cronsh/core/buffer"
	"github.com/josephlewis42/cronsh/core/logger"
	"github.com/josephlewis42/cronsh/core/options"
	"github.com/josephlewis42/cronsh/core/shell"
	"github.com/spf13/afero"
)

// Sink names a report destination.
type Sink string

const (
	SinkPipe   Sink = "pipe"
	SinkFile   Sink = "file"
	SinkStdout Sink = "stdout"
)

var (
	errNoPipe = errors.New("no pipe command configured")
	errNoFile = errors.New("no report file configured")
)

// Delivery is the outcome of sending to one sink.
type Delivery struct {
	Sink Sink
	Err  error
}

// Deliverer routes rendered reports to sinks.
type Deliverer struct {
	// File is the path reports are appended to.
	File string
	// Pipe is a command line that gets the report on stdin.
	Pipe string

	Fs     afero.Fs
	Stdout io.Writer
	Runner shell.Runner
	Logger *logger.Logger
}

// Deliver sends report to the sinks selected by cmd's options, in the order
// pipe, file, stdout. Nothing is sent if the command is silent or the sendif
// flags reject its outcome. With sendto-fallback delivery stops after the
// first sink that succeeds.
func (d *Deliverer) Deliver(cmd *shell.Command, report *buffer.Buffer) []Delivery {
	opts := cmd.Options

	if opts.Has(options.Silent) {
		d.Logger.Debugf("silent, not sending report")
		return nil
	}

	if !opts.ShouldSend(Outcome(cmd)) {
		d.Logger.Debugf("sendif conditions not met, not sending report")
		return nil
	}

	sinks := []struct {
		flag options.Set
		sink Sink
		send func(*buffer.Buffer) error
	}{
		{options.SendtoPipe, SinkPipe, d.sendPipe},
		{options.SendtoFile, SinkFile, d.sendFile},
		{options.SendtoStdout, SinkStdout, d.sendStdout},
	}

	var out []Delivery
	for _, s := range sinks {
		if !opts.Has(s.flag) {
			continue
		}

		d.Logger.Debugf("sending to %s", s.sink)
		err := s.send(report)
		out = append(out, Delivery{Sink: s.sink, Err: err})

		if err != nil {
			d.Logger.Noticef("sending to %s failed: %v", s.sink, err)
			continue
		}

		if opts.Has(options.SendtoFallback) {
			break
		}
	}

	return out
}

// Outcome summarizes a finished command for the sendif flags. Streams that
// weren't captured count as empty.
func Outcome(cmd *shell.Command) options.Outcome {
	o := options.Outcome{
		Status: cmd.Result.Status,
		Signal: cmd.Result.Signal,
	}
	if cmd.Options.Has(options.CaptureStdout) {
		o.StdoutLen = cmd.Result.Stdout.Len()
	}
	if cmd.Options.Has(options.CaptureStderr) {
		o.StderrLen = cmd.Result.Stderr.Len()
	}
	return o
}

func (d *Deliverer) sendPipe(report *buffer.Buffer) error {
	if d.Pipe == "" {
		return errNoPipe
	}

	d.Logger.Debugf("sending to: %s", d.Pipe)
	line, err := shell.Tokenize(d.Pipe)
	if err != nil {
		return fmt.Errorf("parsing pipe command: %w", err)
	}

	res := d.Runner.Run(line.Argv, report)
	if res.Status != 0 {
		return fmt.Errorf("pipe command exited with status %d", res.Status)
	}
	return nil
}

func (d *Deliverer) sendFile(report *buffer.Buffer) error {
	if d.File == "" {
		return errNoFile
	}

	fd, err := d.Fs.OpenFile(d.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}

	if _, err := fd.Write(report.Bytes()); err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}

func (d *Deliverer) sendStdout(report *buffer.Buffer) error {
	_, err := d.Stdout.Write(report.Bytes())
	return err
}
