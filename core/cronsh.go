package core

import (
	"io"
	"time"

	"github.com/josephlewis42/cronsh/core/config"
	"github.com/josephlewis42/cronsh/core/logger"
	"github.com/josephlewis42/cronsh/core/report"
	"github.com/josephlewis42/cronsh/core/shell"
	"github.com/josephlewis42/cronsh/core/spawn"
)

// Cronsh runs cron lines: parse, merge options, run, report, deliver.
type Cronsh struct {
	configuration *config.Configuration
	logger        *logger.Logger
	spawner       *spawn.Spawner
	deliverer     *report.Deliverer

	now func() time.Time
}

// New creates a runner. Reports sent to cron are written to stdout.
func New(configuration *config.Configuration, log *logger.Logger, stdout io.Writer) *Cronsh {
	spawner := spawn.New(log)

	return &Cronsh{
		configuration: configuration,
		logger:        log,
		spawner:       spawner,
		deliverer: &report.Deliverer{
			File:   configuration.File,
			Pipe:   configuration.Pipe,
			Fs:     configuration.Fs(),
			Stdout: stdout,
			Runner: spawner,
			Logger: log,
		},
		now: time.Now,
	}
}

// Run executes raw and delivers its report. Lines that can't be parsed are
// logged and return an error without running anything; everything after
// that is reported rather than returned.
func (c *Cronsh) Run(raw string) (*shell.Command, error) {
	log := c.logger
	log.Debugf("rawcommand: %s", raw)

	cmd, err := shell.NewCommand(raw, c.configuration.DefaultOptions(), nil)
	if err != nil {
		log.Criticalf("failed parsing command: %v", err)
		return nil, err
	}

	tag := cmd.Tag
	if tag == "" {
		tag = "[none]"
	}
	log.Debugf("tag: %s", tag)
	for _, token := range c.configuration.UnknownOptions() {
		log.Noticef("unknown option: %s", token)
	}
	for _, token := range cmd.Unknown {
		log.Noticef("unknown option: %s", token)
	}
	log.Debugf("options: %d (%s)", uint32(cmd.Options), cmd.Options)

	start := c.now()
	cmd.Run(c.spawner)
	runtime := c.now().Sub(start)

	res := cmd.Result
	log.Debugf("status: %d, signal: %d", res.Status, res.Signal)
	log.Debugf("stdout: %d bytes, stderr: %d bytes", res.Stdout.Len(), res.Stderr.Len())
	log.Debugf("runtime: %dms", runtime.Milliseconds())

	rendered, err := report.Render(cmd, report.Meta{
		Hostname: c.configuration.Hostname,
		User:     c.configuration.User,
		Start:    start,
		Runtime:  runtime,
	})
	if err != nil {
		log.Criticalf("failed rendering report: %v", err)
		return cmd, nil
	}

	c.deliverer.Deliver(cmd, rendered)
	log.Debugf("done")
	return cmd, nil
}
