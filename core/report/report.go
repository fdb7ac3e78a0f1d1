// Package report renders the YAML document describing a finished command and
// delivers it to the configured sinks.
package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/josephlewis42/cronsh/core/buffer"
	"github.com/josephlewis42/cronsh/core/options"
	"github.com/josephlewis42/cronsh/core/shell"
	"github.com/josephlewis42/cronsh/core/spawn"
	"gopkg.in/yaml.v2"
)

const (
	// TypeCron is the only report type written.
	TypeCron = "cron"

	documentStart = "---\n"
	documentEnd   = "...\n"
)

// Meta is what the report needs to know beyond the command itself.
type Meta struct {
	// ID identifies the report. A random UUID is used if empty.
	ID       string
	Hostname string
	User     string
	Start    time.Time
	Runtime  time.Duration
}

// Usage is the child's resource usage. Times are in microseconds.
type Usage struct {
	UserTime   int64 `yaml:"utime"`
	SystemTime int64 `yaml:"stime"`
	MaxRSS     int64 `yaml:"maxrss"`
	MinFlt     int64 `yaml:"minflt"`
	MajFlt     int64 `yaml:"majflt"`
	InBlock    int64 `yaml:"inblock"`
	OutBlock   int64 `yaml:"oublock"`
	NVCSw      int64 `yaml:"nvcsw"`
	NIVCSw     int64 `yaml:"nivcsw"`
}

func newUsage(u spawn.Usage) Usage {
	return Usage{
		UserTime:   u.UserTime.Microseconds(),
		SystemTime: u.SystemTime.Microseconds(),
		MaxRSS:     u.MaxRSS,
		MinFlt:     u.MinFlt,
		MajFlt:     u.MajFlt,
		InBlock:    u.InBlock,
		OutBlock:   u.OutBlock,
		NVCSw:      u.NVCSw,
		NIVCSw:     u.NIVCSw,
	}
}

// Report is a single YAML document. Field order is the output order.
type Report struct {
	Type       string   `yaml:"type"`
	ID         string   `yaml:"id"`
	Hostname   string   `yaml:"hostname"`
	User       string   `yaml:"user"`
	RawCommand string   `yaml:"rawcommand"`
	Command    []string `yaml:"command"`
	Tag        string   `yaml:"tag"`
	// StartTime is in seconds since the epoch.
	StartTime int64 `yaml:"starttime"`
	// Runtime is in milliseconds.
	Runtime int64  `yaml:"runtime"`
	PID     int    `yaml:"pid"`
	PPID    int    `yaml:"ppid"`
	Status  int    `yaml:"status"`
	Signal  int    `yaml:"signal"`
	Stdout  string `yaml:"stdout"`
	Stderr  string `yaml:"stderr"`
	Rusage  Usage  `yaml:"rusage"`
}

// New builds the report for a command that has run. Streams the command
// didn't ask to capture are emptied in the command's result as well.
func New(cmd *shell.Command, meta Meta) *Report {
	res := &cmd.Result
	if !cmd.Options.Has(options.CaptureStdout) {
		res.Stdout.Reset()
	}
	if !cmd.Options.Has(options.CaptureStderr) {
		res.Stderr.Reset()
	}

	id := meta.ID
	if id == "" {
		id = uuid.NewString()
	}

	return &Report{
		Type:       TypeCron,
		ID:         id,
		Hostname:   meta.Hostname,
		User:       meta.User,
		RawCommand: cmd.Raw,
		Command:    cmd.Argv,
		Tag:        cmd.Tag,
		StartTime:  meta.Start.Unix(),
		Runtime:    meta.Runtime.Milliseconds(),
		PID:        cmd.PID,
		PPID:       cmd.PPID,
		Status:     res.Status,
		Signal:     res.Signal,
		Stdout:     res.Stdout.String(),
		Stderr:     res.Stderr.String(),
		Rusage:     newUsage(res.Usage),
	}
}

// Render writes the report as a complete YAML document.
func (r *Report) Render() (*buffer.Buffer, error) {
	body, err := yaml.Marshal(r)
	if err != nil {
		return nil, err
	}

	out := buffer.New(buffer.DefaultStep)
	for _, part := range [][]byte{[]byte(documentStart), body, []byte(documentEnd)} {
		if err := out.Append(part); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Render builds and renders the report for cmd.
func Render(cmd *shell.Command, meta Meta) (*buffer.Buffer, error) {
	return New(cmd, meta).Render()
}
