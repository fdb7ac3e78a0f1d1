package config

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/josephlewis42/cronsh/core/logger"
	"github.com/josephlewis42/cronsh/core/options"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	ConfigurationName = "config.yaml"

	// UnknownValue stands in for a hostname or user that couldn't be found.
	UnknownValue = "[unknown]"
)

type Configuration struct {
	configFs afero.Fs

	LogLevel  string `json:"loglevel" validate:"oneof=debug notice critical"`
	LogFormat string `json:"logformat" validate:"oneof=text json"`
	ErrorLog  string `json:"errorlog"`

	File string `json:"file"`
	Pipe string `json:"pipe"`

	Options string `json:"options"`

	Hostname string `json:"hostname"`
	User     string `json:"user"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})
	validate.RegisterStructValidation(validateSinks, Configuration{})

	return validate.Struct(c)
}

// validateSinks requires a destination for every sink the default options
// select.
func validateSinks(sl validator.StructLevel) {
	c := sl.Current().Interface().(Configuration)
	opts := c.DefaultOptions()

	if opts.Has(options.SendtoPipe) && c.Pipe == "" {
		sl.ReportError(c.Pipe, "pipe", "Pipe", "required_with_sendto_pipe", "")
	}
	if opts.Has(options.SendtoFile) && c.File == "" {
		sl.ReportError(c.File, "file", "File", "required_with_sendto_file", "")
	}
}

// DefaultOptions is the option set every command line is merged over.
// Tokens that don't name a flag are skipped, see UnknownOptions.
func (c *Configuration) DefaultOptions() options.Set {
	opts, _ := options.Parse(c.Options)
	return opts
}

// UnknownOptions lists the tokens of the default options that don't name a
// flag. They are reported on every run rather than rejected so a typo in the
// environment can't stop jobs from running.
func (c *Configuration) UnknownOptions() []string {
	_, unknown := options.Parse(c.Options)
	return unknown
}

// Level is the configured diagnostics level.
func (c *Configuration) Level() logger.Level {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return logger.DefaultLevel
	}
	return level
}

// Fs is the filesystem files named in the configuration live on.
func (c *Configuration) Fs() afero.Fs {
	if c.configFs == nil {
		return afero.NewOsFs()
	}
	return c.configFs
}

// NewLogger creates the diagnostics logger. Entries go to the error log if one
// is configured and to stderr otherwise. The returned file is the opened error
// log, or nil.
func (c *Configuration) NewLogger(stderr io.Writer) (*logger.Logger, afero.File, error) {
	fd, err := c.OpenErrorLog()
	if err != nil {
		return nil, nil, err
	}

	var w io.Writer = stderr
	if fd != nil {
		w = fd
	}

	record := logger.NewTextRecorder(w)
	if c.LogFormat == "json" {
		record = logger.NewJSONLinesRecorder(w)
	}

	return logger.New(record, c.Level()), fd, nil
}

// OpenErrorLog opens the diagnostics log in an append only state. The file is
// nil if diagnostics go to stderr.
func (c *Configuration) OpenErrorLog() (afero.File, error) {
	if c.ErrorLog == "" {
		return nil, nil
	}
	return c.Fs().OpenFile(c.ErrorLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// ReadReportFile opens the report file for reading.
func (c *Configuration) ReadReportFile() (afero.File, error) {
	if c.File == "" {
		return nil, fmt.Errorf("no report file configured")
	}
	return c.Fs().OpenFile(c.File, os.O_RDONLY, 0600)
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// DefaultConfigData returns the built-in configuration file.
func DefaultConfigData() []byte {
	return append([]byte(nil), defaultConfigData...)
}
