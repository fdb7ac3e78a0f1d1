package config

import (
	"reflect"
	"strings"
	"testing"

	"github.com/josephlewis42/cronsh/core/logger"
	"github.com/josephlewis42/cronsh/core/options"
	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestBuiltinConfig(t *testing.T) {
	rawConfig := make(map[string]interface{})
	assert.Nil(t, yaml.Unmarshal(defaultConfigData, &rawConfig))

	knownFields := make(map[string]bool)
	rt := reflect.TypeOf(Configuration{})
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		assert.NotEmpty(t, jsonTag)
		jsonField := strings.Split(jsonTag, ",")[0]
		knownFields[jsonField] = true

		if _, ok := rawConfig[jsonField]; !ok {
			assert.False(t, true, "default config missing field: %q", jsonField)
		}
	}

	for k := range rawConfig {
		_, ok := knownFields[k]
		assert.True(t, ok, "default config contains invalid field: %q", k)
	}
}

func TestDefaultConfig(t *testing.T) {
	// Will panic() on load failure because it should never happen at runtime.
	cfg := defaultConfig()

	assert.Nil(t, cfg.Validate())
	assert.Equal(t, options.CronDefault, cfg.DefaultOptions())
	assert.Equal(t, logger.LevelNotice, cfg.Level())
}

func TestUnknownOptions(t *testing.T) {
	cfg := defaultConfig()
	assert.Empty(t, cfg.UnknownOptions())

	cfg.Options = "capture-all sendto-stdout bogus !nope"
	assert.Equal(t, []string{"bogus", "!nope"}, cfg.UnknownOptions())
	assert.Equal(t, options.CaptureAll|options.SendtoStdout, cfg.DefaultOptions())
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		modify  func(c *Configuration)
		wantErr string
	}{
		"default": {
			modify: func(c *Configuration) {},
		},
		"bad level": {
			modify:  func(c *Configuration) { c.LogLevel = "verbose" },
			wantErr: "loglevel",
		},
		"bad format": {
			modify:  func(c *Configuration) { c.LogFormat = "xml" },
			wantErr: "logformat",
		},
		"unknown option is not fatal": {
			modify: func(c *Configuration) { c.Options = "crondefault sendto-mars" },
		},
		"pipe without command": {
			modify:  func(c *Configuration) { c.Options = "sendto-pipe" },
			wantErr: "required_with_sendto_pipe",
		},
		"pipe with command": {
			modify: func(c *Configuration) {
				c.Options = "sendto-pipe"
				c.Pipe = "/usr/bin/logger -t cron"
			},
		},
		"file without path": {
			modify:  func(c *Configuration) { c.Options = "sendto-file" },
			wantErr: "required_with_sendto_file",
		},
		"negated sink needs nothing": {
			modify: func(c *Configuration) { c.Options = "sendto-all !sendto-pipe !sendto-file" },
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			cfg := defaultConfig()
			tc.modify(cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.Nil(t, err)
			} else {
				assert.ErrorContains(t, err, tc.wantErr)
			}
		})
	}
}
