package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/josephlewis42/cronsh/core/logger"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"sigs.k8s.io/yaml"
)

// EnvPrefix prefixes every environment variable that overrides a setting.
const EnvPrefix = "CRONSH"

// Load builds the configuration from the built-in defaults, the file at path
// if path isn't empty and the environment, in that order.
func Load(fsys afero.Fs, path string) (*Configuration, error) {
	out := defaultConfig()
	out.configFs = fsys

	if path != "" {
		// If given a directory, look for config.yaml inside it.
		if isDir, err := afero.IsDir(fsys, path); err == nil && isDir {
			path = filepath.Join(path, ConfigurationName)
		}

		configContents, err := afero.ReadFile(fsys, path)
		if err != nil {
			return nil, err
		}
		if err := yaml.UnmarshalStrict(configContents, out); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	overlayEnv(out)
	fillIdentity(out)

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// overlayEnv replaces settings with CRONSH_* environment variables. The user
// also comes from USER or LOGNAME when it isn't configured.
func overlayEnv(c *Configuration) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	settings := map[string]*string{
		"loglevel":  &c.LogLevel,
		"logformat": &c.LogFormat,
		"errorlog":  &c.ErrorLog,
		"file":      &c.File,
		"pipe":      &c.Pipe,
		"options":   &c.Options,
		"hostname":  &c.Hostname,
	}
	for key, field := range settings {
		if v.IsSet(key) {
			*field = v.GetString(key)
		}
	}

	if c.User == "" {
		// Explicit names skip the prefix.
		_ = v.BindEnv("login", "USER", "LOGNAME")
		c.User = v.GetString("login")
	}
}

func fillIdentity(c *Configuration) {
	if c.Hostname == "" {
		if hostname, err := os.Hostname(); err == nil && hostname != "" {
			c.Hostname = hostname
		} else {
			c.Hostname = UnknownValue
		}
	}

	if c.User == "" {
		c.User = UnknownValue
	}
}

// Initialize writes the default configuration to dir and loads it.
func Initialize(dir string, log *logger.Logger) (*Configuration, error) {
	return initialize(afero.NewOsFs(), dir, log)
}

func initialize(fsys afero.Fs, dir string, log *logger.Logger) (*Configuration, error) {
	if err := fsys.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	path := filepath.Join(dir, ConfigurationName)
	if exists, err := afero.Exists(fsys, path); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%s already exists", path)
	}

	log.Noticef("writing default configuration to %s", path)
	if err := afero.WriteFile(fsys, path, defaultConfigData, 0600); err != nil {
		return nil, err
	}

	return Load(fsys, path)
}
