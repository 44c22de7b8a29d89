// Package config loads the optional blg.yaml file that sits next to an
// entry script, grounded on the retrieval pack's widespread gopkg.in/
// yaml.v3 usage for exactly this kind of sidecar project config.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the handful of knobs blg.yaml can override. Its absence is
// not an error: Load returns the zero value, which is a no-op config.
type Config struct {
	// StdLibPaths lists extra directories Import should search for
	// std-lib-style modules, ahead of {executableDir}/std_lib.
	StdLibPaths []string `yaml:"std_lib_paths"`

	// DisassembleOnLoad is read from blg.yaml and kept on Session.Config;
	// nothing in this module acts on it, so setting it prints nothing.
	DisassembleOnLoad bool `yaml:"disassemble_on_load"`
}

// Load reads blg.yaml from dir, returning a zero-value Config if the file
// doesn't exist. A malformed file that does exist is still an error.
func Load(dir string) (Config, error) {
	path := filepath.Join(dir, "blg.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}
		return Config{}, errors.Wrapf(err, "config: reading %s", path)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "config: parsing %s", path)
	}
	return cfg, nil
}
