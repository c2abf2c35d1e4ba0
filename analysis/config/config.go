// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"fmt"
	"os"
	"path"

	"github.com/awslabs/ar-dfcov/internal/funcutil"
	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	if configFile == "" {
		return NewDefault(), nil
	}
	return Load(configFile)
}

// Config contains the options of the def-use coverage analysis.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:"options"`

	sourceFile string

	// primitives is the set form of PrimitiveDescriptors
	primitives map[string]bool

	// Classes lists class input files (yaml, json or msgpack) relative to the config file
	Classes []string `yaml:"classes"`

	// Observations lists observation log files relative to the config file
	Observations []string `yaml:"observations"`
}

// Options holds the knobs of the analysis
type Options struct {
	// LogLevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// Workers is the maximum number of classes analyzed concurrently. If <= 0, DefaultWorkers is used.
	Workers int `yaml:"workers"`

	// SkipInterprocedural can be set to true to skip the interprocedural matching step. Only intra-procedural
	// DU-pairs are reported then.
	SkipInterprocedural bool `yaml:"skip-interprocedural"`

	// ModelImpureCalls specifies whether calls to impure methods of the class add a definition at the call node
	// for every non-primitive argument. Defaults to true.
	ModelImpureCalls bool `yaml:"model-impure-calls"`

	// PrimitiveDescriptors is the list of type descriptors of arguments that are never redefined by impure calls.
	PrimitiveDescriptors []string `yaml:"primitive-descriptors"`

	// ObservationShards is the number of shards of the observation store. If <= 0, DefaultObservationShards is
	// used.
	ObservationShards int `yaml:"observation-shards"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns a default config.
func NewDefault() *Config {
	c := &Config{
		sourceFile:   "",
		Classes:      []string{},
		Observations: []string{},
		Options: Options{
			LogLevel:             int(InfoLevel),
			Workers:              DefaultWorkers,
			SkipInterprocedural:  false,
			ModelImpureCalls:     true,
			PrimitiveDescriptors: append([]string{}, DefaultPrimitiveDescriptors...),
			ObservationShards:    DefaultObservationShards,
			SilenceWarn:          false,
		},
	}
	c.init()
	return c
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return LoadFromBytes(filename, b)
}

// LoadFromBytes parses the yaml configuration in b. The filename is used to resolve the relative paths of
// the config.
func LoadFromBytes(filename string, b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file %s: %w", filename, err)
	}
	cfg.sourceFile = filename

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}
	if cfg.LogLevel < int(ErrLevel) || cfg.LogLevel > int(TraceLevel) {
		return nil, fmt.Errorf("invalid log-level %d in %s, must be between %d and %d",
			cfg.LogLevel, filename, ErrLevel, TraceLevel)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.ObservationShards <= 0 {
		cfg.ObservationShards = DefaultObservationShards
	}
	cfg.init()
	return cfg, nil
}

func (c *Config) init() {
	c.primitives = make(map[string]bool, len(c.PrimitiveDescriptors))
	funcutil.Iter(c.PrimitiveDescriptors, func(d string) { c.primitives[d] = true })
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	if path.IsAbs(filename) {
		return filename
	}
	return path.Join(path.Dir(c.sourceFile), filename)
}

// IsPrimitiveDescriptor returns true if values of type descriptor desc cannot be modified by an impure call
func (c Config) IsPrimitiveDescriptor(desc string) bool {
	if c.primitives == nil {
		return funcutil.Contains(c.PrimitiveDescriptors, desc)
	}
	return c.primitives[desc]
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}
