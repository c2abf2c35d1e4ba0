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

// Package tools contains utility types and functions for the dfcov tool frontends.
package tools

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/awslabs/ar-dfcov/analysis"
	"github.com/awslabs/ar-dfcov/analysis/config"
	"github.com/awslabs/ar-dfcov/analysis/jvm"
)

// UnparsedCommonFlags represents an unparsed CLI sub-command flags.
type UnparsedCommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath *string
	Verbose    *bool
}

// NewUnparsedCommonFlags returns an unparsed flag set with a given name.
// This is useful for creating sub-commands that have the flags -config and -verbose but need other flags in
// addition.
func NewUnparsedCommonFlags(name string) UnparsedCommonFlags {
	cmd := flag.NewFlagSet(name, flag.ContinueOnError)
	configPath := cmd.String("config", "", "config file path for analysis")
	verbose := cmd.Bool("verbose", false, "verbose printing on standard error")
	return UnparsedCommonFlags{
		FlagSet:    cmd,
		ConfigPath: configPath,
		Verbose:    verbose,
	}
}

// CommonFlags represents a parsed CLI sub-command flags.
// E.g., for the command `dfcov analyze ...`, "analyze" is the sub-command.
type CommonFlags struct {
	FlagSet    *flag.FlagSet
	ConfigPath string
	Verbose    bool
}

// NewCommonFlags returns a parsed flag set with a given name.
// Returns an error if args are invalid.
// Prints cmdUsage along with flag docs as the --help message.
func NewCommonFlags(name string, args []string, cmdUsage string) (CommonFlags, error) {
	flags := NewUnparsedCommonFlags(name)
	SetUsage(flags.FlagSet, cmdUsage)
	if err := flags.FlagSet.Parse(args); err != nil {
		return CommonFlags{}, fmt.Errorf("failed to parse command %s with args %v: %v", name, args, err)
	}
	return flags.Parsed(), nil
}

// Parsed returns the common flags after the flag set has been parsed
func (f UnparsedCommonFlags) Parsed() CommonFlags {
	return CommonFlags{
		FlagSet:    f.FlagSet,
		ConfigPath: *f.ConfigPath,
		Verbose:    *f.Verbose,
	}
}

// SetUsage sets cmd's usage (for --help flag) to output the string cmdUsage
// followed by each flag's documentation.
func SetUsage(cmd *flag.FlagSet, cmdUsage string) {
	cmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", cmdUsage)
		fmt.Fprintf(os.Stderr, "Options:\n")
		cmd.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  %s: %s (default: %q)\n", f.Name, f.Usage, f.DefValue)
		})
	}
}

// Paths represents a repeatable file path flag.
type Paths []string

func (e *Paths) String() string {
	if e == nil {
		return "[]"
	}
	return fmt.Sprintf("%v", []string(*e))
}

// Set adds value to e.
// This method satisfies the flag.Value interface.
func (e *Paths) Set(value string) error {
	*e = append(*e, value)
	return nil
}

// LoadConfig loads the config file from configPath. The default configuration is returned when configPath is
// empty.
func LoadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return config.NewDefault(), nil
	}
	config.SetGlobalConfig(configPath)
	cfg, err := config.LoadGlobal()
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %v", configPath, err)
	}

	return cfg, nil
}

// Setup loads the configuration, the classes and the observations of a sub-command. The class files and the
// observation logs given are analyzed in addition to the ones listed in the configuration. Logs are written to
// logOut.
func Setup(flags CommonFlags, classFiles []string, observations []string,
	logOut io.Writer) (*analysis.Context, []jvm.Class, error) {
	cfg, err := LoadConfig(flags.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	if flags.Verbose && cfg.LogLevel < int(config.DebugLevel) {
		cfg.LogLevel = int(config.DebugLevel)
	}
	logger := config.NewLogGroup(cfg)
	logger.SetAllOutput(logOut)
	c := analysis.NewContext(cfg, logger, nil)

	classes, err := c.LoadClasses()
	if err != nil {
		return nil, nil, fmt.Errorf("could not load classes: %w", err)
	}
	for _, f := range classFiles {
		cs, err := jvm.LoadClasses(f)
		if err != nil {
			return nil, nil, fmt.Errorf("could not load classes: %w", err)
		}
		classes = append(classes, cs...)
	}
	if len(classes) == 0 {
		return nil, nil, fmt.Errorf("no classes to analyze")
	}

	if _, err := c.LoadObservations(); err != nil {
		return nil, nil, fmt.Errorf("could not read observations: %w", err)
	}
	for _, f := range observations {
		if _, err := c.ReadObservationsFile(f); err != nil {
			return nil, nil, fmt.Errorf("could not read observations: %w", err)
		}
	}
	return c, classes, nil
}

// CreateOutput returns a writer to the file path, or to standard output when path is empty. The closer returned
// must be called when the output is written.
func CreateOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
