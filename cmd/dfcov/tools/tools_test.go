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

package tools

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/awslabs/ar-dfcov/analysis/config"
	"github.com/awslabs/ar-dfcov/internal/analysistest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommonFlags(t *testing.T) {
	flags, err := NewCommonFlags("analyze", []string{"-config", "c.yaml", "-verbose", "a.yaml", "b.yaml"}, "usage")
	require.NoError(t, err)
	assert.Equal(t, "c.yaml", flags.ConfigPath)
	assert.True(t, flags.Verbose)
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, flags.FlagSet.Args())

	_, err = NewCommonFlags("analyze", []string{"-unknown"}, "usage")
	assert.Error(t, err)
}

func TestPaths(t *testing.T) {
	f := NewUnparsedCommonFlags("analyze")
	var paths Paths
	f.FlagSet.Var(&paths, "observations", "observation logs")
	require.NoError(t, f.FlagSet.Parse([]string{"-observations", "a.log", "-observations", "b.log"}))
	assert.Equal(t, Paths{"a.log", "b.log"}, paths)
	assert.Equal(t, "[a.log b.log]", paths.String())
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultWorkers, cfg.Workers)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to load config file")
}

func TestSetup(t *testing.T) {
	var logs bytes.Buffer
	flags := CommonFlags{Verbose: true}
	logFile := filepath.Join(t.TempDir(), "run.log")
	require.NoError(t, os.WriteFile(logFile,
		[]byte("class=Calc method=run()I name=x slot=0 insn=1 line=6 def=true\n"), 0o600))

	c, classes, err := Setup(flags, []string{analysistest.Path("calc.yaml")}, []string{logFile}, &logs)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, "Calc", classes[0].Name)
	assert.Equal(t, 1, c.Store.Len())
	assert.Equal(t, config.DebugLevel, c.Logger.Level())
	assert.Contains(t, logs.String(), "Read 1 observations")

	_, _, err = Setup(CommonFlags{}, nil, nil, &logs)
	assert.ErrorContains(t, err, "no classes to analyze")
}
