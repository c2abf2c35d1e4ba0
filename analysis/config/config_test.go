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
	"bytes"
	"embed"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//go:embed testdata
var testfsys embed.FS

func loadFromTestDir(t *testing.T, filename string) (*Config, error) {
	filename = filepath.Join("testdata", filename)
	b, err := testfsys.ReadFile(filename)
	require.NoError(t, err)
	return LoadFromBytes(filename, b)
}

func TestLoadFull(t *testing.T) {
	cfg, err := loadFromTestDir(t, "full.yaml")
	require.NoError(t, err)
	assert.Equal(t, int(TraceLevel), cfg.LogLevel)
	assert.Equal(t, 2, cfg.Workers)
	assert.True(t, cfg.SkipInterprocedural)
	assert.False(t, cfg.ModelImpureCalls)
	assert.Equal(t, []string{"I", "J"}, cfg.PrimitiveDescriptors)
	assert.Equal(t, 4, cfg.ObservationShards)
	assert.True(t, cfg.Verbose())
	assert.Equal(t, filepath.Join("testdata", "classes", "Bar.yaml"), cfg.RelPath(cfg.Classes[0]))
	assert.Equal(t, "/var/log/hits.log", cfg.RelPath(cfg.Observations[0]))
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadFromTestDir(t, "defaults.yaml")
	require.NoError(t, err)
	def := NewDefault()
	assert.Equal(t, def.Options, cfg.Options)
	assert.Equal(t, []string{"Foo.json"}, cfg.Classes)
	assert.False(t, cfg.Verbose())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		want string
	}{
		{"bad yaml", "bad_format.yaml", "could not unmarshal"},
		{"bad level", "bad_level.yaml", "invalid log-level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadFromTestDir(t, tt.file)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	_, err := Load(filepath.Join("testdata", "does-not-exist.yaml"))
	assert.Error(t, err)
}

func TestIsPrimitiveDescriptor(t *testing.T) {
	tests := []struct {
		desc string
		want bool
	}{
		{"I", true},
		{"D", true},
		{"F", true},
		{"L", true},
		{"Ljava/lang/String;", true},
		{"J", false},
		{"[I", false},
		{"LBar;", false},
	}
	cfg := NewDefault()
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.IsPrimitiveDescriptor(tt.desc))
		})
	}
	// configs built without NewDefault still answer from the list
	raw := Config{Options: Options{PrimitiveDescriptors: []string{"Z"}}}
	assert.True(t, raw.IsPrimitiveDescriptor("Z"))
	assert.False(t, raw.IsPrimitiveDescriptor("I"))
}

func TestLogGroupLevels(t *testing.T) {
	cfg := NewDefault()
	cfg.LogLevel = int(WarnLevel)
	var buf bytes.Buffer
	l := NewLogGroup(cfg)
	l.SetAllOutput(&buf)
	l.SetAllFlags(0)
	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)
	l.Errorf("error %d", 4)
	out := buf.String()
	assert.False(t, strings.Contains(out, "debug"))
	assert.False(t, strings.Contains(out, "info"))
	assert.Contains(t, out, "[WARN] warn 3")
	assert.Contains(t, out, "[ERROR] error 4")

	cfg.SilenceWarn = true
	buf.Reset()
	l = NewLogGroup(cfg)
	l.SetAllOutput(&buf)
	l.Warnf("hidden")
	assert.Empty(t, buf.String())
	assert.Equal(t, ErrLevel, l.Level())
}

func TestLoadGlobal(t *testing.T) {
	SetGlobalConfig("")
	cfg, err := LoadGlobal()
	require.NoError(t, err)
	assert.Equal(t, DefaultWorkers, cfg.Workers)
	SetGlobalConfig(filepath.Join("testdata", "full.yaml"))
	defer SetGlobalConfig("")
	cfg, err = LoadGlobal()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Workers)
}
