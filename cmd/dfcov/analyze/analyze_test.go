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

package analyze

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/awslabs/ar-dfcov/analysis"
	"github.com/awslabs/ar-dfcov/analysis/jvm"
	"github.com/awslabs/ar-dfcov/internal/analysistest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportFormat(t *testing.T) {
	tests := []struct {
		args []string
		want jvm.Format
	}{
		{nil, jvm.FormatYAML},
		{[]string{"-format", "json"}, jvm.FormatJSON},
		{[]string{"-o", "report.mpk"}, jvm.FormatMsgpack},
		{[]string{"-o", "report.json", "-format", "yaml"}, jvm.FormatYAML},
	}
	for _, test := range tests {
		flags, err := NewFlags(test.args)
		require.NoError(t, err)
		f, err := flags.ReportFormat()
		require.NoError(t, err)
		assert.Equal(t, test.want, f, "%v", test.args)
	}
	flags, err := NewFlags([]string{"-format", "xml"})
	require.NoError(t, err)
	_, err = flags.ReportFormat()
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "run.log")
	require.NoError(t, os.WriteFile(logFile, []byte("class=Calc method=run()I name=x slot=0 insn=1 line=6 def=true\n"+
		"class=Calc method=run()I name=x slot=0 insn=2 line=7 def=false\n"), 0o600))
	out := filepath.Join(dir, "report.json")

	flags, err := NewFlags([]string{"-observations", logFile, "-o", out, analysistest.Path("calc.yaml"),
		analysistest.Path("broken.yaml")})
	require.NoError(t, err)
	require.NoError(t, Run(flags))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	report, err := analysis.ReadReport(f, jvm.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Summary.Classes)
	assert.Equal(t, 2, report.Summary.Uninstrumentable)
	assert.Equal(t, 3, report.Summary.CoveredPairs)

	var buf bytes.Buffer
	PrintSummary(&buf, report)
	assert.Contains(t, buf.String(), "uninstrumentable")
	assert.Contains(t, buf.String(), "run()I")
}
