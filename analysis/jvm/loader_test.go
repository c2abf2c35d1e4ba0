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

package jvm

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityClass() Class {
	return Class{
		Name:   "com/example/Simple",
		Source: "Simple.java",
		Methods: []Method{{
			Name:   "identity",
			Desc:   "(I)I",
			Access: AccStatic,
			Instructions: []Instruction{
				{Index: 0, Opcode: Iload0, Line: 3},
				{Index: 1, Opcode: Ireturn, Line: 3},
			},
			LocalVariables: []LocalVariable{{Name: "x", Desc: "I", Slot: 0, Start: 0, End: 1}},
			Edges:          []Edge{{From: 0, To: 1}},
		}},
	}
}

func TestFormatOf(t *testing.T) {
	for name, want := range map[string]Format{
		"a.yaml": FormatYAML, "a.YML": FormatYAML, "dir/a.json": FormatJSON,
		"a.msgpack": FormatMsgpack, "a.mpk": FormatMsgpack,
	} {
		f, err := FormatOf(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, f, name)
	}
	_, err := FormatOf("a.class")
	assert.ErrorContains(t, err, "unsupported class file extension")
	assert.Equal(t, "msgpack", FormatMsgpack.String())
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := []Class{identityClass()}
	for _, ext := range []string{".yaml", ".json", ".msgpack"} {
		t.Run(ext, func(t *testing.T) {
			format, err := FormatOf(ext)
			require.NoError(t, err)
			filename := filepath.Join(dir, "classes"+ext)
			var buf bytes.Buffer
			require.NoError(t, WriteClasses(&buf, want, format))
			require.NoError(t, os.WriteFile(filename, buf.Bytes(), 0o600))

			got, err := LoadClasses(filename)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			m, ok := got[0].Method("identity(I)I")
			require.True(t, ok)
			assert.True(t, m.IsStatic())
			_, ok = got[0].Method("identity(J)J")
			assert.False(t, ok)
		})
	}
}

func TestReadClassesYAML(t *testing.T) {
	src := `
- name: com/example/Bar
  methods:
    - name: set
      desc: (I)V
      access: 1
      instructions:
        - {index: 0, op: ALOAD_0, line: 5}
        - {index: 1, op: ILOAD_1, line: 5}
        - {index: 2, op: PUTFIELD, owner: com/example/Bar, name: v, desc: I, line: 5}
        - {index: 3, op: 177, line: 6}
      edges: [{from: 0, to: 1}, {from: 1, to: 2}, {from: 2, to: 3}]
`
	classes, err := ReadClasses(strings.NewReader(src), FormatYAML)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	m := classes[0].Methods[0]
	assert.Equal(t, "set(I)V", m.ID())
	assert.Equal(t, Putfield, m.Instructions[2].Opcode)
	assert.Equal(t, Return, m.Instructions[3].Opcode)
	assert.Empty(t, m.LocalVariables)
}

func TestReadClassesErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"no name", `[{methods: []}]`, "class without a name"},
		{"duplicate", `[{name: A, methods: [{name: f, desc: ()V}, {name: f, desc: ()V}]}]`, "duplicate method f()V"},
		{"descriptor", `[{name: A, methods: [{name: f, desc: (X)V}]}]`, "malformed descriptor"},
		{"opcode", `[{name: A, methods: [{name: f, desc: ()V, instructions: [{index: 0, op: WHAT}]}]}]`, "unknown opcode"},
		{"syntax", `{`, "could not decode classes as yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadClasses(strings.NewReader(tt.src), FormatYAML)
			assert.ErrorContains(t, err, tt.msg)
		})
	}
	_, err := ReadClasses(strings.NewReader("[]"), Format(7))
	assert.ErrorContains(t, err, "unsupported format")
	assert.Error(t, WriteClasses(&bytes.Buffer{}, nil, Format(7)))

	_, err = LoadClasses(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "could not open class file")
}
