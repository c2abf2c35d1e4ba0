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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format is the serialization format of a class file produced by the decoder
type Format int

const (
	// FormatYAML is the yaml format (.yaml, .yml)
	FormatYAML Format = iota
	// FormatJSON is the json format (.json)
	FormatJSON
	// FormatMsgpack is the msgpack format (.msgpack, .mpk)
	FormatMsgpack
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	case FormatMsgpack:
		return "msgpack"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// FormatOf returns the format of a file from its extension
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".msgpack", ".mpk":
		return FormatMsgpack, nil
	}
	return 0, fmt.Errorf("unsupported class file extension %q", filepath.Ext(filename))
}

// LoadClasses loads the classes stored in filename. The file contains a list of classes; its format is determined
// by its extension.
func LoadClasses(filename string) ([]Class, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open class file: %w", err)
	}
	defer f.Close()
	classes, err := ReadClasses(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return classes, nil
}

// ReadClasses decodes a list of classes from r
func ReadClasses(r io.Reader, format Format) ([]Class, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var classes []Class
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(b, &classes)
	case FormatJSON:
		err = jsonAPI.Unmarshal(b, &classes)
	case FormatMsgpack:
		err = msgpack.NewDecoder(bytes.NewReader(b)).Decode(&classes)
	default:
		err = fmt.Errorf("unsupported format %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("could not decode classes as %s: %w", format, err)
	}
	for _, c := range classes {
		if err := c.validate(); err != nil {
			return nil, err
		}
	}
	return classes, nil
}

// WriteClasses encodes classes to w in the given format
func WriteClasses(w io.Writer, classes []Class, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(classes)
	case FormatJSON:
		return jsonAPI.NewEncoder(w).Encode(classes)
	case FormatMsgpack:
		return msgpack.NewEncoder(w).Encode(classes)
	}
	return fmt.Errorf("unsupported format %s", format)
}

func (c Class) validate() error {
	if c.Name == "" {
		return fmt.Errorf("class without a name")
	}
	seen := map[string]bool{}
	for _, m := range c.Methods {
		if seen[m.ID()] {
			return fmt.Errorf("class %s: duplicate method %s", c.Name, m.ID())
		}
		seen[m.ID()] = true
		if _, _, err := ParseMethodDescriptor(m.Desc); err != nil {
			return fmt.Errorf("class %s, method %s: %w", c.Name, m.Name, err)
		}
	}
	return nil
}
