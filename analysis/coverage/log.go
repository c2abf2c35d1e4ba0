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

package coverage

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/go-logfmt/logfmt"
)

// ErrMalformedObservation is returned when a line of an observation log is not a valid observation
var ErrMalformedObservation = errors.New("malformed observation")

// ReadObservations reads an observation log and inserts its observations in the store. The log has one
// observation per line in the logfmt format:
//
//	class=Calc method=run()I name=x slot=0 insn=1 line=6 def=true
//
// Blank lines and lines starting with # are ignored, as are unknown keys. It returns the number of observations
// read.
func ReadObservations(r io.Reader, s *Store) (int, error) {
	scanner := bufio.NewScanner(r)
	n := 0
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		o, err := parseObservation(line)
		if err != nil {
			return n, fmt.Errorf("line %d: %w", lineNum, err)
		}
		s.Observe(o)
		n++
	}
	return n, scanner.Err()
}

func parseObservation(line []byte) (Observation, error) {
	o := Observation{Line: -1}
	seen := map[string]bool{}
	d := logfmt.NewDecoder(bytes.NewReader(line))
	for d.ScanRecord() {
		for d.ScanKeyval() {
			k, v := string(d.Key()), string(d.Value())
			seen[k] = true
			var err error
			switch k {
			case "class":
				o.Class = v
			case "method":
				o.Method = v
			case "name":
				o.Name = v
			case "slot":
				o.Slot, err = strconv.Atoi(v)
			case "insn":
				o.Insn, err = strconv.Atoi(v)
			case "line":
				o.Line, err = strconv.Atoi(v)
			case "def":
				o.IsDefinition, err = strconv.ParseBool(v)
			}
			if err != nil {
				return o, fmt.Errorf("%w: %s=%q: %v", ErrMalformedObservation, k, v, err)
			}
		}
	}
	if err := d.Err(); err != nil {
		return o, fmt.Errorf("%w: %v", ErrMalformedObservation, err)
	}
	for _, k := range []string{"class", "method", "name", "insn"} {
		if !seen[k] {
			return o, fmt.Errorf("%w: missing %s", ErrMalformedObservation, k)
		}
	}
	return o, nil
}

// WriteObservations writes the observations in the format read by ReadObservations
func WriteObservations(w io.Writer, obs []Observation) error {
	enc := logfmt.NewEncoder(w)
	for _, o := range obs {
		err := enc.EncodeKeyvals(
			"class", o.Class,
			"method", o.Method,
			"name", o.Name,
			"slot", o.Slot,
			"insn", o.Insn,
			"line", o.Line,
			"def", o.IsDefinition,
		)
		if err != nil {
			return err
		}
		if err := enc.EndRecord(); err != nil {
			return err
		}
	}
	return nil
}
