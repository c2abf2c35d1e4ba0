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
	"errors"
	"fmt"
)

// ErrBadDescriptor is returned when a type or method descriptor cannot be parsed
var ErrBadDescriptor = errors.New("malformed descriptor")

// ParseMethodDescriptor returns the parameter type descriptors and the return type descriptor of a method
// descriptor such as "(I[JLjava/lang/String;)V".
func ParseMethodDescriptor(desc string) ([]string, string, error) {
	if len(desc) < 3 || desc[0] != '(' {
		return nil, "", fmt.Errorf("%w: %q", ErrBadDescriptor, desc)
	}
	var params []string
	i := 1
	for i < len(desc) && desc[i] != ')' {
		n, err := fieldDescriptorLength(desc[i:])
		if err != nil {
			return nil, "", fmt.Errorf("%w: %q", err, desc)
		}
		params = append(params, desc[i:i+n])
		i += n
	}
	if i >= len(desc)-1 {
		return nil, "", fmt.Errorf("%w: %q has no return type", ErrBadDescriptor, desc)
	}
	ret := desc[i+1:]
	if ret != "V" {
		n, err := fieldDescriptorLength(ret)
		if err != nil || n != len(ret) {
			return nil, "", fmt.Errorf("%w: %q has a bad return type", ErrBadDescriptor, desc)
		}
	}
	return params, ret, nil
}

func fieldDescriptorLength(s string) (int, error) {
	i := 0
	for i < len(s) && s[i] == '[' {
		i++
	}
	if i >= len(s) {
		return 0, ErrBadDescriptor
	}
	switch s[i] {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z':
		return i + 1, nil
	case 'L':
		for j := i + 1; j < len(s); j++ {
			if s[j] == ';' {
				return j + 1, nil
			}
		}
	}
	return 0, ErrBadDescriptor
}

// SlotSize returns the number of local variable slots taken by a value of type desc
func SlotSize(desc string) int {
	if desc == "J" || desc == "D" {
		return 2
	}
	return 1
}

// Parameter is a formal parameter of a method, including the receiver of instance methods
type Parameter struct {
	// Position is the position in the argument list, the receiver being at position 0 in instance methods
	Position int
	Slot     int
	Desc     string
}

// Parameters returns the formal parameters of the method in order, with their slots. Instance methods (including
// constructors) have their receiver in slot 0, typed by owner.
func (m Method) Parameters(owner string) ([]Parameter, error) {
	descs, _, err := ParseMethodDescriptor(m.Desc)
	if err != nil {
		return nil, err
	}
	var params []Parameter
	slot := 0
	if !m.IsStatic() {
		params = append(params, Parameter{Position: 0, Slot: 0, Desc: "L" + owner + ";"})
		slot = 1
	}
	for _, d := range descs {
		params = append(params, Parameter{Position: len(params), Slot: slot, Desc: d})
		slot += SlotSize(d)
	}
	return params, nil
}

// ArgumentCount returns the number of values an invocation of a method with descriptor desc consumes: its
// parameters, plus the receiver when the invoke is neither static nor dynamic.
func ArgumentCount(op Opcode, desc string) (int, error) {
	params, _, err := ParseMethodDescriptor(desc)
	if err != nil {
		return 0, err
	}
	n := len(params)
	if op != Invokestatic && op != Invokedynamic {
		n++
	}
	return n, nil
}
