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

package dataflow

import (
	"fmt"
	"math"
	"strconv"
)

const (
	// UnknownDescriptor is the type descriptor of variables whose type could not be resolved
	UnknownDescriptor = "UNKNOWN"

	// ZeroName is the name of the zero variable
	ZeroName = "ZERO"

	// FieldSlot is the slot of field variables
	FieldSlot = -1

	// EntryInsn is the instruction index of the Entry node and of the parameter definitions
	EntryInsn = math.MinInt32

	// ExitInsn is the instruction index of the Exit node
	ExitInsn = math.MaxInt32
)

// Variable is a storage location read or written at some instruction. Two variables are the same if all their
// fields are equal.
type Variable struct {
	// Class is the owning class
	Class string
	// Method is the id of the owning method, or empty for variables that are not owned by a method
	Method string
	// Slot is the local variable slot, or FieldSlot for fields
	Slot int
	// Name is the name in the local variable table, the slot number when the table has no entry, or Owner.name
	// for fields
	Name string
	// Descriptor is the type descriptor, or UnknownDescriptor
	Descriptor string
	// Insn is the index of the instruction defining or using the variable
	Insn int
	// Line is the source line of the instruction
	Line         int
	IsDefinition bool
	IsField      bool
}

// ZeroVariable returns the zero variable of a method. It is always defined at the Entry node of the method's CFG
// and never forms a DU-pair.
func ZeroVariable(class, method string) Variable {
	return Variable{
		Class:        class,
		Method:       method,
		Slot:         FieldSlot,
		Name:         ZeroName,
		Descriptor:   UnknownDescriptor,
		Insn:         EntryInsn,
		Line:         -1,
		IsDefinition: true,
	}
}

// IsZero returns true if v is a zero variable
func (v Variable) IsZero() bool {
	return v.Name == ZeroName && v.Descriptor == UnknownDescriptor && v.Insn == EntryInsn
}

// IsResolved returns true if the type of the variable is known
func (v Variable) IsResolved() bool {
	return v.Descriptor != UnknownDescriptor
}

// IsParameter returns true if v is a parameter definition of the Entry node
func (v Variable) IsParameter() bool {
	return v.IsDefinition && v.Insn == EntryInsn && !v.IsZero()
}

// SameLocation returns true if v and w denote the same storage location in the same method, regardless of the
// instruction where they occur
func (v Variable) SameLocation(w Variable) bool {
	return v.Class == w.Class && v.Method == w.Method && v.Slot == w.Slot && v.Name == w.Name &&
		v.IsField == w.IsField
}

func (v Variable) String() string {
	kind := "use"
	if v.IsDefinition {
		kind = "def"
	}
	at := strconv.Itoa(v.Insn)
	if v.Insn == EntryInsn {
		at = "entry"
	}
	return fmt.Sprintf("%s %s:%s@%s", kind, v.Name, v.Descriptor, at)
}

// FullString returns the string representation of v including its class and method
func (v Variable) FullString() string {
	return fmt.Sprintf("%s.%s %s (line %d)", v.Class, v.Method, v, v.Line)
}

// Less orders variables by instruction index, then name, then slot, with definitions first
func (v Variable) Less(w Variable) bool {
	if v.Class != w.Class {
		return v.Class < w.Class
	}
	if v.Method != w.Method {
		return v.Method < w.Method
	}
	if v.Insn != w.Insn {
		return v.Insn < w.Insn
	}
	if v.Name != w.Name {
		return v.Name < w.Name
	}
	if v.Slot != w.Slot {
		return v.Slot < w.Slot
	}
	if v.IsDefinition != w.IsDefinition {
		return v.IsDefinition
	}
	if v.Descriptor != w.Descriptor {
		return v.Descriptor < w.Descriptor
	}
	if v.Line != w.Line {
		return v.Line < w.Line
	}
	return !v.IsField && w.IsField
}
