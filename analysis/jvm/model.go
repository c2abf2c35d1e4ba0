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

// Package jvm contains the model of the pre-decoded JVM classes consumed by the def-use analysis: classes, methods,
// their instructions, local variable tables and control-flow edges. Decoding class files is done by an external
// tool; this package only loads its output in yaml, json or msgpack format.
package jvm

import (
	"fmt"
	"strings"
)

// AccStatic is the ACC_STATIC access flag of methods and fields
const AccStatic = 0x0008

// ConstructorName is the name of instance initialization methods
const ConstructorName = "<init>"

// Class is a decoded class
type Class struct {
	// Name is the internal name of the class, e.g. "com/example/Bar"
	Name    string   `yaml:"name" json:"name" msgpack:"name"`
	Source  string   `yaml:"source,omitempty" json:"source,omitempty" msgpack:"source,omitempty"`
	Methods []Method `yaml:"methods" json:"methods" msgpack:"methods"`
}

// Method is a decoded method. Instruction indices are positions in the method body, starting at 0.
type Method struct {
	Name string `yaml:"name" json:"name" msgpack:"name"`
	// Desc is the method descriptor, e.g. "(ILjava/lang/String;)V"
	Desc           string          `yaml:"desc" json:"desc" msgpack:"desc"`
	Access         int             `yaml:"access" json:"access" msgpack:"access"`
	Instructions   []Instruction   `yaml:"instructions" json:"instructions" msgpack:"instructions"`
	LocalVariables []LocalVariable `yaml:"locals,omitempty" json:"locals,omitempty" msgpack:"locals,omitempty"`
	// Edges are the control-flow edges between instruction indices, including the exception handler edges
	Edges []Edge `yaml:"edges,omitempty" json:"edges,omitempty" msgpack:"edges,omitempty"`
}

// Instruction is a decoded instruction
type Instruction struct {
	Index  int    `yaml:"index" json:"index" msgpack:"index"`
	Opcode Opcode `yaml:"op" json:"op" msgpack:"op"`
	Line   int    `yaml:"line,omitempty" json:"line,omitempty" msgpack:"line,omitempty"`
	// Var is the local variable slot operand of xLOAD, xSTORE and IINC. The xLOAD_n and xSTORE_n forms carry
	// their slot in the opcode.
	Var int `yaml:"var,omitempty" json:"var,omitempty" msgpack:"var,omitempty"`
	// Owner, Name and Desc are the member reference of field and invoke instructions
	Owner string `yaml:"owner,omitempty" json:"owner,omitempty" msgpack:"owner,omitempty"`
	Name  string `yaml:"name,omitempty" json:"name,omitempty" msgpack:"name,omitempty"`
	Desc  string `yaml:"desc,omitempty" json:"desc,omitempty" msgpack:"desc,omitempty"`
}

// LocalVariable is an entry of the local variable table. The variable is live in slot Slot between the instruction
// indices Start and End (inclusive). A negative End means the variable is live until the end of the method.
type LocalVariable struct {
	Name  string `yaml:"name" json:"name" msgpack:"name"`
	Desc  string `yaml:"desc" json:"desc" msgpack:"desc"`
	Slot  int    `yaml:"slot" json:"slot" msgpack:"slot"`
	Start int    `yaml:"start" json:"start" msgpack:"start"`
	End   int    `yaml:"end" json:"end" msgpack:"end"`
}

// Edge is a control-flow edge between two instruction indices
type Edge struct {
	From      int  `yaml:"from" json:"from" msgpack:"from"`
	To        int  `yaml:"to" json:"to" msgpack:"to"`
	Exception bool `yaml:"exception,omitempty" json:"exception,omitempty" msgpack:"exception,omitempty"`
}

// ID returns the identifier of the method in its class: its name followed by its descriptor
func (m Method) ID() string {
	return m.Name + m.Desc
}

// IsStatic returns true if the method has the ACC_STATIC flag
func (m Method) IsStatic() bool {
	return m.Access&AccStatic != 0
}

// IsConstructor returns true if the method is an instance initializer
func (m Method) IsConstructor() bool {
	return m.Name == ConstructorName
}

// Method returns the method of the class with the given id, if it exists
func (c Class) Method(id string) (Method, bool) {
	for _, m := range c.Methods {
		if m.ID() == id {
			return m, true
		}
	}
	return Method{}, false
}

// Slot returns the local variable slot accessed by the instruction, and false if the instruction does not access
// a local variable
func (i Instruction) Slot() (int, bool) {
	if s, ok := i.Opcode.ImplicitSlot(); ok {
		return s, true
	}
	if i.Opcode.IsLoad() || i.Opcode.IsStore() || i.Opcode == Iinc {
		return i.Var, true
	}
	return 0, false
}

// CalleeID returns the method id targeted by an invoke instruction
func (i Instruction) CalleeID() string {
	return i.Name + i.Desc
}

func (i Instruction) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d: %s", i.Index, i.Opcode)
	if s, ok := i.Slot(); ok {
		fmt.Fprintf(&b, " %d", s)
	}
	if i.Owner != "" || i.Name != "" {
		fmt.Fprintf(&b, " %s.%s%s", i.Owner, i.Name, i.Desc)
	}
	return b.String()
}

// Covers returns true if insn is in the live range of the local variable
func (lv LocalVariable) Covers(insn int) bool {
	return insn >= lv.Start && (lv.End < 0 || insn <= lv.End)
}

// LocalVariableAt returns the entry of the local variable table for slot at instruction insn. A store initializing
// a variable happens one instruction before the start of its live range, so stores also match the entry live at
// insn+1.
func (m Method) LocalVariableAt(slot int, insn int, store bool) (LocalVariable, bool) {
	for _, lv := range m.LocalVariables {
		if lv.Slot == slot && lv.Covers(insn) {
			return lv, true
		}
	}
	if store {
		for _, lv := range m.LocalVariables {
			if lv.Slot == slot && lv.Covers(insn+1) {
				return lv, true
			}
		}
	}
	return LocalVariable{}, false
}
