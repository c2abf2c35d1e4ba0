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

	"github.com/awslabs/ar-dfcov/analysis/jvm"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/container/intsets"
)

// NodeKind is the kind of a CFG node
type NodeKind int

const (
	// KindInstruction is the kind of nodes of instructions that are not invokes
	KindInstruction NodeKind = iota
	// KindEntry is the kind of the synthetic Entry node
	KindEntry
	// KindExit is the kind of the synthetic Exit node
	KindExit
	// KindCall is the kind of the first half of an invoke instruction
	KindCall
	// KindReturn is the kind of the second half of an invoke instruction
	KindReturn
)

func (k NodeKind) String() string {
	switch k {
	case KindInstruction:
		return "insn"
	case KindEntry:
		return "entry"
	case KindExit:
		return "exit"
	case KindCall:
		return "call"
	case KindReturn:
		return "return"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Index is the key of a node in a CFG. Nodes are ordered by instruction index, then by Sub. The Call node of an
// invoke at instruction i has index (i, 0) and its Return node (i, 1).
type Index struct {
	Insn int
	Sub  int
}

// EntryIndex is the index of Entry nodes
var EntryIndex = Index{Insn: EntryInsn}

// ExitIndex is the index of Exit nodes
var ExitIndex = Index{Insn: ExitInsn}

// Compare returns -1, 0 or 1 when a is lower, equal or greater than b
func (a Index) Compare(b Index) int {
	switch {
	case a.Insn < b.Insn:
		return -1
	case a.Insn > b.Insn:
		return 1
	case a.Sub < b.Sub:
		return -1
	case a.Sub > b.Sub:
		return 1
	}
	return 0
}

// Less returns true if a is strictly lower than b
func (a Index) Less(b Index) bool {
	return a.Compare(b) < 0
}

func (a Index) String() string {
	switch a {
	case EntryIndex:
		return "entry"
	case ExitIndex:
		return "exit"
	}
	if a.Sub == 0 {
		return fmt.Sprintf("%d", a.Insn)
	}
	return fmt.Sprintf("%d.%d", a.Insn, a.Sub)
}

// Callee is the method referenced by a Call node
type Callee struct {
	Owner  string
	Name   string
	Desc   string
	Opcode jvm.Opcode
}

// ID returns the method id of the callee in its owner class
func (c Callee) ID() string {
	return c.Name + c.Desc
}

// IsStatic returns true if the callee is invoked without a receiver
func (c Callee) IsStatic() bool {
	return c.Opcode == jvm.Invokestatic || c.Opcode == jvm.Invokedynamic
}

// IsConstructor returns true if the callee is an instance initializer
func (c Callee) IsConstructor() bool {
	return c.Name == jvm.ConstructorName
}

func (c Callee) String() string {
	return c.Owner + "." + c.Name + c.Desc
}

// Node is a node of a CFG: an instruction, or one of the synthetic Entry, Exit, Call and Return nodes.
// The definition and use sets are ordered.
type Node struct {
	Kind   NodeKind
	Index  Index
	Method string
	Opcode jvm.Opcode
	Line   int
	Defs   []Variable
	Uses   []Variable

	// Callee is set on Call nodes
	Callee *Callee

	preds []*Node
	succs []*Node

	// reach holds the definitions live on entry of the node, reachOut the definitions live on exit
	reach    intsets.Sparse
	reachOut intsets.Sparse
}

// Predecessors returns the predecessors of the node ordered by index
func (n *Node) Predecessors() []*Node {
	return n.preds
}

// Successors returns the successors of the node ordered by index
func (n *Node) Successors() []*Node {
	return n.succs
}

// IsCall returns true if n is a Call node
func (n *Node) IsCall() bool {
	return n.Kind == KindCall
}

// Defines returns true if some definition of the node has the name
func (n *Node) Defines(name string) bool {
	for _, d := range n.Defs {
		if d.Name == name {
			return true
		}
	}
	return false
}

func (n *Node) String() string {
	if n.Kind == KindEntry || n.Kind == KindExit {
		return n.Kind.String()
	}
	s := fmt.Sprintf("%s %s", n.Index, n.Opcode)
	if n.Callee != nil {
		if n.Kind == KindCall {
			s += " call " + n.Callee.String()
		} else {
			s += " return " + n.Callee.String()
		}
	}
	return s
}

func (n *Node) addDef(v Variable) bool {
	return insertVariable(&n.Defs, v)
}

func (n *Node) addUse(v Variable) bool {
	return insertVariable(&n.Uses, v)
}

// insertVariable inserts v in the ordered slice vs and returns false if it was already present
func insertVariable(vs *[]Variable, v Variable) bool {
	i, found := slices.BinarySearchFunc(*vs, v, compareVariables)
	if found {
		return false
	}
	*vs = slices.Insert(*vs, i, v)
	return true
}

func compareVariables(a, b Variable) int {
	switch {
	case a == b:
		return 0
	case a.Less(b):
		return -1
	}
	return 1
}

// insertNode inserts n in the slice ns ordered by index, and returns false if a node with the same index
// is already present
func insertNode(ns *[]*Node, n *Node) bool {
	i, found := slices.BinarySearchFunc(*ns, n, func(x, y *Node) int { return x.Index.Compare(y.Index) })
	if found {
		return false
	}
	*ns = slices.Insert(*ns, i, n)
	return true
}
