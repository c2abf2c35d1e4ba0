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
	"errors"
	"fmt"
	"strings"

	"github.com/awslabs/ar-dfcov/analysis/jvm"
	"golang.org/x/exp/slices"
)

var (
	// ErrMissingNode is returned when an edge of the decoded method refers to an instruction that does not exist
	ErrMissingNode = errors.New("edge to a missing node")

	// ErrMissingFirstNode is returned when a method has instructions but none at index 0
	ErrMissingFirstNode = errors.New("missing first node")

	// ErrDuplicateNode is returned when two instructions of a method have the same index
	ErrDuplicateNode = errors.New("duplicate node")
)

// CFG is the control-flow graph of one method. It has exactly one Entry node, without predecessors, and one Exit
// node, without successors. Edges are deduplicated.
type CFG struct {
	// Class is the name of the class of the method
	Class string
	// Method is the decoded method
	Method jvm.Method
	// Domain is the variable domain of the class analysis the CFG belongs to
	Domain *Domain

	nodes map[Index]*Node
	order []*Node
	entry *Node
	exit  *Node
	edges int

	// exceptional holds the edges that are only taken when an exception is thrown
	exceptional map[[2]Index]bool
}

func newCFG(class string, m jvm.Method, d *Domain) *CFG {
	return &CFG{Class: class, Method: m, Domain: d, nodes: map[Index]*Node{}, exceptional: map[[2]Index]bool{}}
}

// MethodID returns the id of the method of the CFG
func (g *CFG) MethodID() string {
	return g.Method.ID()
}

// Entry returns the Entry node
func (g *CFG) Entry() *Node {
	return g.entry
}

// Exit returns the Exit node
func (g *CFG) Exit() *Node {
	return g.exit
}

// Node returns the node at idx, if it exists
func (g *CFG) Node(idx Index) (*Node, bool) {
	n, ok := g.nodes[idx]
	return n, ok
}

// Nodes returns all the nodes ordered by index. The Entry node is first, the Exit node is last.
func (g *CFG) Nodes() []*Node {
	return g.order
}

// Len returns the number of nodes
func (g *CFG) Len() int {
	return len(g.order)
}

// NumEdges returns the number of edges
func (g *CFG) NumEdges() int {
	return g.edges
}

// Parameters returns the parameter definitions of the Entry node ordered by slot. The position of a parameter in
// the result is its position in the argument list of the method, the receiver of instance methods being first.
func (g *CFG) Parameters() []Variable {
	var params []Variable
	for _, d := range g.entry.Defs {
		if d.IsParameter() {
			params = append(params, d)
		}
	}
	slices.SortFunc(params, func(a, b Variable) bool { return a.Slot < b.Slot })
	return params
}

// Reach returns the definitions that reach the node n
func (g *CFG) Reach(n *Node) []Variable {
	return g.Domain.Variables(&n.reach)
}

// ReachOut returns the definitions live on exit of the node n
func (g *CFG) ReachOut(n *Node) []Variable {
	return g.Domain.Variables(&n.reachOut)
}

// Reaches returns true if the definition d reaches the node n
func (g *CFG) Reaches(d Variable, n *Node) bool {
	return g.Domain.Contains(&n.reach, d)
}

// AddDefinition adds the definition v to the node at idx. It returns true if the definition was not already present.
// The reaching definitions must be recomputed after definitions are added.
func (g *CFG) AddDefinition(idx Index, v Variable) (bool, error) {
	n, ok := g.nodes[idx]
	if !ok {
		return false, fmt.Errorf("%w: %s in %s", ErrMissingNode, idx, g.MethodID())
	}
	g.Domain.ID(v)
	return n.addDef(v), nil
}

// Definitions returns all the definitions of the CFG in node order
func (g *CFG) Definitions() []Variable {
	var defs []Variable
	for _, n := range g.order {
		defs = append(defs, n.Defs...)
	}
	return defs
}

// Uses returns all the uses of the CFG in node order
func (g *CFG) Uses() []Variable {
	var uses []Variable
	for _, n := range g.order {
		uses = append(uses, n.Uses...)
	}
	return uses
}

// CallNodes returns the Call nodes in index order
func (g *CFG) CallNodes() []*Node {
	var calls []*Node
	for _, n := range g.order {
		if n.Kind == KindCall {
			calls = append(calls, n)
		}
	}
	return calls
}

func (g *CFG) addNode(n *Node) error {
	if _, ok := g.nodes[n.Index]; ok {
		return fmt.Errorf("%w: %s in %s", ErrDuplicateNode, n.Index, g.MethodID())
	}
	n.Method = g.MethodID()
	g.nodes[n.Index] = n
	insertNode(&g.order, n)
	switch n.Kind {
	case KindEntry:
		g.entry = n
	case KindExit:
		g.exit = n
	}
	for _, v := range n.Defs {
		g.Domain.ID(v)
	}
	return nil
}

// IsExceptionEdge returns true if the edge from -> to is an exception edge
func (g *CFG) IsExceptionEdge(from, to Index) bool {
	return g.exceptional[[2]Index{from, to}]
}

// addEdge adds the edge from -> to, unless it already exists. An edge that is both a normal and an exception edge
// is a normal edge.
func (g *CFG) addEdge(from, to *Node, exception bool) {
	key := [2]Index{from.Index, to.Index}
	if insertNode(&from.succs, to) {
		insertNode(&to.preds, from)
		g.edges++
		if exception {
			g.exceptional[key] = true
		}
	} else if !exception {
		delete(g.exceptional, key)
	}
}

func (g *CFG) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CFG %s.%s\n", g.Class, g.MethodID())
	for _, n := range g.order {
		fmt.Fprintf(&b, "  %s", n)
		if len(n.Defs) > 0 {
			fmt.Fprintf(&b, " defs=%v", n.Defs)
		}
		if len(n.Uses) > 0 {
			fmt.Fprintf(&b, " uses=%v", n.Uses)
		}
		if len(n.succs) > 0 {
			succs := make([]string, len(n.succs))
			for i, s := range n.succs {
				succs[i] = s.Index.String()
			}
			fmt.Fprintf(&b, " -> %s", strings.Join(succs, ", "))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
