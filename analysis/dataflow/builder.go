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
	"strconv"

	"github.com/awslabs/ar-dfcov/analysis/jvm"
)

// Accesses lists the variables defined and used at each instruction index
type Accesses struct {
	Defs map[int][]Variable
	Uses map[int][]Variable
}

func newAccesses() Accesses {
	return Accesses{Defs: map[int][]Variable{}, Uses: map[int][]Variable{}}
}

// AccessBuilder computes the variable accesses of a method from its event stream. Access builders only read the
// event stream and the method, and return a fresh result.
type AccessBuilder func(class string, m jvm.Method, events Events) Accesses

// DefaultAccessBuilders are the access builders used by BuildCFG: local variables, then fields
var DefaultAccessBuilders = []AccessBuilder{LocalAccesses, FieldAccesses}

// BuildCFG builds the control-flow graph of method m of class, with the variables interned in the domain d.
// Local variable and field accesses are resolved by the DefaultAccessBuilders.
func BuildCFG(class string, m jvm.Method, d *Domain) (*CFG, error) {
	return BuildCFGWith(class, m, d, DefaultAccessBuilders...)
}

// BuildCFGWith builds the control-flow graph of method m using the provided access builders. The shape of the graph
// (nodes and edges) and the Entry definitions are always computed.
func BuildCFGWith(class string, m jvm.Method, d *Domain, builders ...AccessBuilder) (*CFG, error) {
	events := NewEvents(m)
	sh, err := buildShape(events)
	if err != nil {
		return nil, fmt.Errorf("method %s.%s: %w", class, m.ID(), err)
	}
	params, err := EntryDefinitions(class, m)
	if err != nil {
		return nil, fmt.Errorf("method %s.%s: %w", class, m.ID(), err)
	}
	sh.entry.Defs = params

	for _, build := range builders {
		acc := build(class, m, events)
		for insn, defs := range acc.Defs {
			n, ok := sh.nodes[Index{Insn: insn}]
			if !ok {
				return nil, fmt.Errorf("method %s.%s: %w: access at instruction %d", class, m.ID(), ErrMissingNode, insn)
			}
			for _, v := range defs {
				n.addDef(v)
			}
		}
		for insn, uses := range acc.Uses {
			n, ok := sh.nodes[Index{Insn: insn}]
			if !ok {
				return nil, fmt.Errorf("method %s.%s: %w: access at instruction %d", class, m.ID(), ErrMissingNode, insn)
			}
			for _, v := range uses {
				n.addUse(v)
			}
		}
	}

	g := newCFG(class, m, d)
	for _, n := range sh.list {
		if err := g.addNode(n); err != nil {
			return nil, err
		}
	}
	for _, e := range sh.edges {
		g.addEdge(g.nodes[e.from], g.nodes[e.to], e.exception)
	}
	return g, nil
}

// shape is the result of the shape builder: the nodes without their variables, and the edges between them
type shape struct {
	nodes map[Index]*Node
	list  []*Node
	edges []shapeEdge
	entry *Node
}

type shapeEdge struct {
	from      Index
	to        Index
	exception bool
}

func (s *shape) add(n *Node) error {
	if _, ok := s.nodes[n.Index]; ok {
		return fmt.Errorf("%w: instruction %d", ErrDuplicateNode, n.Index.Insn)
	}
	s.nodes[n.Index] = n
	s.list = append(s.list, n)
	return nil
}

func buildShape(events Events) (*shape, error) {
	s := &shape{nodes: map[Index]*Node{}}
	s.entry = &Node{Kind: KindEntry, Index: EntryIndex, Line: EntryInsn}
	exit := &Node{Kind: KindExit, Index: ExitIndex, Line: -1}
	s.add(s.entry)
	s.add(exit)

	var err error
	returns := map[int]bool{}
	events.Each(func(ev Event) {
		if err != nil {
			return
		}
		switch ev.Kind {
		case EvInstruction:
			if ev.Opcode.IsInvoke() {
				callee := &Callee{Owner: ev.Owner, Name: ev.Name, Desc: ev.Desc, Opcode: ev.Opcode}
				call := &Node{Kind: KindCall, Index: Index{ev.Insn, 0}, Opcode: ev.Opcode, Line: ev.Line,
					Callee: callee}
				ret := &Node{Kind: KindReturn, Index: Index{ev.Insn, 1}, Opcode: ev.Opcode, Line: ev.Line,
					Callee: callee}
				if err = s.add(call); err == nil {
					err = s.add(ret)
					s.edges = append(s.edges, shapeEdge{from: call.Index, to: ret.Index})
				}
			} else {
				err = s.add(&Node{Kind: KindInstruction, Index: Index{ev.Insn, 0}, Opcode: ev.Opcode, Line: ev.Line})
			}
		case EvReturn:
			returns[ev.Insn] = true
		case EvEdge:
			from, ok := s.lastIndex(ev.Insn)
			if !ok {
				err = fmt.Errorf("%w: edge %d -> %d, no instruction %d", ErrMissingNode, ev.Insn, ev.To, ev.Insn)
				return
			}
			to := Index{Insn: ev.To}
			if _, ok := s.nodes[to]; !ok {
				err = fmt.Errorf("%w: edge %d -> %d, no instruction %d", ErrMissingNode, ev.Insn, ev.To, ev.To)
				return
			}
			s.edges = append(s.edges, shapeEdge{from: from, to: to, exception: ev.Exception})
		}
	}, EvInstruction, EvReturn, EvEdge)
	if err != nil {
		return nil, err
	}

	if len(s.list) == 2 {
		s.edges = append(s.edges, shapeEdge{from: EntryIndex, to: ExitIndex})
		return s, nil
	}
	if _, ok := s.nodes[Index{Insn: 0}]; !ok {
		return nil, ErrMissingFirstNode
	}
	s.edges = append(s.edges, shapeEdge{from: EntryIndex, to: Index{Insn: 0}})
	for _, n := range s.list {
		if returns[n.Index.Insn] && n.Kind == KindInstruction {
			s.edges = append(s.edges, shapeEdge{from: n.Index, to: ExitIndex})
		}
	}
	return s, nil
}

// lastIndex returns the index of the node control leaves instruction insn from: the Return node of invokes
func (s *shape) lastIndex(insn int) (Index, bool) {
	if _, ok := s.nodes[Index{insn, 1}]; ok {
		return Index{insn, 1}, true
	}
	_, ok := s.nodes[Index{Insn: insn}]
	return Index{Insn: insn}, ok
}

// EntryDefinitions returns the definitions of the Entry node of method m: one per parameter slot, plus the zero
// variable. Parameter names come from the local variable table, or are the slot number; types come from the
// method descriptor.
func EntryDefinitions(class string, m jvm.Method) ([]Variable, error) {
	params, err := m.Parameters(class)
	if err != nil {
		return nil, err
	}
	defs := []Variable{ZeroVariable(class, m.ID())}
	for _, p := range params {
		name := strconv.Itoa(p.Slot)
		if lv, ok := m.LocalVariableAt(p.Slot, 0, false); ok {
			name = lv.Name
		}
		insertVariable(&defs, Variable{
			Class:        class,
			Method:       m.ID(),
			Slot:         p.Slot,
			Name:         name,
			Descriptor:   p.Desc,
			Insn:         EntryInsn,
			Line:         EntryInsn,
			IsDefinition: true,
		})
	}
	return defs, nil
}

// LocalAccesses resolves the loads, stores and increments of local variable slots. A slot is resolved to the entry
// of the local variable table live at the instruction; unresolved slots are named by their number and have the
// UnknownDescriptor type. Increments are both a use and a definition.
func LocalAccesses(class string, m jvm.Method, events Events) Accesses {
	acc := newAccesses()
	resolve := func(ev Event, def bool) Variable {
		v := Variable{
			Class:        class,
			Method:       m.ID(),
			Slot:         ev.Slot,
			Name:         strconv.Itoa(ev.Slot),
			Descriptor:   UnknownDescriptor,
			Insn:         ev.Insn,
			Line:         ev.Line,
			IsDefinition: def,
		}
		if lv, ok := m.LocalVariableAt(ev.Slot, ev.Insn, def); ok {
			v.Name = lv.Name
			v.Descriptor = lv.Desc
		}
		return v
	}
	events.Each(func(ev Event) {
		switch ev.Kind {
		case EvLoad:
			acc.Uses[ev.Insn] = append(acc.Uses[ev.Insn], resolve(ev, false))
		case EvStore:
			acc.Defs[ev.Insn] = append(acc.Defs[ev.Insn], resolve(ev, true))
		case EvIncrement:
			acc.Uses[ev.Insn] = append(acc.Uses[ev.Insn], resolve(ev, false))
			acc.Defs[ev.Insn] = append(acc.Defs[ev.Insn], resolve(ev, true))
		}
	}, EvLoad, EvStore, EvIncrement)
	return acc
}

// FieldAccesses resolves field reads and writes. Field variables are named Owner.name and live in FieldSlot.
func FieldAccesses(class string, m jvm.Method, events Events) Accesses {
	acc := newAccesses()
	events.Each(func(ev Event) {
		v := Variable{
			Class:        class,
			Method:       m.ID(),
			Slot:         FieldSlot,
			Name:         ev.Owner + "." + ev.Name,
			Descriptor:   ev.Desc,
			Insn:         ev.Insn,
			Line:         ev.Line,
			IsDefinition: ev.Kind == EvFieldWrite,
			IsField:      true,
		}
		if v.Descriptor == "" {
			v.Descriptor = UnknownDescriptor
		}
		if v.IsDefinition {
			acc.Defs[ev.Insn] = append(acc.Defs[ev.Insn], v)
		} else {
			acc.Uses[ev.Insn] = append(acc.Uses[ev.Insn], v)
		}
	}, EvFieldRead, EvFieldWrite)
	return acc
}
