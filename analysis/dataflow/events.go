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
)

// EventKind is the kind of an instruction event
type EventKind int

const (
	// EvInstruction is emitted once per instruction, before any other event of the instruction
	EvInstruction EventKind = iota
	// EvLoad is a read of a local variable slot
	EvLoad
	// EvStore is a write of a local variable slot
	EvStore
	// EvIncrement is an in-place increment of a local variable slot, a read and a write
	EvIncrement
	// EvFieldRead is a GETFIELD or GETSTATIC
	EvFieldRead
	// EvFieldWrite is a PUTFIELD or PUTSTATIC
	EvFieldWrite
	// EvArrayStore is a write of an array element
	EvArrayStore
	// EvInvoke is a method invocation
	EvInvoke
	// EvReturn is a return instruction
	EvReturn
	// EvEdge is a control-flow edge between two instructions
	EvEdge
)

var eventKindNames = [...]string{"insn", "load", "store", "iinc", "getfield", "putfield", "arraystore", "invoke",
	"return", "edge"}

func (k EventKind) String() string {
	if int(k) < len(eventKindNames) {
		return eventKindNames[k]
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Event is an element of the event stream of a method
type Event struct {
	Kind   EventKind
	Insn   int
	Line   int
	Opcode jvm.Opcode
	// Slot is the local variable slot of load, store and increment events
	Slot int
	// Owner, Name and Desc reference the field or method of field and invoke events
	Owner string
	Name  string
	Desc  string
	// To is the target instruction of edge events; Insn is the source
	To        int
	Exception bool
}

// Events is the immutable stream of events of one method. Instruction events come in instruction order, followed
// by the edge events in the order of the decoded edges.
type Events struct {
	events []Event
}

// NewEvents turns the instructions and edges of m into an event stream in one pass
func NewEvents(m jvm.Method) Events {
	events := make([]Event, 0, 2*len(m.Instructions)+len(m.Edges))
	for _, insn := range m.Instructions {
		base := Event{Insn: insn.Index, Line: insn.Line, Opcode: insn.Opcode}
		ev := base
		ev.Kind = EvInstruction
		ev.Owner, ev.Name, ev.Desc = insn.Owner, insn.Name, insn.Desc
		events = append(events, ev)

		ev = base
		op := insn.Opcode
		switch {
		case op == jvm.Iinc:
			ev.Kind = EvIncrement
			ev.Slot, _ = insn.Slot()
		case op.IsLoad():
			ev.Kind = EvLoad
			ev.Slot, _ = insn.Slot()
		case op.IsStore():
			ev.Kind = EvStore
			ev.Slot, _ = insn.Slot()
		case op.IsFieldRead():
			ev.Kind = EvFieldRead
			ev.Owner, ev.Name, ev.Desc = insn.Owner, insn.Name, insn.Desc
		case op.IsFieldWrite():
			ev.Kind = EvFieldWrite
			ev.Owner, ev.Name, ev.Desc = insn.Owner, insn.Name, insn.Desc
		case op.IsArrayStore():
			ev.Kind = EvArrayStore
		case op.IsInvoke():
			ev.Kind = EvInvoke
			ev.Owner, ev.Name, ev.Desc = insn.Owner, insn.Name, insn.Desc
		case op.IsReturn():
			ev.Kind = EvReturn
		default:
			continue
		}
		events = append(events, ev)
	}
	for _, e := range m.Edges {
		events = append(events, Event{Kind: EvEdge, Insn: e.From, To: e.To, Exception: e.Exception})
	}
	return Events{events: events}
}

// Len returns the number of events
func (e Events) Len() int {
	return len(e.events)
}

// At returns the i-th event
func (e Events) At(i int) Event {
	return e.events[i]
}

// Each calls f on every event of one of the kinds, in stream order. If no kind is given, f is called on all events.
func (e Events) Each(f func(Event), kinds ...EventKind) {
	if len(kinds) == 0 {
		for _, ev := range e.events {
			f(ev)
		}
		return
	}
	var mask uint64
	for _, k := range kinds {
		mask |= 1 << uint(k)
	}
	for _, ev := range e.events {
		if mask&(1<<uint(ev.Kind)) != 0 {
			f(ev)
		}
	}
}

// Count returns the number of events of kind k
func (e Events) Count(k EventKind) int {
	n := 0
	e.Each(func(Event) { n++ }, k)
	return n
}
