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

package interproc

import (
	"io"

	"github.com/awslabs/ar-dfcov/analysis/config"
	"github.com/awslabs/ar-dfcov/analysis/dataflow"
	"github.com/awslabs/ar-dfcov/internal/funcutil"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// A Match links the argument passed at a call site to the parameter definition of the Entry node of the callee
type Match struct {
	Caller   string
	Callee   string
	CallSite dataflow.Index
	Position int
	// CallerUse is the use of the variable passed as argument. It is the zero value for constant arguments.
	CallerUse dataflow.Variable
	// CallerDefs are the definitions of the caller that reach CallerUse
	CallerDefs []dataflow.Variable
	CalleeDef  dataflow.Variable
	Constant   bool
}

// Options configure the matcher
type Options struct {
	// ModelImpureCalls adds a definition at the call node for every non-primitive variable passed to an impure
	// method
	ModelImpureCalls bool
	// IsPrimitive returns true if values of the type descriptor cannot be mutated by a callee
	IsPrimitive func(desc string) bool
	Logger      *config.LogGroup
}

// OptionsFromConfig returns the matcher options set in the configuration
func OptionsFromConfig(c *config.Config, logger *config.LogGroup) Options {
	return Options{
		ModelImpureCalls: c.Options.ModelImpureCalls,
		IsPrimitive:      c.IsPrimitiveDescriptor,
		Logger:           logger,
	}
}

// Result is the result of the inter-procedural matching of a class
type Result struct {
	Matches []Match
	// CallerToCallee maps caller definitions to the callee parameter definitions they are matched with
	CallerToCallee map[dataflow.Variable][]dataflow.Variable
	// CalleeToCaller maps callee parameter definitions to the caller definitions matched with them
	CalleeToCaller map[dataflow.Variable][]dataflow.Variable
	// Pairs are the intra-procedural pairs per method, recomputed for the methods where call definitions were added
	Pairs map[string][]*dataflow.DUPair
	// Derived are the pairs from a definition in a caller to a use in a callee, per caller
	Derived map[string][]*dataflow.DUPair
	// Impure tells which methods may have side effects
	Impure map[string]bool
	// Cycles are the elementary cycles of the call graph
	Cycles [][]string
	// Uninstrumentable maps the methods whose calls could not be resolved to the error
	Uninstrumentable map[string]error
}

type walk struct {
	site CallSite
	args []Argument
}

// MatchCalls matches the arguments of all the calls between methods of the super graph with the parameters of
// the callees. pairs are the intra-procedural DU-pairs per method; the pairs of a method that are missing are
// computed. The CFGs of the super graph may receive new definitions at call nodes, and their reaching definitions
// are then recomputed.
//
// Methods with a call whose arguments cannot be found are removed from the super graph and reported as
// uninstrumentable.
func MatchCalls(sg *SuperGraph, pairs map[string][]*dataflow.DUPair, opts Options) *Result {
	logger := opts.Logger
	if logger == nil {
		logger = config.NewLogGroup(config.NewDefault())
		logger.SetAllOutput(io.Discard)
	}
	r := &Result{
		CallerToCallee:   map[dataflow.Variable][]dataflow.Variable{},
		CalleeToCaller:   map[dataflow.Variable][]dataflow.Variable{},
		Pairs:            map[string][]*dataflow.DUPair{},
		Derived:          map[string][]*dataflow.DUPair{},
		Uninstrumentable: map[string]error{},
	}

	walks := map[string][]walk{}
	for _, id := range sg.Methods() {
		for _, c := range sg.CallSites(id) {
			callee, _ := sg.CFG(c.Callee)
			args, err := ArgumentWalk(c.Node, ArgumentCount(callee))
			if err != nil {
				logger.Warnf("%s.%s is uninstrumentable: %v", sg.Class, id, err)
				r.Uninstrumentable[id] = err
				break
			}
			walks[id] = append(walks[id], walk{site: c, args: args})
		}
	}
	for id := range r.Uninstrumentable {
		sg.Remove(id)
		delete(walks, id)
	}
	for id, ws := range walks {
		walks[id] = funcutil.Filter(ws, func(w walk) bool {
			_, ok := sg.CFG(w.site.Callee)
			return ok
		})
	}

	for _, id := range sg.Methods() {
		if ps, ok := pairs[id]; ok {
			r.Pairs[id] = ps
		} else {
			g, _ := sg.CFG(id)
			dataflow.ReachingDefinitions(g)
			r.Pairs[id] = dataflow.DefUsePairs(g)
		}
	}

	r.Impure = Impurity(sg)
	if opts.ModelImpureCalls {
		r.addCallDefinitions(sg, walks, opts, logger)
	}

	derived := map[string]map[string]*dataflow.DUPair{}
	for _, scc := range sg.CalleeFirstOrder() {
		for _, id := range scc {
			for _, w := range walks[id] {
				r.match(id, w, sg, derived)
			}
		}
	}
	for id, ps := range derived {
		list := maps.Values(ps)
		slices.SortFunc(list, (*dataflow.DUPair).Less)
		r.Derived[id] = list
	}
	slices.SortStableFunc(r.Matches, func(a, b Match) bool {
		if a.Caller != b.Caller {
			return a.Caller < b.Caller
		}
		if a.CallSite != b.CallSite {
			return a.CallSite.Less(b.CallSite)
		}
		return a.Position < b.Position
	})

	r.Cycles = sg.Cycles()
	for _, c := range r.Cycles {
		logger.Debugf("call cycle in %s: %v", sg.Class, c)
	}
	return r
}

// addCallDefinitions adds a definition at the call node for every non-primitive variable passed to an impure
// callee, and recomputes the pairs of the methods changed
func (r *Result) addCallDefinitions(sg *SuperGraph, walks map[string][]walk, opts Options, logger *config.LogGroup) {
	isPrimitive := opts.IsPrimitive
	if isPrimitive == nil {
		isPrimitive = config.NewDefault().IsPrimitiveDescriptor
	}
	changed := map[string]bool{}
	for id, ws := range walks {
		g, _ := sg.CFG(id)
		for _, w := range ws {
			if !r.Impure[w.site.Callee] {
				continue
			}
			for _, a := range w.args {
				for _, u := range a.Node.Uses {
					if u.IsField || !u.IsResolved() || isPrimitive(u.Descriptor) {
						continue
					}
					def := u
					def.Insn = w.site.Node.Index.Insn
					def.Line = w.site.Node.Line
					def.IsDefinition = true
					added, err := g.AddDefinition(w.site.Node.Index, def)
					if err != nil {
						logger.Errorf("could not add %s at %s: %v", def, w.site.Node, err)
						continue
					}
					if added {
						logger.Tracef("%s.%s: %s may be modified by %s", sg.Class, id, def, w.site.Callee)
						changed[id] = true
					}
				}
			}
		}
	}
	for id := range changed {
		g, _ := sg.CFG(id)
		dataflow.ReachingDefinitions(g)
		r.Pairs[id] = dataflow.DefUsePairs(g)
	}
}

func (r *Result) match(caller string, w walk, sg *SuperGraph, derived map[string]map[string]*dataflow.DUPair) {
	callee, _ := sg.CFG(w.site.Callee)
	params := callee.Parameters()
	for _, a := range w.args {
		m := Match{
			Caller:    caller,
			Callee:    w.site.Callee,
			CallSite:  w.site.Node.Index,
			Position:  a.Position,
			CalleeDef: params[a.Position],
		}
		if a.IsConstant() {
			m.Constant = true
			r.Matches = append(r.Matches, m)
			continue
		}
		for _, u := range a.Node.Uses {
			m.CallerUse = u
			m.CallerDefs = reachingDefinitions(r.Pairs[caller], u)
			r.Matches = append(r.Matches, m)
			for _, d := range m.CallerDefs {
				r.link(d, m.CalleeDef)
				for _, p := range r.calleePairs(w.site.Callee, m.CalleeDef, derived) {
					addDerived(derived, caller, d, p.Use, append([]dataflow.Variable{u}, p.CallSiteUses...))
				}
			}
		}
	}
}

// calleePairs returns the pairs of the callee whose definition is def, including the pairs derived so far
// through the calls of the callee
func (r *Result) calleePairs(callee string, def dataflow.Variable,
	derived map[string]map[string]*dataflow.DUPair) []*dataflow.DUPair {
	var ps []*dataflow.DUPair
	for _, p := range r.Pairs[callee] {
		if p.Def == def {
			ps = append(ps, p)
		}
	}
	keys := maps.Keys(derived[callee])
	slices.Sort(keys)
	for _, k := range keys {
		if p := derived[callee][k]; p.Def == def {
			ps = append(ps, p)
		}
	}
	return ps
}

func (r *Result) link(callerDef, calleeDef dataflow.Variable) {
	if !slices.Contains(r.CallerToCallee[callerDef], calleeDef) {
		r.CallerToCallee[callerDef] = append(r.CallerToCallee[callerDef], calleeDef)
	}
	if !slices.Contains(r.CalleeToCaller[calleeDef], callerDef) {
		r.CalleeToCaller[calleeDef] = append(r.CalleeToCaller[calleeDef], callerDef)
	}
}

func reachingDefinitions(pairs []*dataflow.DUPair, use dataflow.Variable) []dataflow.Variable {
	var defs []dataflow.Variable
	for _, p := range pairs {
		if p.Use == use {
			defs = append(defs, p.Def)
		}
	}
	return defs
}

func addDerived(derived map[string]map[string]*dataflow.DUPair, caller string, def, use dataflow.Variable,
	callSiteUses []dataflow.Variable) {
	if derived[caller] == nil {
		derived[caller] = map[string]*dataflow.DUPair{}
	}
	key := def.FullString() + " -> " + use.FullString()
	p, ok := derived[caller][key]
	if !ok {
		derived[caller][key] = dataflow.NewDUPair(def, use, callSiteUses...)
		return
	}
	for _, u := range callSiteUses {
		if !slices.Contains(p.CallSiteUses, u) {
			p.CallSiteUses = append(p.CallSiteUses, u)
		}
	}
}

// MatchesOf returns the matches of the calls made by the method id
func (r *Result) MatchesOf(id string) []Match {
	var ms []Match
	for _, m := range r.Matches {
		if m.Caller == id {
			ms = append(ms, m)
		}
	}
	return ms
}

// AllPairs returns the intra-procedural and the derived pairs of the method id
func (r *Result) AllPairs(id string) []*dataflow.DUPair {
	all := append(slices.Clone(r.Pairs[id]), r.Derived[id]...)
	slices.SortFunc(all, (*dataflow.DUPair).Less)
	return all
}

// UpdateCoverage updates the coverage of all the pairs of the result and returns the number of covered pairs
func (r *Result) UpdateCoverage(obs dataflow.Observations) int {
	n := 0
	for _, ps := range r.Pairs {
		n += dataflow.UpdateCoverage(ps, obs)
	}
	for _, ps := range r.Derived {
		n += dataflow.UpdateCoverage(ps, obs)
	}
	return n
}

// ObservedThroughCalls returns true if the callee parameter definition def has been observed, or if one of the
// arguments matched with it at some call site has been observed
func (r *Result) ObservedThroughCalls(obs dataflow.Observations, def dataflow.Variable) bool {
	if dataflow.IsObserved(obs, def) {
		return true
	}
	for _, m := range r.Matches {
		if m.CalleeDef == def && !m.Constant && obs.Observed(m.CallerUse) {
			return true
		}
	}
	return false
}
