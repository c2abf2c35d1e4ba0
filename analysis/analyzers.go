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

// Package analysis runs the def-use coverage analysis of classes: it builds the control-flow graph of every method,
// computes the reaching definitions and the DU-pairs, matches the calls between the methods of each class, and
// updates the coverage of the pairs from the runtime observations.
package analysis

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/awslabs/ar-dfcov/analysis/config"
	"github.com/awslabs/ar-dfcov/analysis/dataflow"
	"github.com/awslabs/ar-dfcov/analysis/interproc"
	"github.com/awslabs/ar-dfcov/analysis/jvm"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

// MethodResult is the result of the analysis of one method
type MethodResult struct {
	ID  string
	CFG *dataflow.CFG
	// Pairs are the intra-procedural DU-pairs of the method
	Pairs []*dataflow.DUPair
	// Derived are the pairs from definitions of the method to uses in the methods it calls
	Derived []*dataflow.DUPair
	// Covered and Uncovered partition the variables of the method according to the observations
	Covered   []dataflow.Variable
	Uncovered []dataflow.Variable
	Stats     dataflow.Stats
	// ReachStats are the statistics of the first reaching definitions run
	ReachStats dataflow.ReachStats
}

// AllPairs returns the intra-procedural and the derived pairs of the method
func (m *MethodResult) AllPairs() []*dataflow.DUPair {
	all := append(slices.Clone(m.Pairs), m.Derived...)
	slices.SortFunc(all, (*dataflow.DUPair).Less)
	return all
}

// ClassResult is the result of the analysis of a class
type ClassResult struct {
	Class  string
	Source string
	// Methods are the results of the methods analyzed, ordered by id
	Methods []*MethodResult
	// SuperGraph and Interproc are nil when the inter-procedural matching is skipped
	SuperGraph *interproc.SuperGraph
	Interproc  *interproc.Result
	// Uninstrumentable lists the methods whose analysis was abandoned
	Uninstrumentable []*UninstrumentableError
	// Err is set when the analysis of the class failed entirely
	Err error
}

// Method returns the result of the method id
func (r *ClassResult) Method(id string) (*MethodResult, bool) {
	for _, m := range r.Methods {
		if m.ID == id {
			return m, true
		}
	}
	return nil, false
}

// UpdateCoverage updates the coverage of the pairs and variables of the class from the observations and returns the
// number of covered pairs. The parameters of a method are also observed when an argument matched with them is.
func (r *ClassResult) UpdateCoverage(obs dataflow.Observations) int {
	if r.Interproc != nil {
		obs = matchedObservations{Observations: obs, result: r.Interproc}
	}
	n := 0
	for _, m := range r.Methods {
		n += dataflow.UpdateCoverage(m.Pairs, obs)
		n += dataflow.UpdateCoverage(m.Derived, obs)
		m.Covered, m.Uncovered = dataflow.MethodCoverage(m.CFG, obs)
	}
	return n
}

// matchedObservations extends the observations of parameters with the observations of the matched arguments
type matchedObservations struct {
	dataflow.Observations
	result *interproc.Result
}

func (m matchedObservations) ObservedParameter(v dataflow.Variable) bool {
	return m.result.ObservedThroughCalls(m.Observations, v)
}

// AnalyzeClass runs the whole analysis of a class. Methods whose CFG cannot be built, or whose calls cannot be
// matched, are reported in the result as uninstrumentable and the other methods are still analyzed.
func AnalyzeClass(c *Context, class jvm.Class) *ClassResult {
	start := time.Now()
	res := &ClassResult{Class: class.Name, Source: class.Source}
	d := dataflow.NewDomain(class.Name)
	methods := map[string]*MethodResult{}
	var cfgs []*dataflow.CFG

	for _, m := range class.Methods {
		g, err := dataflow.BuildCFG(class.Name, m, d)
		if err != nil {
			res.addUninstrumentable(c.Logger, m.ID(), err)
			continue
		}
		stats := dataflow.ReachingDefinitions(g)
		c.Logger.Tracef("%s.%s: reaching definitions in %d iterations", class.Name, m.ID(), stats.Iterations)
		methods[g.MethodID()] = &MethodResult{ID: g.MethodID(), CFG: g, Pairs: dataflow.DefUsePairs(g),
			ReachStats: stats}
		cfgs = append(cfgs, g)
	}

	if !c.Config.SkipInterprocedural {
		sg := interproc.NewSuperGraph(class.Name, cfgs)
		pairs := make(map[string][]*dataflow.DUPair, len(methods))
		for id, m := range methods {
			pairs[id] = m.Pairs
		}
		r := interproc.MatchCalls(sg, pairs, interproc.OptionsFromConfig(c.Config, c.Logger))
		failed := maps.Keys(r.Uninstrumentable)
		slices.Sort(failed)
		for _, id := range failed {
			res.addUninstrumentable(c.Logger, id, r.Uninstrumentable[id])
			delete(methods, id)
		}
		for id, m := range methods {
			m.Pairs = r.Pairs[id]
			m.Derived = r.Derived[id]
		}
		res.SuperGraph, res.Interproc = sg, r
	}

	ids := maps.Keys(methods)
	slices.Sort(ids)
	for _, id := range ids {
		m := methods[id]
		m.Stats = dataflow.ComputeStats(m.CFG)
		res.Methods = append(res.Methods, m)
	}
	covered := res.UpdateCoverage(c.Store)
	c.Logger.Debugf("%-10sClass: %-40s | %d methods | %d pairs covered | %.2f s", "Analyzed", class.Name,
		len(res.Methods), covered, time.Since(start).Seconds())
	return res
}

func (r *ClassResult) addUninstrumentable(logger *config.LogGroup, method string, err error) {
	e := &UninstrumentableError{Class: r.Class, Method: method, Err: err}
	logger.Warnf("%v", e)
	r.Uninstrumentable = append(r.Uninstrumentable, e)
}

// AnalyzeProgram analyzes the classes with at most Config.Workers classes analyzed concurrently. Results are in the
// order of the classes. The failure of a class is recorded in its result and in the context, and does not stop the
// analysis of the other classes; the error returned is only set when ctx is cancelled.
func AnalyzeProgram(ctx context.Context, c *Context, classes []jvm.Class) ([]*ClassResult, error) {
	c.Logger.Infof("Starting analysis of %d classes ...", len(classes))
	start := time.Now()
	workers := c.Config.Workers
	if workers <= 0 {
		workers = config.DefaultWorkers
	}

	results := make([]*ClassResult, len(classes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, class := range classes {
		i, class := i, class
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = analyzeClassSafe(c, class)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	for _, r := range results {
		for _, e := range r.Uninstrumentable {
			c.AddError(e)
		}
	}
	c.Logger.Infof("Analysis done (%.2f s).", time.Since(start).Seconds())
	return results, nil
}

// analyzeClassSafe runs AnalyzeClass and turns a panic into a failed class result
func analyzeClassSafe(c *Context, class jvm.Class) (res *ClassResult) {
	defer func() {
		if x := recover(); x != nil {
			err := fmt.Errorf("analysis of %s failed: %v", class.Name, x)
			c.Logger.Errorf("%v\n%s", err, debug.Stack())
			c.AddError(err)
			res = &ClassResult{Class: class.Name, Source: class.Source, Err: err}
		}
	}()
	return AnalyzeClass(c, class)
}
