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

package analysis

// Summary holds the totals of an analysis run
type Summary struct {
	Classes          int `yaml:"classes" json:"classes" msgpack:"classes"`
	FailedClasses    int `yaml:"failed-classes" json:"failed-classes" msgpack:"failed-classes"`
	Methods          int `yaml:"methods" json:"methods" msgpack:"methods"`
	Uninstrumentable int `yaml:"uninstrumentable" json:"uninstrumentable" msgpack:"uninstrumentable"`
	Nodes            int `yaml:"nodes" json:"nodes" msgpack:"nodes"`
	Edges            int `yaml:"edges" json:"edges" msgpack:"edges"`
	Pairs            int `yaml:"pairs" json:"pairs" msgpack:"pairs"`
	CoveredPairs     int `yaml:"covered-pairs" json:"covered-pairs" msgpack:"covered-pairs"`
	DerivedPairs     int `yaml:"derived-pairs" json:"derived-pairs" msgpack:"derived-pairs"`
	Matches          int `yaml:"matches" json:"matches" msgpack:"matches"`
	Cycles           int `yaml:"cycles" json:"cycles" msgpack:"cycles"`
}

// Statistics returns the totals of the results. Pairs include the derived pairs.
func Statistics(results []*ClassResult) Summary {
	var s Summary
	for _, r := range results {
		s.Classes++
		if r.Err != nil {
			s.FailedClasses++
		}
		s.Uninstrumentable += len(r.Uninstrumentable)
		for _, m := range r.Methods {
			s.Methods++
			s.Nodes += m.Stats.Nodes
			s.Edges += m.Stats.Edges
			s.DerivedPairs += len(m.Derived)
			for _, p := range m.AllPairs() {
				s.Pairs++
				if p.Covered() {
					s.CoveredPairs++
				}
			}
		}
		if r.Interproc != nil {
			s.Matches += len(r.Interproc.Matches)
			s.Cycles += len(r.Interproc.Cycles)
		}
	}
	return s
}

// PairCoverage returns the ratio of covered pairs, or 0 when there is no pair
func (s Summary) PairCoverage() float64 {
	if s.Pairs == 0 {
		return 0
	}
	return float64(s.CoveredPairs) / float64(s.Pairs)
}
