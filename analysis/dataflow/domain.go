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
	"golang.org/x/exp/slices"
	"golang.org/x/tools/container/intsets"
)

// Domain is the variable-equality cache of a class analysis. It interns variables to dense integer ids, so that
// sets of variables are sparse integer sets. A domain must not be shared between concurrent analyses.
type Domain struct {
	// Class is the class analyzed in the domain
	Class string
	ids   map[Variable]int
	vars  []Variable
}

// NewDomain returns an empty domain for class
func NewDomain(class string) *Domain {
	return &Domain{Class: class, ids: map[Variable]int{}}
}

// ID returns the id of v, interning it if it was not already in the domain
func (d *Domain) ID(v Variable) int {
	if id, ok := d.ids[v]; ok {
		return id
	}
	id := len(d.vars)
	d.ids[v] = id
	d.vars = append(d.vars, v)
	return id
}

// Lookup returns the id of v if it is in the domain
func (d *Domain) Lookup(v Variable) (int, bool) {
	id, ok := d.ids[v]
	return id, ok
}

// Variable returns the variable of id. It panics if id is not in the domain.
func (d *Domain) Variable(id int) Variable {
	return d.vars[id]
}

// Len returns the number of variables interned
func (d *Domain) Len() int {
	return len(d.vars)
}

// Variables returns the variables of the set s, ordered
func (d *Domain) Variables(s *intsets.Sparse) []Variable {
	var ids []int
	ids = s.AppendTo(ids)
	vars := make([]Variable, len(ids))
	for i, id := range ids {
		vars[i] = d.vars[id]
	}
	slices.SortFunc(vars, Variable.Less)
	return vars
}

// Contains returns true if v is in the set s
func (d *Domain) Contains(s *intsets.Sparse, v Variable) bool {
	id, ok := d.ids[v]
	return ok && s.Has(id)
}
