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

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/awslabs/ar-dfcov/analysis/config"
	"github.com/awslabs/ar-dfcov/analysis/coverage"
	"github.com/awslabs/ar-dfcov/analysis/jvm"
)

// Context holds the state shared by the stages of one analysis run: the configuration, the logger and the
// observation store. One context is created per run and passed explicitly to every stage.
type Context struct {
	Logger *config.LogGroup

	// The configuration file for the analysis
	Config *config.Config

	// Store holds the runtime observations. It may be updated concurrently while classes are analyzed.
	Store *coverage.Store

	// Stored errors
	errors     map[error]bool
	errorMutex sync.Mutex
}

// NewContext returns a properly initialized context. If l is nil, a logger is built from the config. If s is nil,
// an empty store is created with the number of shards of the config.
func NewContext(c *config.Config, l *config.LogGroup, s *coverage.Store) *Context {
	if l == nil {
		l = config.NewLogGroup(c)
	}
	if s == nil {
		s = coverage.NewStore(c.ObservationShards)
	}
	return &Context{
		Logger: l,
		Config: c,
		Store:  s,
		errors: map[error]bool{},
	}
}

// AddError records a non-fatal error of the run
func (c *Context) AddError(e error) {
	c.errorMutex.Lock()
	defer c.errorMutex.Unlock()
	if e != nil {
		c.errors[e] = true
	}
}

// CheckError pops one of the errors recorded, or returns nil if there is none
func (c *Context) CheckError() error {
	c.errorMutex.Lock()
	defer c.errorMutex.Unlock()
	for e := range c.errors {
		delete(c.errors, e)
		return e
	}
	return nil
}

// Err returns all the errors recorded joined in one, ordered by message, or nil
func (c *Context) Err() error {
	c.errorMutex.Lock()
	defer c.errorMutex.Unlock()
	errs := make([]error, 0, len(c.errors))
	for e := range c.errors {
		errs = append(errs, e)
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })
	return errors.Join(errs...)
}

// LoadClasses loads the class files listed in the configuration
func (c *Context) LoadClasses() ([]jvm.Class, error) {
	var classes []jvm.Class
	for _, f := range c.Config.Classes {
		cs, err := jvm.LoadClasses(c.Config.RelPath(f))
		if err != nil {
			return nil, err
		}
		c.Logger.Debugf("Loaded %d classes from %s", len(cs), f)
		classes = append(classes, cs...)
	}
	return classes, nil
}

// LoadObservations reads the observation logs listed in the configuration into the store, and returns the number
// of observations read
func (c *Context) LoadObservations() (int, error) {
	total := 0
	for _, f := range c.Config.Observations {
		n, err := c.ReadObservationsFile(c.Config.RelPath(f))
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ReadObservationsFile reads the observation log filename into the store
func (c *Context) ReadObservationsFile(filename string) (int, error) {
	f, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	n, err := coverage.ReadObservations(f, c.Store)
	if err != nil {
		return n, fmt.Errorf("%s: %w", filename, err)
	}
	c.Logger.Debugf("Read %d observations from %s", n, filename)
	return n, nil
}
