// Copyright 2025 The Arrp Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ir

import "fmt"

// Span is the inclusive minimum and the extent of one reduction dimension.
type Span struct {
	Min    Expr
	Extent Expr
}

// RDom is a reduction domain: a rectangular index range given as an ordered
// list of per-dimension spans. Each dimension owns a reduction variable.
type RDom struct {
	name string
	dims []Span
	vars []*Var
}

var rdomSuffixes = []string{"x", "y", "z", "w"}

// NewRDom returns a reduction domain with one reduction variable per span.
func NewRDom(name string, dims ...Span) *RDom {
	dom := &RDom{name: name, dims: dims}
	dom.vars = make([]*Var, len(dims))
	for i := range dims {
		suffix := fmt.Sprintf("%d", i)
		if i < len(rdomSuffixes) {
			suffix = rdomSuffixes[i]
		}
		dom.vars[i] = &Var{
			Name: fmt.Sprintf("%s$%s", name, suffix),
			Dom:  dom,
			Dim:  i,
		}
	}
	return dom
}

// IntervalRDom returns a reduction domain over constant integer
// (min, extent) pairs, given in dimension order.
func IntervalRDom(name string, bounds ...int) *RDom {
	dims := make([]Span, 0, len(bounds)/2)
	for i := 0; i+1 < len(bounds); i += 2 {
		dims = append(dims, Span{
			Min:    IntConst(bounds[i]),
			Extent: IntConst(bounds[i+1]),
		})
	}
	return NewRDom(name, dims...)
}

// Name of the domain.
func (d *RDom) Name() string { return d.name }

// Size returns the number of dimensions.
func (d *RDom) Size() int { return len(d.dims) }

// Dim returns the span of a dimension.
func (d *RDom) Dim(i int) Span { return d.dims[i] }

// Dims returns all the spans of the domain in dimension order.
func (d *RDom) Dims() []Span { return d.dims }

// Var returns the reduction variable of a dimension.
func (d *RDom) Var(i int) *Var { return d.vars[i] }

// X returns the reduction variable of the first dimension.
func (d *RDom) X() *Var { return d.vars[0] }

// Y returns the reduction variable of the second dimension.
func (d *RDom) Y() *Var { return d.vars[1] }

// String representation of the domain.
func (d *RDom) String() string {
	s := d.name + "["
	for i, dim := range d.dims {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("(%s, %s)", dim.Min, dim.Extent)
	}
	return s + "]"
}
