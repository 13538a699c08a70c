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

// Package boundary wraps tensor functions with boundary conditions.
package boundary

import (
	"github.com/arrp-org/arrp/build/ir"
	"github.com/pkg/errors"
)

// Constant returns a function delegating to f inside the domain and
// returning a constant value outside of it. Out-of-domain checks are
// per-dimension selects, so the wrapped function never reads f outside
// the domain.
func Constant(f *ir.Func, value float64, dom *ir.RDom) (*ir.Func, error) {
	if dom.Size() != len(f.Args()) {
		return nil, errors.Errorf("cannot wrap %s: function has %d dimensions but the domain has %d", f.Name(), len(f.Args()), dom.Size())
	}
	args := make([]*ir.Var, len(f.Args()))
	argExprs := make([]ir.Expr, len(args))
	for i, arg := range f.Args() {
		args[i] = ir.NewVar(arg.Name)
		argExprs[i] = args[i]
	}
	outside := ir.FloatConst(value)
	body := ir.Expr(f.Call(argExprs...))
	for i := dom.Size() - 1; i >= 0; i-- {
		dim := dom.Dim(i)
		last := &ir.Sub{A: &ir.Add{A: dim.Min, B: dim.Extent}, B: ir.IntConst(1)}
		high := &ir.Select{
			Cond: &ir.LE{A: argExprs[i], B: last},
			Then: body,
			Else: outside,
		}
		body = &ir.Select{
			Cond: &ir.GE{A: argExprs[i], B: dim.Min},
			Then: high,
			Else: outside,
		}
	}
	return ir.NewFunc(f.Name()+"_ce", args, body), nil
}

// Zero wraps a function to return zero outside the domain.
func Zero(f *ir.Func, dom *ir.RDom) (*ir.Func, error) {
	return Constant(f, 0, dom)
}
