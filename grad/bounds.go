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

package grad

import (
	"fmt"

	"github.com/arrp-org/arrp/base/ordered"
	"github.com/arrp-org/arrp/build/ir"
	"github.com/arrp-org/arrp/build/simplify"
	"github.com/pkg/errors"
)

// Bounds holds, for every (function, stage) reachable from a loss
// expression, the union of the index domains the stage is called over.
type Bounds struct {
	doms *ordered.Map[ir.FuncKey, *ir.RDom]
}

// Dom returns the inferred call-site domain of a function stage.
func (b *Bounds) Dom(key ir.FuncKey) (*ir.RDom, bool) {
	return b.doms.Load(key)
}

// Iter returns an iterator over all inferred domains, in the order the
// stages were first reached.
func (b *Bounds) Iter() func(func(ir.FuncKey, *ir.RDom) bool) {
	return b.doms.Iter()
}

// Size returns the number of function stages with an inferred domain.
func (b *Bounds) Size() int {
	return b.doms.Size()
}

// boundsContext is the call context of the bounds walk: the function stage
// being descended into, its declared variables, and its own inferred domain.
// It is threaded explicitly through the recursion so the inferencer stays
// reentrant.
type boundsContext struct {
	key  ir.FuncKey
	args []*ir.Var
	dom  []span
}

type inferencer struct {
	bounds *ordered.Map[ir.FuncKey, []span]
	cur    boundsContext
}

// InferBounds walks the function DAG reachable from a loss expression and
// returns the accumulated call-site domain of every function stage. The
// walk is pure: inferring the same expression twice yields equal bounds.
//
// An index argument the interval evaluator cannot bound aborts the whole
// inference with ErrUnsupportedBounds.
func InferBounds(loss ir.Expr) (*Bounds, error) {
	inf := &inferencer{
		bounds: ordered.NewMap[ir.FuncKey, []span](),
		cur:    boundsContext{key: ir.FuncKey{Stage: ir.InitStage}},
	}
	if err := inf.visitExpr(loss); err != nil {
		return nil, err
	}
	return inf.finalize()
}

func (inf *inferencer) visitExpr(e ir.Expr) error {
	if call, ok := e.(*ir.Call); ok && call.IsFunc() {
		return inf.visitCall(call)
	}
	for _, child := range ir.Children(e) {
		if err := inf.visitExpr(child); err != nil {
			return err
		}
	}
	return nil
}

func (inf *inferencer) visitCall(call *ir.Call) error {
	f := call.Func
	spans := make([]span, len(call.Args))
	for i, arg := range call.Args {
		s, err := minMaxBounds(arg, inf.cur.args, inf.cur.dom)
		if err != nil {
			return errors.Wrapf(err, "argument %d of the call to %s from %s", i, f.Name(), inf.cur.key)
		}
		spans[i] = s
	}

	// A self-recurrent call targets the previous stage of the function
	// being processed; any other call targets the last stage of the callee.
	key := f.Key(f.LastStage())
	self := f.Name() == inf.cur.key.Name
	if self {
		key = f.Key(inf.cur.key.Stage - 1)
	}
	if prev, ok := inf.bounds.Load(key); ok {
		if len(prev) != len(spans) {
			return errors.Errorf("%s is called with %d arguments but was previously called with %d", f.Name(), len(spans), len(prev))
		}
		for i := range spans {
			spans[i] = mergeSpan(prev[i], spans[i])
		}
	}
	inf.bounds.Store(key, spans)

	if self {
		return nil
	}
	return inf.visitFunc(f)
}

func (inf *inferencer) visitFunc(f *ir.Func) error {
	prev := inf.cur
	defer func() { inf.cur = prev }()

	// Traverse from the last update back to the initialization, each stage
	// descended under its own accumulated domain.
	for stage := f.LastStage(); stage >= ir.InitStage; stage-- {
		key := f.Key(stage)
		dom, _ := inf.bounds.Load(key)
		inf.cur = boundsContext{key: key, args: f.Args(), dom: dom}
		if err := inf.visitExpr(f.StageValue(stage)); err != nil {
			return err
		}
	}
	return nil
}

func (inf *inferencer) finalize() (*Bounds, error) {
	doms := ordered.NewMap[ir.FuncKey, *ir.RDom]()
	inf.bounds.Iter()(func(key ir.FuncKey, spans []span) bool {
		dims := make([]ir.Span, len(spans))
		for i, s := range spans {
			min := simplify.Simplify(s.min)
			extent := simplify.Simplify(&ir.Add{
				A: &ir.Sub{A: s.max, B: min},
				B: ir.IntConst(1),
			})
			dims[i] = ir.Span{Min: min, Extent: extent}
		}
		name := fmt.Sprintf("%s_%d_dom", key.Name, key.Stage+1)
		doms.Store(key, ir.NewRDom(name, dims...))
		return true
	})
	return &Bounds{doms: doms}, nil
}
