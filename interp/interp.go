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

// Package interp evaluates tensor functions numerically.
//
// Evaluation is pointwise: the value of a function at an index tuple is its
// initialization folded through its update stages, with reduction domains
// iterated sequentially. Calls into other functions recurse, with results
// memoized per (function, stage, point).
//
// A self-read inside an update stage resolves to the value accumulated so
// far at the evaluated point, and to the previous stage at any other point.
// Update stages whose reduction recurrence reads values written earlier in
// the same stage at other points are not supported.
package interp

import (
	"fmt"
	"math"
	"strings"

	xsync "github.com/arrp-org/arrp/base/sync"
	"github.com/arrp-org/arrp/build/ir"
	"github.com/pkg/errors"
)

type memoKey struct {
	fn    *ir.Func
	stage int
	point string
}

// evaluator memoizes function values per (function, stage, point). The memo
// is synchronized: one evaluator can serve several goroutines realizing
// disjoint points of the same function.
type evaluator struct {
	memo xsync.Map[memoKey, float64]
}

// env is a chain of variable bindings, innermost first.
type env struct {
	parent *env
	name   string
	value  float64
}

func (e *env) bind(name string, value float64) *env {
	return &env{parent: e, name: name, value: value}
}

func (e *env) lookup(name string) (float64, bool) {
	for frame := e; frame != nil; frame = frame.parent {
		if frame.name == name {
			return frame.value, true
		}
	}
	return 0, false
}

// frame is the function stage being evaluated, used to resolve self-reads.
type frame struct {
	fn    *ir.Func
	point []int
	// acc is the value accumulated at point so far by the running update
	// stage. prev is the stage self-reads at other points resolve to.
	acc  float64
	prev int
	// init is true while the initialization value is evaluated; the
	// function cannot read itself then.
	init bool
}

func encodePoint(point []int) string {
	parts := make([]string, len(point))
	for i, p := range point {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ",")
}

func samePoint(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i, p := range a {
		if p != b[i] {
			return false
		}
	}
	return true
}

func bindArgs(args []*ir.Var, point []int) (*env, error) {
	if len(args) != len(point) {
		return nil, errors.Errorf("expected %d index values but got %d", len(args), len(point))
	}
	var en *env
	for i, arg := range args {
		en = en.bind(arg.Name, float64(point[i]))
	}
	return en, nil
}

// Eval returns the value of a function at an index tuple, after all its
// update stages have been applied.
func Eval(f *ir.Func, point ...int) (float64, error) {
	ev := &evaluator{}
	return ev.funcValue(f, f.LastStage(), point)
}

func (ev *evaluator) funcValue(f *ir.Func, stage int, point []int) (float64, error) {
	key := memoKey{fn: f, stage: stage, point: encodePoint(point)}
	if v, ok := ev.memo.Load(key); ok {
		return v, nil
	}
	// Concurrent evaluations of the same point may race here and compute
	// the value twice. Evaluation is pure, so both results are equal and
	// the first stored one wins.
	v, err := ev.funcValueNew(f, stage, point)
	if err != nil {
		return 0, errors.Wrapf(err, "cannot evaluate %s at (%s)", f.Key(stage), key.point)
	}
	v, _ = ev.memo.LoadOrStore(key, v)
	return v, nil
}

func (ev *evaluator) funcValueNew(f *ir.Func, stage int, point []int) (float64, error) {
	en, err := bindArgs(f.Args(), point)
	if err != nil {
		return 0, err
	}
	if stage == ir.InitStage {
		return ev.expr(f.Init(), en, &frame{fn: f, point: point, init: true})
	}
	acc, err := ev.funcValue(f, stage-1, point)
	if err != nil {
		return 0, err
	}
	value := f.Updates()[stage]
	fr := &frame{fn: f, point: point, acc: acc, prev: stage - 1}
	doms := collectRDoms(value)
	if len(doms) == 0 {
		return ev.expr(value, en, fr)
	}
	return fr.acc, ev.reduce(value, en, fr, doms)
}

// reduce iterates the reduction domains of an update stage sequentially,
// folding every iteration into the frame accumulator.
func (ev *evaluator) reduce(value ir.Expr, en *env, fr *frame, doms []*ir.RDom) error {
	if len(doms) == 0 {
		v, err := ev.expr(value, en, fr)
		if err != nil {
			return err
		}
		fr.acc = v
		return nil
	}
	dom := doms[0]
	return ev.iterDom(dom, 0, en, func(iterEnv *env) error {
		return ev.reduce(value, iterEnv, fr, doms[1:])
	})
}

func (ev *evaluator) iterDom(dom *ir.RDom, dim int, en *env, body func(*env) error) error {
	if dim == dom.Size() {
		return body(en)
	}
	span := dom.Dim(dim)
	min, err := ev.index(span.Min, en, nil)
	if err != nil {
		return errors.Wrapf(err, "cannot evaluate the minimum of %s", dom.Name())
	}
	extent, err := ev.index(span.Extent, en, nil)
	if err != nil {
		return errors.Wrapf(err, "cannot evaluate the extent of %s", dom.Name())
	}
	for i := min; i < min+extent; i++ {
		if err := ev.iterDom(dom, dim+1, en.bind(dom.Var(dim).Name, float64(i)), body); err != nil {
			return err
		}
	}
	return nil
}

func (ev *evaluator) index(e ir.Expr, en *env, fr *frame) (int, error) {
	v, err := ev.expr(e, en, fr)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, errors.Errorf("index expression %s evaluates to the non-integer value %v", e, v)
	}
	return int(v), nil
}

func collectRDoms(e ir.Expr) []*ir.RDom {
	var doms []*ir.RDom
	seen := make(map[*ir.RDom]bool)
	visited := make(map[ir.Expr]bool)
	var walk func(ir.Expr)
	walk = func(e ir.Expr) {
		if visited[e] {
			return
		}
		visited[e] = true
		if v, ok := e.(*ir.Var); ok && v.Dom != nil && !seen[v.Dom] {
			seen[v.Dom] = true
			doms = append(doms, v.Dom)
		}
		for _, child := range ir.Children(e) {
			walk(child)
		}
	}
	walk(e)
	return doms
}
