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
	"github.com/arrp-org/arrp/base/uname"
	"github.com/arrp-org/arrp/build/boundary"
	"github.com/arrp-org/arrp/build/ir"
	"github.com/arrp-org/arrp/build/rewrite"
	"github.com/arrp-org/arrp/build/solve"
	"github.com/pkg/errors"
)

// accumContext is the function stage whose value is being propagated
// through, used to resolve self-recurrent calls and to broadcast index
// variables the call arguments do not depend on.
type accumContext struct {
	key  ir.FuncKey
	args []*ir.Var
}

// accumulator propagates adjoints backward through expressions and
// functions. All its state lives for one call of the driver.
type accumulator struct {
	// adjoints accumulates one derivative expression per node, keyed by
	// node identity: structurally equal but distinct nodes carry
	// independent adjoints.
	adjoints map[ir.Expr]ir.Expr
	funcs    *ordered.Map[ir.FuncKey, *ir.Func]
	lets     map[string]ir.Expr
	bounds   *Bounds
	rules    *Rules
	policy   UnknownPrimitivePolicy
	names    *uname.Unique
	cur      accumContext
}

func newAccumulator() *accumulator {
	return &accumulator{
		adjoints: make(map[ir.Expr]ir.Expr),
		funcs:    ordered.NewMap[ir.FuncKey, *ir.Func](),
		lets:     make(map[string]ir.Expr),
		rules:    NewRules(),
		names:    uname.New(),
		cur:      accumContext{key: ir.FuncKey{Stage: ir.InitStage}},
	}
}

// accumulate adds a contribution to the adjoint of a node, keyed by node
// identity.
func (acc *accumulator) accumulate(e ir.Expr, adjoint ir.Expr) {
	prev, ok := acc.adjoints[e]
	if !ok {
		acc.adjoints[e] = adjoint
		return
	}
	acc.adjoints[e] = &ir.Add{A: prev, B: adjoint}
}

func (acc *accumulator) propagate(loss ir.Expr, funcs []*ir.Func) error {
	bounds, err := InferBounds(loss)
	if err != nil {
		return err
	}
	acc.bounds = bounds

	// One zero-initialized adjoint function per stage, indexed by the
	// declared variables of the source function.
	for _, f := range funcs {
		acc.names.Register(f.Name())
	}
	for _, f := range funcs {
		for stage := ir.InitStage; stage <= f.LastStage(); stage++ {
			name := acc.names.Name(fmt.Sprintf("d_%s_%d", f.Name(), stage+1))
			acc.funcs.Store(f.Key(stage), ir.NewFunc(name, f.Args(), ir.FloatConst(0)))
		}
	}

	// Seed the loss with an adjoint of one and propagate through the loss
	// expression itself.
	acc.accumulate(loss, ir.FloatConst(1))
	if err := acc.propagateList(sortExprs(loss)); err != nil {
		return err
	}

	// Then through every function, from the last update stage of each back
	// to its initialization. The function list is consumers-first, so every
	// adjoint function has received all its contributions by the time its
	// own stages are walked.
	for _, f := range funcs {
		for stage := f.LastStage(); stage >= ir.InitStage; stage-- {
			if err := acc.propagateStage(f, stage); err != nil {
				return err
			}
		}
	}
	return nil
}

func (acc *accumulator) propagateStage(f *ir.Func, stage int) error {
	key := f.Key(stage)
	dom, ok := acc.bounds.Dom(key)
	if !ok {
		// Nothing reads this stage: a later update overwrites it without
		// reading it back. No gradient flows through its value.
		return nil
	}
	acc.cur = accumContext{key: key, args: f.Args()}

	// Reads of the adjoint just outside the stage bounds must resolve to
	// zero, not to an undefined value.
	adjointFunc, ok := acc.funcs.Load(key)
	if !ok {
		return errors.Errorf("no adjoint function was created for %s", key)
	}
	wrapped, err := boundary.Zero(adjointFunc, dom)
	if err != nil {
		return errors.Wrapf(err, "cannot bound the adjoint of %s", key)
	}
	acc.funcs.Store(key, wrapped)

	list := sortExprs(f.StageValue(stage))
	// The stage value starts from the adjoint already scattered into this
	// stage by its consumers.
	acc.adjoints[list[len(list)-1]] = wrapped.Call(f.ArgExprs()...)
	return acc.propagateList(list)
}

func (acc *accumulator) propagateList(list []ir.Expr) error {
	for i := len(list) - 1; i >= 0; i-- {
		if err := acc.visit(list[i]); err != nil {
			return err
		}
	}
	return nil
}

func (acc *accumulator) adjointOf(e ir.Expr) (ir.Expr, error) {
	adjoint, ok := acc.adjoints[e]
	if !ok {
		return nil, errors.Wrapf(ErrMissingAdjoint, "%s visited before its consumers", e)
	}
	return adjoint, nil
}

func (acc *accumulator) visit(e ir.Expr) error {
	switch eT := e.(type) {
	case *ir.Const, *ir.LE, *ir.GE, *ir.EQ:
		return nil
	case *ir.Var:
		adjoint, err := acc.adjointOf(e)
		if err != nil {
			return err
		}
		// A variable bound by a let re-expresses its adjoint in terms of
		// the bound value, scoped under the same binding.
		value, ok := acc.lets[eT.Name]
		if !ok {
			return nil
		}
		acc.accumulate(value, &ir.Let{Name: eT.Name, Value: value, Body: adjoint})
		return nil
	case *ir.Cast:
		adjoint, err := acc.adjointOf(e)
		if err != nil {
			return err
		}
		acc.accumulate(eT.Value, adjoint)
		return nil
	case *ir.Add:
		adjoint, err := acc.adjointOf(e)
		if err != nil {
			return err
		}
		acc.accumulate(eT.A, adjoint)
		acc.accumulate(eT.B, adjoint)
		return nil
	case *ir.Sub:
		adjoint, err := acc.adjointOf(e)
		if err != nil {
			return err
		}
		acc.accumulate(eT.A, adjoint)
		acc.accumulate(eT.B, ir.Neg(adjoint))
		return nil
	case *ir.Mul:
		adjoint, err := acc.adjointOf(e)
		if err != nil {
			return err
		}
		acc.accumulate(eT.A, &ir.Mul{A: adjoint, B: eT.B})
		acc.accumulate(eT.B, &ir.Mul{A: adjoint, B: eT.A})
		return nil
	case *ir.Div:
		adjoint, err := acc.adjointOf(e)
		if err != nil {
			return err
		}
		acc.accumulate(eT.A, &ir.Div{A: adjoint, B: eT.B})
		acc.accumulate(eT.B, &ir.Div{
			A: &ir.Mul{A: ir.Neg(adjoint), B: eT.A},
			B: &ir.Mul{A: eT.B, B: eT.B},
		})
		return nil
	case *ir.Min:
		adjoint, err := acc.adjointOf(e)
		if err != nil {
			return err
		}
		acc.accumulate(eT.A, gated(&ir.LE{A: eT.A, B: eT.B}, adjoint))
		acc.accumulate(eT.B, gated(&ir.LE{A: eT.B, B: eT.A}, adjoint))
		return nil
	case *ir.Max:
		adjoint, err := acc.adjointOf(e)
		if err != nil {
			return err
		}
		acc.accumulate(eT.A, gated(&ir.GE{A: eT.A, B: eT.B}, adjoint))
		acc.accumulate(eT.B, gated(&ir.GE{A: eT.B, B: eT.A}, adjoint))
		return nil
	case *ir.Select:
		adjoint, err := acc.adjointOf(e)
		if err != nil {
			return err
		}
		acc.accumulate(eT.Then, gated(eT.Cond, adjoint))
		acc.accumulate(eT.Else, &ir.Select{Cond: eT.Cond, Then: ir.FloatConst(0), Else: adjoint})
		return nil
	case *ir.Let:
		adjoint, err := acc.adjointOf(e)
		if err != nil {
			return err
		}
		acc.accumulate(eT.Body, adjoint)
		acc.lets[eT.Name] = eT.Value
		return nil
	case *ir.Call:
		adjoint, err := acc.adjointOf(e)
		if err != nil {
			return err
		}
		return acc.visitCall(eT, adjoint)
	default:
		return nil
	}
}

// gated returns the adjoint where a condition holds and zero elsewhere.
func gated(cond ir.Expr, adjoint ir.Expr) ir.Expr {
	return &ir.Select{Cond: cond, Then: adjoint, Else: ir.FloatConst(0)}
}

func (acc *accumulator) visitCall(call *ir.Call, adjoint ir.Expr) error {
	switch {
	case call.IsExtern():
		return acc.visitExtern(call, adjoint)
	case call.IsFunc():
		return acc.scatter(call, adjoint)
	default:
		// Images are leaf inputs: no gradient flows into them.
		return nil
	}
}

func (acc *accumulator) visitExtern(call *ir.Call, adjoint ir.Expr) error {
	rule, ok := acc.rules.Find(call.Name)
	if !ok {
		if acc.policy == ErrorOnUnknown {
			return errors.Wrapf(ErrUnknownPrimitive, "%s (known primitives: %v)", call.Name, acc.rules.Names())
		}
		// Zero-gradient policy: the primitive is treated as a constant,
		// but its arguments still need an adjoint entry for the invariant
		// checks downstream.
		for _, arg := range call.Args {
			acc.accumulate(arg, ir.FloatConst(0))
		}
		return nil
	}
	contribs := rule(call.Args, adjoint)
	if len(contribs) != len(call.Args) {
		return errors.Errorf("the derivative rule for %s returned %d contributions for %d arguments", call.Name, len(contribs), len(call.Args))
	}
	for i, contrib := range contribs {
		acc.accumulate(call.Args[i], contrib)
	}
	return nil
}

// scatter canonicalizes the index arguments of a call back to the callee's
// declared variables and accumulates the adjoint into the callee's adjoint
// function as a new update stage.
func (acc *accumulator) scatter(call *ir.Call, adjoint ir.Expr) error {
	f := call.Func
	// A self-recurrent call scatters into the previous stage; any other
	// call into the last stage of the callee.
	key := f.Key(f.LastStage())
	if f.Name() == acc.cur.key.Name {
		key = f.Key(acc.cur.key.Stage - 1)
	}
	target, ok := acc.funcs.Load(key)
	if !ok {
		return errors.Errorf("no adjoint function was created for %s", key)
	}
	adjoint, err := acc.canonicalize(call, adjoint)
	if err != nil {
		return errors.Wrapf(err, "call to %s from %s", f.Name(), acc.cur.key)
	}
	target.Update(&ir.Add{
		A: target.Call(f.ArgExprs()...),
		B: adjoint,
	})
	return nil
}

func (acc *accumulator) canonicalize(call *ir.Call, adjoint ir.Expr) (ir.Expr, error) {
	for i, arg := range call.Args {
		v := call.Func.Args()[i]
		if !rewrite.ContainsVar(arg, v.Name) {
			// The argument does not depend on the callee variable. If the
			// adjoint does, the dependency must be resolved against the
			// caller's domain: broadcast the caller's variable in the same
			// position.
			if rewrite.ContainsVar(adjoint, v.Name) {
				if i >= len(acc.cur.args) {
					return nil, errors.Errorf("adjoint %s depends on %s but the context %s has no variable in position %d", adjoint, v.Name, acc.cur.key, i)
				}
				adjoint = rewrite.Substitute(adjoint, v.Name, acc.cur.args[i])
			}
			// A reduction variable argument is renamed to the callee
			// variable it stands for.
			if rv, ok := arg.(*ir.Var); ok && rv.Dom != nil {
				adjoint = rewrite.Substitute(adjoint, rv.Name, v)
			}
			continue
		}
		// General index expression: invert it so the adjoint can be
		// expressed at the callee's canonical index.
		tmp := ir.NewVar(acc.names.Name("tmp"))
		result, err := solve.Expression(&ir.EQ{A: tmp, B: arg}, v.Name)
		if err != nil {
			return nil, err
		}
		if !result.FullySolved {
			return nil, errors.Wrapf(ErrUninvertible, "argument %d (%s)", i, arg)
		}
		inv := rewrite.Substitute(result.Result.B, tmp.Name, v)
		adjoint = rewrite.Substitute(adjoint, v.Name, inv)
	}
	return adjoint, nil
}

// result returns the fully accumulated initialization-stage adjoints,
// keyed by source function name.
func (acc *accumulator) result() map[string]*ir.Func {
	out := make(map[string]*ir.Func)
	acc.funcs.Iter()(func(key ir.FuncKey, f *ir.Func) bool {
		if key.Stage == ir.InitStage {
			out[key.Name] = f
		}
		return true
	})
	return out
}
