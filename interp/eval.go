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

package interp

import (
	"math"

	"github.com/arrp-org/arrp/build/ir"
	"github.com/pkg/errors"
)

// externs are the scalar primitives the evaluator knows about.
var externs = map[string]func(float64) float64{
	"exp":  math.Exp,
	"log":  math.Log,
	"sqrt": math.Sqrt,
	"sin":  math.Sin,
	"cos":  math.Cos,
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (ev *evaluator) expr(e ir.Expr, en *env, fr *frame) (float64, error) {
	switch eT := e.(type) {
	case *ir.Const:
		return eT.Value, nil
	case *ir.Var:
		v, ok := en.lookup(eT.Name)
		if !ok {
			return 0, errors.Errorf("variable %s is not bound", eT.Name)
		}
		return v, nil
	case *ir.Cast:
		v, err := ev.expr(eT.Value, en, fr)
		if err != nil {
			return 0, err
		}
		if eT.Integer {
			return math.Trunc(v), nil
		}
		return v, nil
	case *ir.Add:
		return ev.binary(eT.A, eT.B, en, fr, func(a, b float64) (float64, error) { return a + b, nil })
	case *ir.Sub:
		return ev.binary(eT.A, eT.B, en, fr, func(a, b float64) (float64, error) { return a - b, nil })
	case *ir.Mul:
		return ev.binary(eT.A, eT.B, en, fr, func(a, b float64) (float64, error) { return a * b, nil })
	case *ir.Div:
		return ev.binary(eT.A, eT.B, en, fr, func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, errors.Errorf("division by zero")
			}
			return a / b, nil
		})
	case *ir.Min:
		return ev.binary(eT.A, eT.B, en, fr, func(a, b float64) (float64, error) { return math.Min(a, b), nil })
	case *ir.Max:
		return ev.binary(eT.A, eT.B, en, fr, func(a, b float64) (float64, error) { return math.Max(a, b), nil })
	case *ir.LE:
		return ev.binary(eT.A, eT.B, en, fr, func(a, b float64) (float64, error) { return boolValue(a <= b), nil })
	case *ir.GE:
		return ev.binary(eT.A, eT.B, en, fr, func(a, b float64) (float64, error) { return boolValue(a >= b), nil })
	case *ir.EQ:
		return ev.binary(eT.A, eT.B, en, fr, func(a, b float64) (float64, error) { return boolValue(a == b), nil })
	case *ir.Select:
		cond, err := ev.expr(eT.Cond, en, fr)
		if err != nil {
			return 0, err
		}
		// Only the taken branch is evaluated, so the other branch may
		// read out of bounds without failing.
		if cond != 0 {
			return ev.expr(eT.Then, en, fr)
		}
		return ev.expr(eT.Else, en, fr)
	case *ir.Let:
		value, err := ev.expr(eT.Value, en, fr)
		if err != nil {
			return 0, err
		}
		return ev.expr(eT.Body, en.bind(eT.Name, value), fr)
	case *ir.Call:
		return ev.call(eT, en, fr)
	default:
		return 0, errors.Errorf("cannot evaluate expression %s: kind %s not supported", e, e.Kind())
	}
}

func (ev *evaluator) binary(a, b ir.Expr, en *env, fr *frame, op func(a, b float64) (float64, error)) (float64, error) {
	av, err := ev.expr(a, en, fr)
	if err != nil {
		return 0, err
	}
	bv, err := ev.expr(b, en, fr)
	if err != nil {
		return 0, err
	}
	return op(av, bv)
}

func (ev *evaluator) call(c *ir.Call, en *env, fr *frame) (float64, error) {
	if c.IsExtern() {
		return ev.extern(c, en, fr)
	}
	point := make([]int, len(c.Args))
	for i, arg := range c.Args {
		p, err := ev.index(arg, en, fr)
		if err != nil {
			return 0, errors.Wrapf(err, "cannot evaluate argument %d of %s", i, c.Callee())
		}
		point[i] = p
	}
	if c.IsImage() {
		return c.Image.At(point...)
	}
	if fr != nil && c.Func == fr.fn {
		if fr.init {
			return 0, errors.Errorf("%s reads itself in its initialization", fr.fn.Name())
		}
		if samePoint(point, fr.point) {
			return fr.acc, nil
		}
		return ev.funcValue(fr.fn, fr.prev, point)
	}
	return ev.funcValue(c.Func, c.Func.LastStage(), point)
}

func (ev *evaluator) extern(c *ir.Call, en *env, fr *frame) (float64, error) {
	fn, ok := externs[c.Name]
	if !ok {
		return 0, errors.Errorf("unknown primitive %s", c.Name)
	}
	if len(c.Args) != 1 {
		return 0, errors.Errorf("primitive %s expects 1 argument but got %d", c.Name, len(c.Args))
	}
	v, err := ev.expr(c.Args[0], en, fr)
	if err != nil {
		return 0, err
	}
	return fn(v), nil
}
