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

// Package simplify normalizes IR expressions.
//
// Simplification never changes the value of an expression and is safe to
// call on arbitrary expressions: forms it does not recognize are returned
// with only their operands simplified.
package simplify

import (
	"math"

	"github.com/arrp-org/arrp/build/ir"
)

// Simplify returns a simplified expression computing the same value.
func Simplify(e ir.Expr) ir.Expr {
	s := simplifier{done: make(map[ir.Expr]ir.Expr)}
	return s.simplify(e)
}

type simplifier struct {
	done map[ir.Expr]ir.Expr
}

func constVal(e ir.Expr) (*ir.Const, bool) {
	c, ok := e.(*ir.Const)
	return c, ok
}

func isValue(e ir.Expr, value float64) bool {
	c, ok := constVal(e)
	return ok && c.Value == value
}

func fold(value float64, integer bool) *ir.Const {
	return &ir.Const{Value: value, Integer: integer}
}

func boolConst(b bool) *ir.Const {
	if b {
		return ir.IntConst(1)
	}
	return ir.IntConst(0)
}

func (s *simplifier) simplify(e ir.Expr) ir.Expr {
	if out, ok := s.done[e]; ok {
		return out
	}
	out := s.simplifyNew(e)
	s.done[e] = out
	return out
}

func (s *simplifier) simplifyNew(e ir.Expr) ir.Expr {
	switch eT := e.(type) {
	case *ir.Add:
		return s.add(s.simplify(eT.A), s.simplify(eT.B))
	case *ir.Sub:
		return s.sub(s.simplify(eT.A), s.simplify(eT.B))
	case *ir.Mul:
		return s.mul(s.simplify(eT.A), s.simplify(eT.B))
	case *ir.Div:
		return s.div(s.simplify(eT.A), s.simplify(eT.B))
	case *ir.Min:
		a, b := s.simplify(eT.A), s.simplify(eT.B)
		if ca, ok := constVal(a); ok {
			if cb, ok := constVal(b); ok {
				return fold(math.Min(ca.Value, cb.Value), ca.Integer && cb.Integer)
			}
		}
		if ir.Equal(a, b) {
			return a
		}
		return &ir.Min{A: a, B: b}
	case *ir.Max:
		a, b := s.simplify(eT.A), s.simplify(eT.B)
		if ca, ok := constVal(a); ok {
			if cb, ok := constVal(b); ok {
				return fold(math.Max(ca.Value, cb.Value), ca.Integer && cb.Integer)
			}
		}
		if ir.Equal(a, b) {
			return a
		}
		return &ir.Max{A: a, B: b}
	case *ir.LE:
		a, b := s.simplify(eT.A), s.simplify(eT.B)
		if ca, ok := constVal(a); ok {
			if cb, ok := constVal(b); ok {
				return boolConst(ca.Value <= cb.Value)
			}
		}
		return &ir.LE{A: a, B: b}
	case *ir.GE:
		a, b := s.simplify(eT.A), s.simplify(eT.B)
		if ca, ok := constVal(a); ok {
			if cb, ok := constVal(b); ok {
				return boolConst(ca.Value >= cb.Value)
			}
		}
		return &ir.GE{A: a, B: b}
	case *ir.EQ:
		a, b := s.simplify(eT.A), s.simplify(eT.B)
		if ca, ok := constVal(a); ok {
			if cb, ok := constVal(b); ok {
				return boolConst(ca.Value == cb.Value)
			}
		}
		return &ir.EQ{A: a, B: b}
	case *ir.Cast:
		value := s.simplify(eT.Value)
		if c, ok := constVal(value); ok {
			if eT.Integer {
				return ir.IntConst(int(c.Value))
			}
			return ir.FloatConst(c.Value)
		}
		return &ir.Cast{Value: value, Integer: eT.Integer}
	case *ir.Select:
		cond := s.simplify(eT.Cond)
		then, els := s.simplify(eT.Then), s.simplify(eT.Else)
		if c, ok := constVal(cond); ok {
			if c.Value != 0 {
				return then
			}
			return els
		}
		return &ir.Select{Cond: cond, Then: then, Else: els}
	case *ir.Call:
		args := make([]ir.Expr, len(eT.Args))
		for i, arg := range eT.Args {
			args[i] = s.simplify(arg)
		}
		return &ir.Call{Name: eT.Name, Func: eT.Func, Image: eT.Image, Args: args}
	case *ir.Let:
		return &ir.Let{Name: eT.Name, Value: s.simplify(eT.Value), Body: s.simplify(eT.Body)}
	default:
		return e
	}
}

func (s *simplifier) add(a, b ir.Expr) ir.Expr {
	if ca, ok := constVal(a); ok {
		if cb, ok := constVal(b); ok {
			return fold(ca.Value+cb.Value, ca.Integer && cb.Integer)
		}
	}
	if isValue(a, 0) {
		return b
	}
	if isValue(b, 0) {
		return a
	}
	// (x + c1) + c2 becomes x + (c1+c2).
	if cb, ok := constVal(b); ok {
		if aAdd, ok := a.(*ir.Add); ok {
			if ca, ok := constVal(aAdd.B); ok {
				return s.add(aAdd.A, fold(ca.Value+cb.Value, ca.Integer && cb.Integer))
			}
		}
	}
	if ir.Equal(a, b) {
		return &ir.Mul{A: ir.IntConst(2), B: a}
	}
	return &ir.Add{A: a, B: b}
}

func (s *simplifier) sub(a, b ir.Expr) ir.Expr {
	if ca, ok := constVal(a); ok {
		if cb, ok := constVal(b); ok {
			return fold(ca.Value-cb.Value, ca.Integer && cb.Integer)
		}
	}
	if isValue(b, 0) {
		return a
	}
	if ir.Equal(a, b) {
		return ir.IntConst(0)
	}
	// (x + c1) - c2 becomes x + (c1-c2).
	if cb, ok := constVal(b); ok {
		if aAdd, ok := a.(*ir.Add); ok {
			if ca, ok := constVal(aAdd.B); ok {
				return s.add(aAdd.A, fold(ca.Value-cb.Value, ca.Integer && cb.Integer))
			}
		}
	}
	return &ir.Sub{A: a, B: b}
}

func (s *simplifier) mul(a, b ir.Expr) ir.Expr {
	if ca, ok := constVal(a); ok {
		if cb, ok := constVal(b); ok {
			return fold(ca.Value*cb.Value, ca.Integer && cb.Integer)
		}
	}
	if isValue(a, 0) {
		return a
	}
	if isValue(b, 0) {
		return b
	}
	if isValue(a, 1) {
		return b
	}
	if isValue(b, 1) {
		return a
	}
	return &ir.Mul{A: a, B: b}
}

func (s *simplifier) div(a, b ir.Expr) ir.Expr {
	if ca, ok := constVal(a); ok {
		if cb, ok := constVal(b); ok && cb.Value != 0 {
			value := ca.Value / cb.Value
			integer := ca.Integer && cb.Integer && value == math.Trunc(value)
			return fold(value, integer)
		}
	}
	if isValue(b, 1) {
		return a
	}
	if isValue(a, 0) {
		return a
	}
	return &ir.Div{A: a, B: b}
}
