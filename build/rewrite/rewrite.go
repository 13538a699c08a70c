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

// Package rewrite searches and substitutes variables in IR expressions.
package rewrite

import "github.com/arrp-org/arrp/build/ir"

type varFinder struct {
	name    string
	visited map[ir.Expr]bool
}

func (f *varFinder) find(e ir.Expr) bool {
	if f.visited[e] {
		return false
	}
	f.visited[e] = true
	if v, ok := e.(*ir.Var); ok {
		return v.Name == f.name
	}
	for _, child := range ir.Children(e) {
		if f.find(child) {
			return true
		}
	}
	return false
}

// ContainsVar reports whether a variable occurs anywhere in an expression,
// including inside call arguments. Shared nodes are visited once.
func ContainsVar(e ir.Expr, name string) bool {
	f := varFinder{name: name, visited: make(map[ir.Expr]bool)}
	return f.find(e)
}

type substituter struct {
	name string
	repl ir.Expr
	done map[ir.Expr]ir.Expr
}

func (s *substituter) rewrite(e ir.Expr) ir.Expr {
	if out, ok := s.done[e]; ok {
		return out
	}
	out := s.rewriteNew(e)
	s.done[e] = out
	return out
}

func (s *substituter) rewriteNew(e ir.Expr) ir.Expr {
	switch eT := e.(type) {
	case *ir.Const:
		return e
	case *ir.Var:
		if eT.Name == s.name {
			return s.repl
		}
		return e
	case *ir.Cast:
		value := s.rewrite(eT.Value)
		if value == eT.Value {
			return e
		}
		return &ir.Cast{Value: value, Integer: eT.Integer}
	case *ir.Add:
		a, b := s.rewrite(eT.A), s.rewrite(eT.B)
		if a == eT.A && b == eT.B {
			return e
		}
		return &ir.Add{A: a, B: b}
	case *ir.Sub:
		a, b := s.rewrite(eT.A), s.rewrite(eT.B)
		if a == eT.A && b == eT.B {
			return e
		}
		return &ir.Sub{A: a, B: b}
	case *ir.Mul:
		a, b := s.rewrite(eT.A), s.rewrite(eT.B)
		if a == eT.A && b == eT.B {
			return e
		}
		return &ir.Mul{A: a, B: b}
	case *ir.Div:
		a, b := s.rewrite(eT.A), s.rewrite(eT.B)
		if a == eT.A && b == eT.B {
			return e
		}
		return &ir.Div{A: a, B: b}
	case *ir.Min:
		a, b := s.rewrite(eT.A), s.rewrite(eT.B)
		if a == eT.A && b == eT.B {
			return e
		}
		return &ir.Min{A: a, B: b}
	case *ir.Max:
		a, b := s.rewrite(eT.A), s.rewrite(eT.B)
		if a == eT.A && b == eT.B {
			return e
		}
		return &ir.Max{A: a, B: b}
	case *ir.LE:
		a, b := s.rewrite(eT.A), s.rewrite(eT.B)
		if a == eT.A && b == eT.B {
			return e
		}
		return &ir.LE{A: a, B: b}
	case *ir.GE:
		a, b := s.rewrite(eT.A), s.rewrite(eT.B)
		if a == eT.A && b == eT.B {
			return e
		}
		return &ir.GE{A: a, B: b}
	case *ir.EQ:
		a, b := s.rewrite(eT.A), s.rewrite(eT.B)
		if a == eT.A && b == eT.B {
			return e
		}
		return &ir.EQ{A: a, B: b}
	case *ir.Select:
		cond, then, els := s.rewrite(eT.Cond), s.rewrite(eT.Then), s.rewrite(eT.Else)
		if cond == eT.Cond && then == eT.Then && els == eT.Else {
			return e
		}
		return &ir.Select{Cond: cond, Then: then, Else: els}
	case *ir.Call:
		args := make([]ir.Expr, len(eT.Args))
		changed := false
		for i, arg := range eT.Args {
			args[i] = s.rewrite(arg)
			changed = changed || args[i] != arg
		}
		if !changed {
			return e
		}
		return &ir.Call{Name: eT.Name, Func: eT.Func, Image: eT.Image, Args: args}
	case *ir.Let:
		value := s.rewrite(eT.Value)
		body := eT.Body
		// The binding shadows the substituted name in the body.
		if eT.Name != s.name {
			body = s.rewrite(eT.Body)
		}
		if value == eT.Value && body == eT.Body {
			return e
		}
		return &ir.Let{Name: eT.Name, Value: value, Body: body}
	default:
		return e
	}
}

// Substitute replaces every occurrence of a variable with an expression,
// including inside call arguments. Unchanged sub-graphs keep their identity,
// so sharing is preserved along untouched paths.
func Substitute(e ir.Expr, name string, repl ir.Expr) ir.Expr {
	s := substituter{name: name, repl: repl, done: make(map[ir.Expr]ir.Expr)}
	return s.rewrite(e)
}
