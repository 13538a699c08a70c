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

// IntConst returns an integer literal.
func IntConst(value int) *Const {
	return &Const{Value: float64(value), Integer: true}
}

// FloatConst returns a floating point literal.
func FloatConst(value float64) *Const {
	return &Const{Value: value}
}

// NewVar returns a free index variable.
func NewVar(name string) *Var {
	return &Var{Name: name}
}

// NewVars returns one free index variable per name.
func NewVars(names ...string) []*Var {
	vars := make([]*Var, len(names))
	for i, name := range names {
		vars[i] = NewVar(name)
	}
	return vars
}

// Neg returns the negation of an expression.
func Neg(x Expr) Expr {
	return &Mul{A: IntConst(-1), B: x}
}

// Clamp returns x limited to the inclusive range [lo, hi].
func Clamp(x, lo, hi Expr) Expr {
	return &Max{A: &Min{A: x, B: hi}, B: lo}
}

// Extern returns a call applying a named scalar primitive to its arguments.
func Extern(name string, args ...Expr) *Call {
	return &Call{Name: name, Args: args}
}

// Children returns the direct operands of a node. Call children are its
// arguments; Const and Var have none.
func Children(e Expr) []Expr {
	switch eT := e.(type) {
	case *Cast:
		return []Expr{eT.Value}
	case *Add:
		return []Expr{eT.A, eT.B}
	case *Sub:
		return []Expr{eT.A, eT.B}
	case *Mul:
		return []Expr{eT.A, eT.B}
	case *Div:
		return []Expr{eT.A, eT.B}
	case *Min:
		return []Expr{eT.A, eT.B}
	case *Max:
		return []Expr{eT.A, eT.B}
	case *LE:
		return []Expr{eT.A, eT.B}
	case *GE:
		return []Expr{eT.A, eT.B}
	case *EQ:
		return []Expr{eT.A, eT.B}
	case *Select:
		return []Expr{eT.Cond, eT.Then, eT.Else}
	case *Call:
		return eT.Args
	case *Let:
		return []Expr{eT.Value, eT.Body}
	default:
		return nil
	}
}
