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

// Package ir defines the intermediate representation of arrp programs:
// scalar expressions over integer index variables, and named tensor
// functions built from those expressions.
//
// Expression nodes are immutable and shared by reference. A sub-expression
// used twice is the same node, not a copy, and passes over the IR key their
// bookkeeping on node identity rather than structural equality.
package ir

// Kind tags the type of an expression node.
type Kind int

const (
	// ConstKind is a numeric literal.
	ConstKind Kind = iota
	// VarKind is a named index variable, possibly bound to a reduction domain.
	VarKind
	// CastKind converts a value between the integer and floating domains.
	CastKind
	// AddKind is a binary addition.
	AddKind
	// SubKind is a binary subtraction.
	SubKind
	// MulKind is a binary multiplication.
	MulKind
	// DivKind is a binary division.
	DivKind
	// MinKind is the smaller of two values.
	MinKind
	// MaxKind is the larger of two values.
	MaxKind
	// LEKind is a less-or-equal comparison.
	LEKind
	// GEKind is a greater-or-equal comparison.
	GEKind
	// EQKind is an equality, also used as the equation form consumed by the solver.
	EQKind
	// SelectKind picks one of two values given a condition.
	SelectKind
	// CallKind reads a tensor function, an image, or applies a named primitive.
	CallKind
	// LetKind binds a name to a value within a body.
	LetKind
)

var kindNames = map[Kind]string{
	ConstKind:  "const",
	VarKind:    "var",
	CastKind:   "cast",
	AddKind:    "add",
	SubKind:    "sub",
	MulKind:    "mul",
	DivKind:    "div",
	MinKind:    "min",
	MaxKind:    "max",
	LEKind:     "le",
	GEKind:     "ge",
	EQKind:     "eq",
	SelectKind: "select",
	CallKind:   "call",
	LetKind:    "let",
}

// String representation of the kind.
func (k Kind) String() string {
	name, ok := kindNames[k]
	if !ok {
		return "invalid"
	}
	return name
}

// Expr is an expression node.
type Expr interface {
	// Kind of the node.
	Kind() Kind

	// String representation of the expression.
	String() string

	// expr prevents implementations of the interface outside this package.
	expr()
}

type (
	// Const is a numeric literal. Integer distinguishes index arithmetic
	// from floating point values.
	Const struct {
		Value   float64
		Integer bool
	}

	// Var is a named index variable. Dom is non-nil when the variable is a
	// reduction variable, in which case Dim is its position in the domain.
	Var struct {
		Name string
		Dom  *RDom
		Dim  int
	}

	// Cast converts its operand to the integer domain (truncating) or to the
	// floating domain.
	Cast struct {
		Value   Expr
		Integer bool
	}

	// Add is A+B.
	Add struct{ A, B Expr }

	// Sub is A-B.
	Sub struct{ A, B Expr }

	// Mul is A*B.
	Mul struct{ A, B Expr }

	// Div is A/B.
	Div struct{ A, B Expr }

	// Min is the smaller of A and B.
	Min struct{ A, B Expr }

	// Max is the larger of A and B.
	Max struct{ A, B Expr }

	// LE is the condition A <= B.
	LE struct{ A, B Expr }

	// GE is the condition A >= B.
	GE struct{ A, B Expr }

	// EQ is the condition A == B.
	EQ struct{ A, B Expr }

	// Select is Then when Cond holds, Else otherwise. Only the taken branch
	// is evaluated.
	Select struct {
		Cond, Then, Else Expr
	}

	// Call reads the value of a callee at the index tuple given by Args.
	// Exactly one of Func and Image is set for tensor and image reads;
	// when both are nil, Name identifies an extern scalar primitive.
	Call struct {
		Name  string
		Func  *Func
		Image *Image
		Args  []Expr
	}

	// Let binds Name to Value within Body.
	Let struct {
		Name  string
		Value Expr
		Body  Expr
	}
)

// Kind of the node.
func (*Const) Kind() Kind { return ConstKind }

// Kind of the node.
func (*Var) Kind() Kind { return VarKind }

// Kind of the node.
func (*Cast) Kind() Kind { return CastKind }

// Kind of the node.
func (*Add) Kind() Kind { return AddKind }

// Kind of the node.
func (*Sub) Kind() Kind { return SubKind }

// Kind of the node.
func (*Mul) Kind() Kind { return MulKind }

// Kind of the node.
func (*Div) Kind() Kind { return DivKind }

// Kind of the node.
func (*Min) Kind() Kind { return MinKind }

// Kind of the node.
func (*Max) Kind() Kind { return MaxKind }

// Kind of the node.
func (*LE) Kind() Kind { return LEKind }

// Kind of the node.
func (*GE) Kind() Kind { return GEKind }

// Kind of the node.
func (*EQ) Kind() Kind { return EQKind }

// Kind of the node.
func (*Select) Kind() Kind { return SelectKind }

// Kind of the node.
func (*Call) Kind() Kind { return CallKind }

// Kind of the node.
func (*Let) Kind() Kind { return LetKind }

func (*Const) expr()  {}
func (*Var) expr()    {}
func (*Cast) expr()   {}
func (*Add) expr()    {}
func (*Sub) expr()    {}
func (*Mul) expr()    {}
func (*Div) expr()    {}
func (*Min) expr()    {}
func (*Max) expr()    {}
func (*LE) expr()     {}
func (*GE) expr()     {}
func (*EQ) expr()     {}
func (*Select) expr() {}
func (*Call) expr()   {}
func (*Let) expr()    {}

// IsFunc returns true if the call reads a tensor function.
func (c *Call) IsFunc() bool { return c.Func != nil }

// IsImage returns true if the call reads a concrete image.
func (c *Call) IsImage() bool { return c.Image != nil }

// IsExtern returns true if the call applies a named scalar primitive.
func (c *Call) IsExtern() bool { return c.Func == nil && c.Image == nil }

// Callee returns the name of what the call reads or applies.
func (c *Call) Callee() string {
	switch {
	case c.IsFunc():
		return c.Func.Name()
	case c.IsImage():
		return c.Image.Name()
	default:
		return c.Name
	}
}
