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

package rewrite_test

import (
	"testing"

	"github.com/arrp-org/arrp/build/ir"
	"github.com/arrp-org/arrp/build/rewrite"
)

func TestContainsVar(t *testing.T) {
	x := ir.NewVar("x")
	y := ir.NewVar("y")
	f := ir.NewFunc("f", []*ir.Var{x}, ir.FloatConst(0))
	tests := []struct {
		expr ir.Expr
		name string
		want bool
	}{
		{expr: x, name: "x", want: true},
		{expr: x, name: "y", want: false},
		{expr: &ir.Add{A: x, B: ir.IntConst(1)}, name: "x", want: true},
		{expr: f.Call(&ir.Add{A: y, B: ir.IntConst(1)}), name: "y", want: true},
		{expr: f.Call(y), name: "x", want: false},
		{expr: &ir.Let{Name: "x", Value: y, Body: x}, name: "x", want: true},
	}
	for i, test := range tests {
		got := rewrite.ContainsVar(test.expr, test.name)
		if got != test.want {
			t.Errorf("test %d: ContainsVar(%s, %q) = %v but want %v", i, test.expr, test.name, got, test.want)
		}
	}
}

func TestSubstitute(t *testing.T) {
	x := ir.NewVar("x")
	y := ir.NewVar("y")
	f := ir.NewFunc("f", []*ir.Var{x}, ir.FloatConst(0))
	shift := &ir.Sub{A: x, B: ir.IntConst(1)}
	tests := []struct {
		expr ir.Expr
		name string
		repl ir.Expr
		want ir.Expr
	}{
		{
			expr: &ir.Add{A: x, B: ir.IntConst(1)},
			name: "x",
			repl: y,
			want: &ir.Add{A: y, B: ir.IntConst(1)},
		},
		{
			expr: f.Call(x),
			name: "x",
			repl: shift,
			want: f.Call(shift),
		},
		{
			// The let binding shadows x in the body but not in its value.
			expr: &ir.Let{Name: "x", Value: x, Body: x},
			name: "x",
			repl: y,
			want: &ir.Let{Name: "x", Value: y, Body: x},
		},
		{
			expr: &ir.Mul{A: x, B: x},
			name: "y",
			repl: ir.IntConst(0),
			want: &ir.Mul{A: x, B: x},
		},
	}
	for i, test := range tests {
		got := rewrite.Substitute(test.expr, test.name, test.repl)
		if !ir.Equal(got, test.want) {
			t.Errorf("test %d: Substitute(%s, %q, %s) = %s but want %s", i, test.expr, test.name, test.repl, got, test.want)
		}
	}
}

func TestSubstituteKeepsUntouchedIdentity(t *testing.T) {
	x := ir.NewVar("x")
	y := ir.NewVar("y")
	left := &ir.Add{A: y, B: ir.IntConst(1)}
	expr := &ir.Mul{A: left, B: x}
	got := rewrite.Substitute(expr, "x", ir.IntConst(2))
	gotMul, ok := got.(*ir.Mul)
	if !ok {
		t.Fatalf("substitution returned %T but want *ir.Mul", got)
	}
	if gotMul.A != left {
		t.Errorf("untouched operand lost its identity after substitution")
	}
}
