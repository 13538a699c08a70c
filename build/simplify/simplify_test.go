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

package simplify_test

import (
	"testing"

	"github.com/arrp-org/arrp/build/ir"
	"github.com/arrp-org/arrp/build/simplify"
)

func TestSimplify(t *testing.T) {
	x := ir.NewVar("x")
	y := ir.NewVar("y")
	tests := []struct {
		expr ir.Expr
		want ir.Expr
	}{
		{
			expr: &ir.Add{A: ir.IntConst(1), B: ir.IntConst(2)},
			want: ir.IntConst(3),
		},
		{
			expr: &ir.Add{A: x, B: ir.IntConst(0)},
			want: x,
		},
		{
			expr: &ir.Add{A: x, B: x},
			want: &ir.Mul{A: ir.IntConst(2), B: x},
		},
		{
			// (x + 1) + 2
			expr: &ir.Add{A: &ir.Add{A: x, B: ir.IntConst(1)}, B: ir.IntConst(2)},
			want: &ir.Add{A: x, B: ir.IntConst(3)},
		},
		{
			// (x + 2) - 2
			expr: &ir.Sub{A: &ir.Add{A: x, B: ir.IntConst(2)}, B: ir.IntConst(2)},
			want: x,
		},
		{
			expr: &ir.Sub{A: y, B: y},
			want: ir.IntConst(0),
		},
		{
			// max(3, 1) - min(0, 2) + 1
			expr: &ir.Add{
				A: &ir.Sub{
					A: &ir.Max{A: ir.IntConst(3), B: ir.IntConst(1)},
					B: &ir.Min{A: ir.IntConst(0), B: ir.IntConst(2)},
				},
				B: ir.IntConst(1),
			},
			want: ir.IntConst(4),
		},
		{
			expr: &ir.Mul{A: ir.FloatConst(1), B: y},
			want: y,
		},
		{
			expr: &ir.Mul{A: x, B: ir.IntConst(0)},
			want: ir.IntConst(0),
		},
		{
			expr: &ir.Div{A: x, B: ir.IntConst(1)},
			want: x,
		},
		{
			expr: &ir.Min{A: y, B: y},
			want: y,
		},
		{
			expr: &ir.Select{Cond: &ir.LE{A: ir.IntConst(0), B: ir.IntConst(1)}, Then: x, Else: y},
			want: x,
		},
		{
			expr: &ir.Select{Cond: &ir.GE{A: ir.IntConst(0), B: ir.IntConst(1)}, Then: x, Else: y},
			want: y,
		},
		{
			expr: &ir.Cast{Value: ir.FloatConst(2.7), Integer: true},
			want: ir.IntConst(2),
		},
		{
			// Unrecognized forms come back with operands simplified.
			expr: &ir.Div{A: x, B: &ir.Add{A: y, B: ir.IntConst(0)}},
			want: &ir.Div{A: x, B: y},
		},
	}
	for i, test := range tests {
		got := simplify.Simplify(test.expr)
		if !ir.Equal(got, test.want) {
			t.Errorf("test %d: Simplify(%s) = %s but want %s", i, test.expr, got, test.want)
		}
	}
}
