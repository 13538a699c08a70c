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

package solve_test

import (
	"testing"

	"github.com/arrp-org/arrp/build/ir"
	"github.com/arrp-org/arrp/build/solve"
)

func TestExpression(t *testing.T) {
	x := ir.NewVar("x")
	tmp := ir.NewVar("tmp")
	tests := []struct {
		rhs    ir.Expr
		want   ir.Expr
		solved bool
	}{
		{
			// tmp == x
			rhs:    x,
			want:   tmp,
			solved: true,
		},
		{
			// tmp == x + 1
			rhs:    &ir.Add{A: x, B: ir.IntConst(1)},
			want:   &ir.Sub{A: tmp, B: ir.IntConst(1)},
			solved: true,
		},
		{
			// tmp == 2 - x
			rhs:    &ir.Sub{A: ir.IntConst(2), B: x},
			want:   &ir.Sub{A: ir.IntConst(2), B: tmp},
			solved: true,
		},
		{
			// tmp == 2*x + 1
			rhs:    &ir.Add{A: &ir.Mul{A: ir.IntConst(2), B: x}, B: ir.IntConst(1)},
			want:   &ir.Div{A: &ir.Sub{A: tmp, B: ir.IntConst(1)}, B: ir.IntConst(2)},
			solved: true,
		},
		{
			// tmp == x / 3
			rhs:    &ir.Div{A: x, B: ir.IntConst(3)},
			want:   &ir.Mul{A: tmp, B: ir.IntConst(3)},
			solved: true,
		},
		{
			// tmp == x * x has no closed-form inverse here.
			rhs:    &ir.Mul{A: x, B: x},
			solved: false,
		},
		{
			// tmp == min(x, 1) is not invertible.
			rhs:    &ir.Min{A: x, B: ir.IntConst(1)},
			solved: false,
		},
	}
	for i, test := range tests {
		got, err := solve.Expression(&ir.EQ{A: tmp, B: test.rhs}, "x")
		if err != nil {
			t.Errorf("test %d: unexpected error: %v", i, err)
			continue
		}
		if got.FullySolved != test.solved {
			t.Errorf("test %d: solving tmp == %s: FullySolved = %v but want %v", i, test.rhs, got.FullySolved, test.solved)
			continue
		}
		if !test.solved {
			continue
		}
		if gotVar, ok := got.Result.A.(*ir.Var); !ok || gotVar.Name != "x" {
			t.Errorf("test %d: solved equation %s does not isolate x", i, got.Result)
			continue
		}
		if !ir.Equal(got.Result.B, test.want) {
			t.Errorf("test %d: solving tmp == %s: got %s but want %s", i, test.rhs, got.Result.B, test.want)
		}
	}
}

func TestExpressionUnknownAbsent(t *testing.T) {
	tmp := ir.NewVar("tmp")
	if _, err := solve.Expression(&ir.EQ{A: tmp, B: ir.IntConst(1)}, "x"); err == nil {
		t.Errorf("solving an equation without the unknown succeeded but want an error")
	}
}
