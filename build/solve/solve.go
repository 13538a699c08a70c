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

// Package solve isolates a variable in symbolic equations.
package solve

import (
	"github.com/arrp-org/arrp/build/ir"
	"github.com/arrp-org/arrp/build/rewrite"
	"github.com/pkg/errors"
)

// Result of solving an equation.
type Result struct {
	// FullySolved is true when the unknown has been isolated on the
	// left-hand side of Result.
	FullySolved bool
	// Result is the rewritten equation. When FullySolved is false, it holds
	// the equation in the state it was left in.
	Result *ir.EQ
}

// Expression solves an equation for an unknown variable.
//
// The unknown is isolated as long as it occurs exactly once on one side of
// the equation, combined through additions, subtractions, multiplications,
// and divisions. Anything else (the unknown on both operands of a node, or
// under an unsupported operator) leaves the equation partially solved, with
// FullySolved set to false.
func Expression(eq *ir.EQ, unknown string) (Result, error) {
	lhs, rhs := eq.A, eq.B
	if !rewrite.ContainsVar(rhs, unknown) {
		if !rewrite.ContainsVar(lhs, unknown) {
			return Result{}, errors.Errorf("cannot solve %s: unknown %s does not occur in the equation", eq, unknown)
		}
		lhs, rhs = rhs, lhs
	}
	for {
		partial := Result{Result: &ir.EQ{A: rhs, B: lhs}}
		switch rhsT := rhs.(type) {
		case *ir.Var:
			if rhsT.Name != unknown {
				return partial, nil
			}
			return Result{FullySolved: true, Result: &ir.EQ{A: rhsT, B: lhs}}, nil
		case *ir.Add:
			inA, inB := rewrite.ContainsVar(rhsT.A, unknown), rewrite.ContainsVar(rhsT.B, unknown)
			switch {
			case inA && inB:
				return partial, nil
			case inA:
				lhs, rhs = &ir.Sub{A: lhs, B: rhsT.B}, rhsT.A
			default:
				lhs, rhs = &ir.Sub{A: lhs, B: rhsT.A}, rhsT.B
			}
		case *ir.Sub:
			inA, inB := rewrite.ContainsVar(rhsT.A, unknown), rewrite.ContainsVar(rhsT.B, unknown)
			switch {
			case inA && inB:
				return partial, nil
			case inA:
				lhs, rhs = &ir.Add{A: lhs, B: rhsT.B}, rhsT.A
			default:
				// lhs == a - unknown, so unknown == a - lhs.
				lhs, rhs = &ir.Sub{A: rhsT.A, B: lhs}, rhsT.B
			}
		case *ir.Mul:
			inA, inB := rewrite.ContainsVar(rhsT.A, unknown), rewrite.ContainsVar(rhsT.B, unknown)
			switch {
			case inA && inB:
				return partial, nil
			case inA:
				lhs, rhs = &ir.Div{A: lhs, B: rhsT.B}, rhsT.A
			default:
				lhs, rhs = &ir.Div{A: lhs, B: rhsT.A}, rhsT.B
			}
		case *ir.Div:
			inA, inB := rewrite.ContainsVar(rhsT.A, unknown), rewrite.ContainsVar(rhsT.B, unknown)
			switch {
			case inA && inB:
				return partial, nil
			case inA:
				lhs, rhs = &ir.Mul{A: lhs, B: rhsT.B}, rhsT.A
			default:
				// lhs == a / unknown, so unknown == a / lhs.
				lhs, rhs = &ir.Div{A: rhsT.A, B: lhs}, rhsT.B
			}
		default:
			return partial, nil
		}
	}
}
