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
	"github.com/arrp-org/arrp/build/ir"
	"github.com/arrp-org/arrp/build/simplify"
	"github.com/pkg/errors"
)

// span is a conservative inclusive [min, max] interval, both symbolic.
type span struct {
	min, max ir.Expr
}

// minMaxBounds returns the interval an index expression can take, given the
// caller's declared index variables and their current call-site domain.
//
// Only the forms index arithmetic is made of are supported: additions,
// subtractions, min, max, variables, and constants. Any other kind aborts
// bounds inference; there is no approximation.
func minMaxBounds(e ir.Expr, args []*ir.Var, dom []span) (span, error) {
	switch eT := e.(type) {
	case *ir.Add:
		a, err := minMaxBounds(eT.A, args, dom)
		if err != nil {
			return span{}, err
		}
		b, err := minMaxBounds(eT.B, args, dom)
		if err != nil {
			return span{}, err
		}
		return span{
			min: &ir.Add{A: a.min, B: b.min},
			max: &ir.Add{A: a.max, B: b.max},
		}, nil
	case *ir.Sub:
		a, err := minMaxBounds(eT.A, args, dom)
		if err != nil {
			return span{}, err
		}
		b, err := minMaxBounds(eT.B, args, dom)
		if err != nil {
			return span{}, err
		}
		return span{
			min: &ir.Sub{A: a.min, B: b.max},
			max: &ir.Sub{A: a.max, B: b.min},
		}, nil
	case *ir.Min:
		a, err := minMaxBounds(eT.A, args, dom)
		if err != nil {
			return span{}, err
		}
		b, err := minMaxBounds(eT.B, args, dom)
		if err != nil {
			return span{}, err
		}
		return span{
			min: &ir.Min{A: a.min, B: b.min},
			max: &ir.Min{A: a.max, B: b.max},
		}, nil
	case *ir.Max:
		a, err := minMaxBounds(eT.A, args, dom)
		if err != nil {
			return span{}, err
		}
		b, err := minMaxBounds(eT.B, args, dom)
		if err != nil {
			return span{}, err
		}
		return span{
			min: &ir.Max{A: a.min, B: b.min},
			max: &ir.Max{A: a.max, B: b.max},
		}, nil
	case *ir.Var:
		if eT.Dom != nil {
			bound := eT.Dom.Dim(eT.Dim)
			return span{
				min: bound.Min,
				max: lastOf(bound),
			}, nil
		}
		for i, arg := range args {
			if arg.Name == eT.Name {
				if i >= len(dom) {
					break
				}
				return dom[i], nil
			}
		}
		return span{}, errors.Wrapf(ErrUnsupportedBounds, "variable %s is not bound by the caller domain", eT.Name)
	case *ir.Const:
		return span{min: e, max: e}, nil
	default:
		return span{}, errors.Wrapf(ErrUnsupportedBounds, "cannot infer the bounds of %s (kind %s)", e, e.Kind())
	}
}

// lastOf returns the inclusive maximum of a span.
func lastOf(s ir.Span) ir.Expr {
	return &ir.Sub{A: &ir.Add{A: s.Min, B: s.Extent}, B: ir.IntConst(1)}
}

// mergeSpan widens two intervals for the same dimension into their union.
func mergeSpan(a, b span) span {
	return span{
		min: simplify.Simplify(&ir.Min{A: a.min, B: b.min}),
		max: simplify.Simplify(&ir.Max{A: a.max, B: b.max}),
	}
}
