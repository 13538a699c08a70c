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
	"slices"

	"github.com/arrp-org/arrp/build/ir"
	"golang.org/x/exp/maps"
)

// Rule computes the adjoint contribution a scalar primitive call propagates
// to each of its arguments, given the adjoint accumulated for the call.
type Rule func(args []ir.Expr, adjoint ir.Expr) []ir.Expr

// Rules is a name-keyed registry of primitive derivative rules. New
// primitives are added with Register, without touching the engine.
type Rules struct {
	rules map[string]Rule
}

// NewRules returns a registry seeded with the built-in derivative rules.
func NewRules() *Rules {
	r := &Rules{rules: make(map[string]Rule)}
	// d/dx exp(x) = exp(x)
	r.Register("exp", func(args []ir.Expr, adjoint ir.Expr) []ir.Expr {
		out := make([]ir.Expr, len(args))
		for i, arg := range args {
			out[i] = &ir.Mul{A: adjoint, B: ir.Extern("exp", arg)}
		}
		return out
	})
	return r
}

// Register adds a derivative rule for a primitive name, replacing any
// previous rule under that name.
func (r *Rules) Register(name string, rule Rule) {
	r.rules[name] = rule
}

// Find returns the rule registered for a primitive name.
func (r *Rules) Find(name string) (Rule, bool) {
	rule, ok := r.rules[name]
	return rule, ok
}

// Names returns the registered primitive names, sorted.
func (r *Rules) Names() []string {
	names := maps.Keys(r.rules)
	slices.Sort(names)
	return names
}
