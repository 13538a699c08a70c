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

// Package grad computes reverse-mode derivatives of scalar loss
// expressions over function pipelines.
//
// Given a scalar loss, Propagate returns one gradient function per
// function the loss transitively reads, holding the derivative of the
// loss with respect to every point of that function's domain.
package grad

import "github.com/arrp-org/arrp/build/ir"

// UnknownPrimitivePolicy decides what happens when the gradient pass
// meets an extern call it has no derivative rule for.
type UnknownPrimitivePolicy int

const (
	// ZeroGradient treats an unknown primitive as locally constant.
	ZeroGradient UnknownPrimitivePolicy = iota
	// ErrorOnUnknown aborts the pass with ErrUnknownPrimitive.
	ErrorOnUnknown
)

// Option configures a gradient computation.
type Option func(*accumulator)

// WithRule adds a derivative rule for an extern primitive, replacing any
// rule registered under the same name.
func WithRule(name string, rule Rule) Option {
	return func(acc *accumulator) {
		acc.rules.Register(name, rule)
	}
}

// WithUnknownPrimitive sets the policy for extern calls without a
// derivative rule. The default is ZeroGradient.
func WithUnknownPrimitive(policy UnknownPrimitivePolicy) Option {
	return func(acc *accumulator) {
		acc.policy = policy
	}
}

// Propagate differentiates a scalar loss with respect to every function
// it transitively reads. The result maps each source function name to
// its gradient function, which has the same domain variables as the
// source.
func Propagate(loss ir.Expr, opts ...Option) (map[string]*ir.Func, error) {
	acc := newAccumulator()
	for _, opt := range opts {
		opt(acc)
	}
	funcs := sortFunctions(loss)
	if err := acc.propagate(loss, funcs); err != nil {
		return nil, err
	}
	return acc.result(), nil
}
