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

import "fmt"

// InitStage is the stage index of a function initialization.
// Update stages are numbered from 0.
const InitStage = -1

// Func is a named tensor function: a mapping from integer index tuples to
// scalar values. It is defined by an initialization value over its declared
// index variables, followed by ordered update stages. Update values may read
// the function's own current values and reduction-domain variables.
//
// Expression values are immutable; a function only grows by appending
// update stages.
type Func struct {
	name    string
	args    []*Var
	init    Expr
	updates []Expr
}

// NewFunc returns a function with the given declared index variables and
// initialization value.
func NewFunc(name string, args []*Var, init Expr) *Func {
	return &Func{name: name, args: args, init: init}
}

// Name of the function.
func (f *Func) Name() string { return f.name }

// Args returns the declared index variables, in canonical order.
func (f *Func) Args() []*Var { return f.args }

// Init returns the initialization value.
func (f *Func) Init() Expr { return f.init }

// Updates returns the values of the update stages, in definition order.
func (f *Func) Updates() []Expr { return f.updates }

// NumUpdates returns the number of update stages.
func (f *Func) NumUpdates() int { return len(f.updates) }

// StageValue returns the value of a stage. Stage InitStage is the
// initialization; stages 0 to NumUpdates()-1 are updates.
func (f *Func) StageValue(stage int) Expr {
	if stage == InitStage {
		return f.init
	}
	return f.updates[stage]
}

// Update appends an update stage with the given value.
func (f *Func) Update(value Expr) {
	f.updates = append(f.updates, value)
}

// Call returns an expression reading the function at the given index tuple.
func (f *Func) Call(args ...Expr) *Call {
	return &Call{Func: f, Args: args}
}

// ArgExprs returns the declared index variables as an argument list.
func (f *Func) ArgExprs() []Expr {
	exprs := make([]Expr, len(f.args))
	for i, arg := range f.args {
		exprs[i] = arg
	}
	return exprs
}

// FuncKey identifies one definition stage of a function.
type FuncKey struct {
	Name  string
	Stage int
}

// Key returns the key of one of the function stages.
func (f *Func) Key(stage int) FuncKey {
	return FuncKey{Name: f.name, Stage: stage}
}

// LastStage returns the index of the last definition stage of the function:
// InitStage if the function has no update.
func (f *Func) LastStage() int {
	return f.NumUpdates() - 1
}

// String representation of the key.
func (k FuncKey) String() string {
	return fmt.Sprintf("%s[%d]", k.Name, k.Stage)
}
