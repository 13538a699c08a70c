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

import "github.com/arrp-org/arrp/build/ir"

// functionSorter gathers the tensor functions reachable from an expression
// in first-discovery order. Read in reverse, the list gives an order in
// which every function appears before the functions it reads.
type functionSorter struct {
	visited map[ir.Expr]bool
	seen    map[string]bool
	funcs   []*ir.Func
}

// sortFunctions returns the functions reachable from root, consumers first.
func sortFunctions(root ir.Expr) []*ir.Func {
	s := &functionSorter{
		visited: make(map[ir.Expr]bool),
		seen:    make(map[string]bool),
	}
	s.visitExpr(root)
	return s.funcs
}

func (s *functionSorter) visitExpr(e ir.Expr) {
	if s.visited[e] {
		return
	}
	s.visited[e] = true
	if call, ok := e.(*ir.Call); ok && call.IsFunc() {
		if !s.seen[call.Func.Name()] {
			s.visitFunc(call.Func)
		}
		return
	}
	for _, child := range ir.Children(e) {
		s.visitExpr(child)
	}
}

func (s *functionSorter) visitFunc(f *ir.Func) {
	s.seen[f.Name()] = true
	s.funcs = append(s.funcs, f)
	// Traverse from the last update back to the initialization.
	for stage := f.LastStage(); stage >= ir.InitStage; stage-- {
		s.visitExpr(f.StageValue(stage))
	}
}

// exprSorter produces the operand-before-consumer ordering of the non-call,
// non-predicate sub-DAG of one expression. Arguments of tensor and image
// calls belong to other bounds domains and are not expanded. Conditions of
// selects and the operands of comparisons carry no gradient and are not
// expanded either. Shared nodes appear once; the root comes last.
type exprSorter struct {
	visited map[ir.Expr]bool
	list    []ir.Expr
}

// sortExprs returns the adjoint-propagation list of an expression: read in
// reverse, consumers come before the expressions they consume.
func sortExprs(root ir.Expr) []ir.Expr {
	s := &exprSorter{visited: make(map[ir.Expr]bool)}
	s.visited[root] = true
	s.visit(root)
	s.list = append(s.list, root)
	return s.list
}

func (s *exprSorter) include(e ir.Expr) {
	if s.visited[e] {
		return
	}
	s.visited[e] = true
	s.visit(e)
	s.list = append(s.list, e)
}

func (s *exprSorter) visit(e ir.Expr) {
	switch eT := e.(type) {
	case *ir.Call:
		if !eT.IsExtern() {
			return
		}
		for _, arg := range eT.Args {
			s.include(arg)
		}
	case *ir.Select:
		s.include(eT.Then)
		s.include(eT.Else)
	case *ir.LE, *ir.GE, *ir.EQ:
		return
	default:
		for _, child := range ir.Children(e) {
			s.include(child)
		}
	}
}
