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

// Equal reports whether two expressions are structurally equal.
// Variables compare by name, constants by value and domain, callees by
// identity. Identity-distinct but structurally equal nodes are equal.
func Equal(a, b Expr) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch aT := a.(type) {
	case *Const:
		bT := b.(*Const)
		return aT.Value == bT.Value && aT.Integer == bT.Integer
	case *Var:
		return aT.Name == b.(*Var).Name
	case *Cast:
		bT := b.(*Cast)
		if aT.Integer != bT.Integer {
			return false
		}
	case *Call:
		bT := b.(*Call)
		if aT.Func != bT.Func || aT.Image != bT.Image || aT.Name != bT.Name {
			return false
		}
	case *Let:
		if aT.Name != b.(*Let).Name {
			return false
		}
	}
	aChildren, bChildren := Children(a), Children(b)
	if len(aChildren) != len(bChildren) {
		return false
	}
	for i, aChild := range aChildren {
		if !Equal(aChild, bChildren[i]) {
			return false
		}
	}
	return true
}
