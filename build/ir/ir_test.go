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

import "testing"

func TestEqual(t *testing.T) {
	x := NewVar("x")
	f := NewFunc("f", []*Var{x}, x)
	g := NewFunc("g", []*Var{x}, x)
	tests := []struct {
		a, b Expr
		want bool
	}{
		{a: IntConst(1), b: IntConst(1), want: true},
		{a: IntConst(1), b: FloatConst(1), want: false},
		{a: NewVar("x"), b: NewVar("x"), want: true},
		{a: NewVar("x"), b: NewVar("y"), want: false},
		{
			a:    &Add{A: NewVar("x"), B: IntConst(1)},
			b:    &Add{A: NewVar("x"), B: IntConst(1)},
			want: true,
		},
		{
			a:    &Add{A: NewVar("x"), B: IntConst(1)},
			b:    &Sub{A: NewVar("x"), B: IntConst(1)},
			want: false,
		},
		{a: f.Call(x), b: f.Call(NewVar("x")), want: true},
		{a: f.Call(x), b: g.Call(x), want: false},
		{
			a:    &Let{Name: "t", Value: x, Body: x},
			b:    &Let{Name: "u", Value: x, Body: x},
			want: false,
		},
	}
	for _, test := range tests {
		if got := Equal(test.a, test.b); got != test.want {
			t.Errorf("Equal(%s, %s) = %t, want %t", test.a, test.b, got, test.want)
		}
	}
}

func TestString(t *testing.T) {
	x := NewVar("x")
	f := NewFunc("f", []*Var{x}, x)
	tests := []struct {
		e    Expr
		want string
	}{
		{e: IntConst(-3), want: "-3"},
		{e: FloatConst(1.5), want: "1.5"},
		{e: &Mul{A: x, B: IntConst(2)}, want: "(x * 2)"},
		{e: &Min{A: x, B: IntConst(0)}, want: "min(x, 0)"},
		{
			e:    &Select{Cond: &GE{A: x, B: IntConst(0)}, Then: x, Else: IntConst(0)},
			want: "select((x >= 0), x, 0)",
		},
		{e: f.Call(&Add{A: x, B: IntConst(1)}), want: "f((x + 1))"},
		{e: Extern("exp", x), want: "exp(x)"},
		{e: &Let{Name: "t", Value: x, Body: NewVar("t")}, want: "(let t = x in t)"},
	}
	for _, test := range tests {
		if got := test.e.String(); got != test.want {
			t.Errorf("String() = %q, want %q", got, test.want)
		}
	}
}

func TestFuncStages(t *testing.T) {
	x := NewVar("x")
	f := NewFunc("f", []*Var{x}, FloatConst(0))
	if f.LastStage() != InitStage {
		t.Errorf("LastStage() = %d, want %d", f.LastStage(), InitStage)
	}
	f.Update(&Add{A: f.Call(x), B: FloatConst(1)})
	if f.LastStage() != 0 {
		t.Errorf("LastStage() = %d, want 0", f.LastStage())
	}
	if got := f.Key(0).String(); got != "f[0]" {
		t.Errorf("Key(0) = %q, want %q", got, "f[0]")
	}
	if !Equal(f.StageValue(InitStage), FloatConst(0)) {
		t.Errorf("StageValue(InitStage) = %s, want 0", f.StageValue(InitStage))
	}
}

func TestImageAccess(t *testing.T) {
	im := NewImage("im", 2, 3)
	if err := im.Set(7, 1, 2); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := im.At(1, 2)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if got != 7 {
		t.Errorf("At(1, 2) = %v, want 7", got)
	}
	if _, err := im.At(2, 0); err == nil {
		t.Error("At(2, 0) succeeded, want an out-of-range error")
	}
	if _, err := im.At(0); err == nil {
		t.Error("At(0) succeeded, want a dimension mismatch error")
	}
}

func TestRDomVars(t *testing.T) {
	dom := IntervalRDom("r", 0, 4, 1, 3)
	if got := dom.X().Name; got != "r$x" {
		t.Errorf("X().Name = %q, want %q", got, "r$x")
	}
	if got := dom.Y().Dim; got != 1 {
		t.Errorf("Y().Dim = %d, want 1", got)
	}
	if got := dom.String(); got != "r[(0, 4), (1, 3)]" {
		t.Errorf("String() = %q, want %q", got, "r[(0, 4), (1, 3)]")
	}
}
