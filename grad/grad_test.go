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
	"math"
	"testing"

	"github.com/arrp-org/arrp/build/ir"
	"github.com/arrp-org/arrp/interp"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats/scalar"
)

const tolerance = 1e-6

func evalAt(t *testing.T, f *ir.Func, point ...int) float64 {
	t.Helper()
	got, err := interp.Eval(f, point...)
	if err != nil {
		t.Fatalf("cannot evaluate %s at %v: %+v", f.Name(), point, err)
	}
	return got
}

func checkGradient(t *testing.T, f *ir.Func, want []float64) {
	t.Helper()
	for i, w := range want {
		got := evalAt(t, f, i)
		if !scalar.EqualWithinAbs(got, w, tolerance) {
			t.Errorf("%s(%d) = %v, want %v", f.Name(), i, got, w)
		}
	}
}

// The gradient of sum_i blur(i)^2 with respect to blur is 2*blur, and the
// gradient with respect to the boundary-clamped input accumulates the
// contributions of every blur tap reading it.
func TestPropagateBlurRoundTrip(t *testing.T) {
	in := ir.ImageOf("in", 1, 2)
	x := ir.NewVar("x")
	clamped := ir.NewFunc("clamped", []*ir.Var{x},
		in.Call(ir.Clamp(x, ir.IntConst(0), ir.IntConst(1))))
	blur := ir.NewFunc("blur", []*ir.Var{x}, &ir.Add{
		A: clamped.Call(x),
		B: clamped.Call(&ir.Add{A: x, B: ir.IntConst(1)}),
	})
	dom := ir.IntervalRDom("r", 0, 2)
	read := blur.Call(dom.X())
	loss := &ir.Mul{A: read, B: read}

	grads, err := Propagate(loss)
	if err != nil {
		t.Fatalf("Propagate: %+v", err)
	}
	if len(grads) != 2 {
		t.Fatalf("Propagate returned gradients for %d functions, want 2", len(grads))
	}

	// blur(0) = 1+2 = 3, blur(1) = 2+2 = 4.
	checkGradient(t, grads["blur"], []float64{6, 8})
	// d_clamped(i) = d_blur(i) + d_blur(i-1), zero outside [0, 2).
	checkGradient(t, grads["clamped"], []float64{6, 14, 8})
}

// Splitting the blur into an initialization and an update stage must not
// change the gradients: the update reads the initialization back, so the
// loss moves with the initial values exactly as in the one-stage form.
func TestPropagateUpdateStage(t *testing.T) {
	in := ir.ImageOf("in", 1, 2)
	x := ir.NewVar("x")
	clamped := ir.NewFunc("clamped", []*ir.Var{x},
		in.Call(ir.Clamp(x, ir.IntConst(0), ir.IntConst(1))))
	blur := ir.NewFunc("blur", []*ir.Var{x}, clamped.Call(x))
	blur.Update(&ir.Add{
		A: blur.Call(x),
		B: clamped.Call(&ir.Add{A: x, B: ir.IntConst(1)}),
	})
	dom := ir.IntervalRDom("r", 0, 2)
	read := blur.Call(dom.X())
	loss := &ir.Mul{A: read, B: read}

	grads, err := Propagate(loss)
	if err != nil {
		t.Fatalf("Propagate: %+v", err)
	}
	checkGradient(t, grads["blur"], []float64{6, 8})
	checkGradient(t, grads["clamped"], []float64{6, 14, 8})
}

func TestPropagateScatterAdd(t *testing.T) {
	in := ir.ImageOf("in", 1, 2, 3, 4)
	x := ir.NewVar("x")
	f := ir.NewFunc("f", []*ir.Var{x}, in.Call(x))
	g := ir.NewFunc("g", []*ir.Var{x}, &ir.Add{
		A: f.Call(x),
		B: f.Call(&ir.Add{A: x, B: ir.IntConst(1)}),
	})
	dom := ir.IntervalRDom("r", 0, 3)
	loss := g.Call(dom.X())

	grads, err := Propagate(loss)
	if err != nil {
		t.Fatalf("Propagate: %+v", err)
	}
	// Interior points of f are read by two taps of g, the edges by one.
	checkGradient(t, grads["f"], []float64{1, 2, 2, 1})
}

func TestPropagateSelfRecurrence(t *testing.T) {
	in := ir.ImageOf("in", 3, 4)
	x := ir.NewVar("x")
	f := ir.NewFunc("f", []*ir.Var{x}, in.Call(x))
	f.Update(&ir.Mul{A: f.Call(x), B: ir.FloatConst(2)})
	dom := ir.IntervalRDom("r", 0, 2)
	loss := f.Call(dom.X())

	grads, err := Propagate(loss)
	if err != nil {
		t.Fatalf("Propagate: %+v", err)
	}
	// The update doubles the initialization, so the loss moves twice as
	// fast as the initial values.
	checkGradient(t, grads["f"], []float64{2, 2})
}

func TestPropagateExtern(t *testing.T) {
	in := ir.ImageOf("in", 0.5, 1)
	x := ir.NewVar("x")
	g := ir.NewFunc("g", []*ir.Var{x}, in.Call(x))
	f := ir.NewFunc("f", []*ir.Var{x}, ir.Extern("exp", g.Call(x)))
	dom := ir.IntervalRDom("r", 0, 2)
	loss := f.Call(dom.X())

	grads, err := Propagate(loss)
	if err != nil {
		t.Fatalf("Propagate: %+v", err)
	}
	checkGradient(t, grads["g"], []float64{math.Exp(0.5), math.Exp(1)})
}

func TestPropagateCustomRule(t *testing.T) {
	in := ir.ImageOf("in", 0.5, 1)
	x := ir.NewVar("x")
	g := ir.NewFunc("g", []*ir.Var{x}, in.Call(x))
	f := ir.NewFunc("f", []*ir.Var{x}, ir.Extern("sin", g.Call(x)))
	dom := ir.IntervalRDom("r", 0, 2)
	loss := f.Call(dom.X())

	cosine := func(args []ir.Expr, adjoint ir.Expr) []ir.Expr {
		out := make([]ir.Expr, len(args))
		for i, arg := range args {
			out[i] = &ir.Mul{A: adjoint, B: ir.Extern("cos", arg)}
		}
		return out
	}
	grads, err := Propagate(loss, WithRule("sin", cosine))
	if err != nil {
		t.Fatalf("Propagate: %+v", err)
	}
	checkGradient(t, grads["g"], []float64{math.Cos(0.5), math.Cos(1)})
}

func TestPropagateLet(t *testing.T) {
	in := ir.ImageOf("in", 1, 2, 3)
	x := ir.NewVar("x")
	g := ir.NewFunc("g", []*ir.Var{x}, in.Call(x))
	tv := ir.NewVar("t")
	f := ir.NewFunc("f", []*ir.Var{x}, &ir.Let{
		Name:  "t",
		Value: g.Call(x),
		Body:  &ir.Mul{A: tv, B: tv},
	})
	dom := ir.IntervalRDom("r", 0, 3)
	loss := f.Call(dom.X())

	grads, err := Propagate(loss)
	if err != nil {
		t.Fatalf("Propagate: %+v", err)
	}
	// d/dt t^2 = 2t, re-expressed under the same binding.
	checkGradient(t, grads["g"], []float64{2, 4, 6})
}

func TestPropagateUnknownPrimitive(t *testing.T) {
	in := ir.ImageOf("in", 1, 2)
	x := ir.NewVar("x")
	g := ir.NewFunc("g", []*ir.Var{x}, in.Call(x))
	f := ir.NewFunc("f", []*ir.Var{x}, ir.Extern("erf", g.Call(x)))
	dom := ir.IntervalRDom("r", 0, 2)
	loss := f.Call(dom.X())

	grads, err := Propagate(loss)
	if err != nil {
		t.Fatalf("Propagate: %+v", err)
	}
	checkGradient(t, grads["g"], []float64{0, 0})

	if _, err := Propagate(loss, WithUnknownPrimitive(ErrorOnUnknown)); !errors.Is(err, ErrUnknownPrimitive) {
		t.Errorf("Propagate returned %v, want ErrUnknownPrimitive", err)
	}
}

func TestPropagateUninvertibleIndex(t *testing.T) {
	x := ir.NewVar("x")
	f := ir.NewFunc("f", []*ir.Var{x}, x)
	g := ir.NewFunc("g", []*ir.Var{x},
		f.Call(&ir.Min{A: x, B: ir.IntConst(2)}))
	dom := ir.IntervalRDom("r", 0, 4)
	loss := g.Call(dom.X())

	if _, err := Propagate(loss); !errors.Is(err, ErrUninvertible) {
		t.Errorf("Propagate returned %v, want ErrUninvertible", err)
	}
}

func TestPropagateUnsupportedBounds(t *testing.T) {
	x := ir.NewVar("x")
	f := ir.NewFunc("f", []*ir.Var{x}, x)
	dom := ir.IntervalRDom("r", 0, 4)
	loss := f.Call(&ir.Mul{A: dom.X(), B: dom.X()})

	if _, err := Propagate(loss); !errors.Is(err, ErrUnsupportedBounds) {
		t.Errorf("Propagate returned %v, want ErrUnsupportedBounds", err)
	}
}
