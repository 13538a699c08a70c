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

import (
	"fmt"
	"strconv"
	"strings"
)

// String representation of the literal.
func (c *Const) String() string {
	if c.Integer {
		return strconv.Itoa(int(c.Value))
	}
	return strconv.FormatFloat(c.Value, 'g', -1, 64)
}

// String representation of the variable.
func (v *Var) String() string { return v.Name }

// String representation of the cast.
func (c *Cast) String() string {
	to := "float"
	if c.Integer {
		to = "int"
	}
	return fmt.Sprintf("%s(%s)", to, c.Value)
}

// String representation of the addition.
func (e *Add) String() string { return fmt.Sprintf("(%s + %s)", e.A, e.B) }

// String representation of the subtraction.
func (e *Sub) String() string { return fmt.Sprintf("(%s - %s)", e.A, e.B) }

// String representation of the multiplication.
func (e *Mul) String() string { return fmt.Sprintf("(%s * %s)", e.A, e.B) }

// String representation of the division.
func (e *Div) String() string { return fmt.Sprintf("(%s / %s)", e.A, e.B) }

// String representation of the minimum.
func (e *Min) String() string { return fmt.Sprintf("min(%s, %s)", e.A, e.B) }

// String representation of the maximum.
func (e *Max) String() string { return fmt.Sprintf("max(%s, %s)", e.A, e.B) }

// String representation of the comparison.
func (e *LE) String() string { return fmt.Sprintf("(%s <= %s)", e.A, e.B) }

// String representation of the comparison.
func (e *GE) String() string { return fmt.Sprintf("(%s >= %s)", e.A, e.B) }

// String representation of the equality.
func (e *EQ) String() string { return fmt.Sprintf("(%s == %s)", e.A, e.B) }

// String representation of the selection.
func (e *Select) String() string {
	return fmt.Sprintf("select(%s, %s, %s)", e.Cond, e.Then, e.Else)
}

// String representation of the call.
func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, arg := range c.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", c.Callee(), strings.Join(args, ", "))
}

// String representation of the binding.
func (e *Let) String() string {
	return fmt.Sprintf("(let %s = %s in %s)", e.Name, e.Value, e.Body)
}

// String representation of the function, one stage per line.
func (f *Func) String() string {
	args := make([]string, len(f.args))
	for i, arg := range f.args {
		args[i] = arg.Name
	}
	head := fmt.Sprintf("%s(%s)", f.name, strings.Join(args, ", "))
	var b strings.Builder
	fmt.Fprintf(&b, "%s = %s", head, f.init)
	for _, update := range f.updates {
		fmt.Fprintf(&b, "\n%s = %s", head, update)
	}
	return b.String()
}
