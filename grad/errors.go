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

import "github.com/pkg/errors"

var (
	// ErrUnsupportedBounds reports an index expression whose interval the
	// bounds inferencer cannot compute. The whole pass aborts: there is no
	// partial bounds result.
	ErrUnsupportedBounds = errors.New("unsupported expression in bounds inference")

	// ErrUninvertible reports a call index argument for which the solver
	// cannot produce a closed-form inverse.
	ErrUninvertible = errors.New("cannot invert index expression")

	// ErrMissingAdjoint reports an expression visited before its adjoint
	// has been accumulated. It indicates a broken traversal order inside
	// the engine, not bad input.
	ErrMissingAdjoint = errors.New("no adjoint accumulated for expression")

	// ErrUnknownPrimitive reports a scalar primitive without a derivative
	// rule, when the engine is configured to reject them.
	ErrUnknownPrimitive = errors.New("no derivative rule for primitive")
)
