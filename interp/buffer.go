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

package interp

import (
	"runtime"
	"sync"

	"github.com/arrp-org/arrp/build/ir"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Buffer is a dense, row-major realization of a function over a rectangular
// domain starting at the origin.
type Buffer struct {
	extents []int
	data    []float64
}

// Extents returns the size of each dimension.
func (b *Buffer) Extents() []int { return b.extents }

// Data returns the underlying values, first dimension varying fastest.
func (b *Buffer) Data() []float64 { return b.data }

// At returns the value realized at a point.
func (b *Buffer) At(point ...int) float64 {
	offset := 0
	stride := 1
	for i, p := range point {
		offset += p * stride
		stride *= b.extents[i]
	}
	return b.data[offset]
}

func checkExtents(f *ir.Func, extents []int) error {
	var errs error
	if len(extents) != len(f.Args()) {
		errs = multierr.Append(errs, errors.Errorf("%s has %d dimensions but %d extents were given", f.Name(), len(f.Args()), len(extents)))
	}
	for i, extent := range extents {
		if extent <= 0 {
			errs = multierr.Append(errs, errors.Errorf("extent %d of dimension %d is not positive", extent, i))
		}
	}
	return errs
}

// Realize evaluates a function over [0, extent) in every dimension.
// Points are evaluated concurrently; the workers share one memo.
func Realize(f *ir.Func, extents ...int) (*Buffer, error) {
	if err := checkExtents(f, extents); err != nil {
		return nil, errors.Wrapf(err, "cannot realize %s", f.Name())
	}
	size := 1
	for _, extent := range extents {
		size *= extent
	}
	buf := &Buffer{extents: extents, data: make([]float64, size)}
	ev := &evaluator{}
	workers := min(runtime.GOMAXPROCS(0), size)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			point := make([]int, len(extents))
			for offset := w; offset < size; offset += workers {
				rest := offset
				for i, extent := range extents {
					point[i] = rest % extent
					rest /= extent
				}
				v, err := ev.funcValue(f, f.LastStage(), point)
				if err != nil {
					errs[w] = err
					return
				}
				buf.data[offset] = v
			}
		}()
	}
	wg.Wait()
	if err := multierr.Combine(errs...); err != nil {
		return nil, err
	}
	return buf, nil
}
