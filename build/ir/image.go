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

import "github.com/pkg/errors"

// Image is a named, concrete multi-dimensional buffer readable from the IR.
// Images are leaf inputs: the gradient pass does not propagate through them.
type Image struct {
	name    string
	extents []int
	data    []float64
}

// NewImage returns a zero-filled image with the given extents.
func NewImage(name string, extents ...int) *Image {
	size := 1
	for _, extent := range extents {
		size *= extent
	}
	return &Image{name: name, extents: extents, data: make([]float64, size)}
}

// ImageOf returns a one-dimensional image holding the given values.
func ImageOf(name string, values ...float64) *Image {
	im := NewImage(name, len(values))
	copy(im.data, values)
	return im
}

// Name of the image.
func (im *Image) Name() string { return im.name }

// Extents returns the size of each dimension.
func (im *Image) Extents() []int { return im.extents }

// Extent returns the size of one dimension.
func (im *Image) Extent(i int) int { return im.extents[i] }

func (im *Image) offset(point []int) (int, error) {
	if len(point) != len(im.extents) {
		return 0, errors.Errorf("image %s has %d dimensions but the access has %d", im.name, len(im.extents), len(point))
	}
	offset := 0
	stride := 1
	for i, p := range point {
		if p < 0 || p >= im.extents[i] {
			return 0, errors.Errorf("image %s: index %d out of range [0, %d) in dimension %d", im.name, p, im.extents[i], i)
		}
		offset += p * stride
		stride *= im.extents[i]
	}
	return offset, nil
}

// At returns the value stored at a point.
func (im *Image) At(point ...int) (float64, error) {
	offset, err := im.offset(point)
	if err != nil {
		return 0, err
	}
	return im.data[offset], nil
}

// Set stores a value at a point.
func (im *Image) Set(value float64, point ...int) error {
	offset, err := im.offset(point)
	if err != nil {
		return err
	}
	im.data[offset] = value
	return nil
}

// Call returns an expression reading the image at the given index tuple.
func (im *Image) Call(args ...Expr) *Call {
	return &Call{Image: im, Args: args}
}
