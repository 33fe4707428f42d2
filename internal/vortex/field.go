package vortex

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// Field is a named, row-major N-dimensional array of float64 values with
// per-dimension coordinate values. Missing values are NaN.
//
// A Field with no dimensions is a scalar holding a single value.
type Field struct {
	Name   string
	Dims   []string
	Shape  []int
	Coords map[string][]float64
	Values []float64
}

// Validate checks that dimensions, shape, coordinates and values agree.
func (f Field) Validate() error {
	if len(f.Dims) != len(f.Shape) {
		return fmt.Errorf("%w: field %q has %d dims but %d sizes", ErrShapeMismatch, f.Name, len(f.Dims), len(f.Shape))
	}
	seen := make(map[string]bool, len(f.Dims))
	for i, d := range f.Dims {
		if d == "" || seen[d] {
			return fmt.Errorf("%w: field %q has empty or repeated dim %q", ErrDimension, f.Name, d)
		}
		seen[d] = true
		if f.Shape[i] < 1 {
			return fmt.Errorf("%w: field %q dim %q has size %d", ErrShapeMismatch, f.Name, d, f.Shape[i])
		}
	}
	if n := f.Size(); n != len(f.Values) {
		return fmt.Errorf("%w: field %q expects %d values, got %d", ErrShapeMismatch, f.Name, n, len(f.Values))
	}
	for d, c := range f.Coords {
		ax := f.Axis(d)
		if ax < 0 {
			return fmt.Errorf("%w: field %q has coordinate %q without a dim", ErrDimension, f.Name, d)
		}
		if len(c) != f.Shape[ax] {
			return fmt.Errorf("%w: field %q coordinate %q has %d values for size %d", ErrShapeMismatch, f.Name, d, len(c), f.Shape[ax])
		}
	}
	return nil
}

// Axis returns the position of dim in f.Dims, or -1.
func (f Field) Axis(dim string) int {
	return slices.Index(f.Dims, dim)
}

// Len returns the size of dim, or 0 when f does not have it.
func (f Field) Len(dim string) int {
	if ax := f.Axis(dim); ax >= 0 {
		return f.Shape[ax]
	}
	return 0
}

// Size is the number of values implied by Shape.
func (f Field) Size() int {
	n := 1
	for _, s := range f.Shape {
		n *= s
	}
	return n
}

// Missing counts NaN values.
func (f Field) Missing() int {
	return floats.Count(math.IsNaN, f.Values)
}

// SameLayout reports whether f and g have identical dims and shape.
func (f Field) SameLayout(g Field) bool {
	return slices.Equal(f.Dims, g.Dims) && slices.Equal(f.Shape, g.Shape)
}

// like returns an empty field with f's layout under a new name.
func (f Field) like(name string) Field {
	return Field{
		Name:   name,
		Dims:   slices.Clone(f.Dims),
		Shape:  slices.Clone(f.Shape),
		Coords: cloneCoords(f.Coords),
		Values: make([]float64, len(f.Values)),
	}
}

// cloneCoords copies the map and every coordinate slice in it.
func cloneCoords(coords map[string][]float64) map[string][]float64 {
	if coords == nil {
		return nil
	}
	out := make(map[string][]float64, len(coords))
	for d, c := range coords {
		out[d] = slices.Clone(c)
	}
	return out
}

func strides(shape []int) []int {
	st := make([]int, len(shape))
	n := 1
	for i := len(shape) - 1; i >= 0; i-- {
		st[i] = n
		n *= shape[i]
	}
	return st
}

// broadcastIndex maps every flat index of target to the flat index of src
// that shares its coordinates by dimension name. Every dim of src must be in
// target with the same size, except size-1 dims, which broadcast.
func broadcastIndex(target, src Field) ([]int, error) {
	srcStrides := strides(src.Shape)
	step := make([]int, len(target.Dims))
	for k, d := range src.Dims {
		ax := target.Axis(d)
		switch {
		case src.Shape[k] == 1:
			continue
		case ax < 0:
			return nil, fmt.Errorf("%w: %q has dim %q missing from %q", ErrShapeMismatch, src.Name, d, target.Name)
		case target.Shape[ax] != src.Shape[k]:
			return nil, fmt.Errorf("%w: dim %q is %d in %q but %d in %q",
				ErrShapeMismatch, d, src.Shape[k], src.Name, target.Shape[ax], target.Name)
		}
		step[ax] = srcStrides[k]
	}

	out := make([]int, target.Size())
	idx := make([]int, len(target.Shape))
	off := 0
	for i := range out {
		out[i] = off
		for ax := len(idx) - 1; ax >= 0; ax-- {
			idx[ax]++
			off += step[ax]
			if idx[ax] < target.Shape[ax] {
				break
			}
			off -= step[ax] * target.Shape[ax]
			idx[ax] = 0
		}
	}
	return out, nil
}
