package vortex

import (
	"fmt"
	"slices"
)

// Kind tags the variant held by a Source.
type Kind int

const (
	KindUnsupported Kind = iota
	KindSingle
	KindCollection
	KindNamed
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindCollection:
		return "collection"
	case KindNamed:
		return "named"
	default:
		return "unsupported"
	}
}

// Source is the input (and output) of a resample: one field, an ordered
// collection of fields, or a named collection. The zero Source is the
// unsupported variant.
type Source struct {
	kind   Kind
	fields []Field
}

// Single wraps one field.
func Single(f Field) Source {
	return Source{kind: KindSingle, fields: []Field{f}}
}

// Collection wraps an ordered list of fields.
func Collection(fields ...Field) Source {
	return Source{kind: KindCollection, fields: slices.Clone(fields)}
}

// Named wraps a dataset of uniquely named fields.
func Named(ds Dataset) Source {
	return Source{kind: KindNamed, fields: slices.Clone(ds.fields)}
}

// Kind reports the variant.
func (s Source) Kind() Kind { return s.kind }

// Fields returns the wrapped fields in order.
func (s Source) Fields() []Field { return slices.Clone(s.fields) }

// Field returns the single field of a KindSingle source.
func (s Source) Field() (Field, bool) {
	if s.kind != KindSingle || len(s.fields) != 1 {
		return Field{}, false
	}
	return s.fields[0], true
}

// Dataset returns the fields of a KindNamed source.
func (s Source) Dataset() (Dataset, bool) {
	if s.kind != KindNamed {
		return Dataset{}, false
	}
	return Dataset{fields: s.fields}, true
}

// Dataset is an ordered set of uniquely named fields.
type Dataset struct {
	fields []Field
}

// NewDataset builds a dataset, rejecting empty or duplicate names.
func NewDataset(fields ...Field) (Dataset, error) {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			return Dataset{}, fmt.Errorf("%w: dataset variable without a name", ErrUnsupportedSource)
		}
		if seen[f.Name] {
			return Dataset{}, fmt.Errorf("%w: duplicate dataset variable %q", ErrUnsupportedSource, f.Name)
		}
		seen[f.Name] = true
	}
	return Dataset{fields: slices.Clone(fields)}, nil
}

// Names lists variable names in order.
func (d Dataset) Names() []string {
	names := make([]string, len(d.fields))
	for i, f := range d.fields {
		names[i] = f.Name
	}
	return names
}

// Get looks up a variable by name.
func (d Dataset) Get(name string) (Field, bool) {
	for _, f := range d.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Fields returns the variables in order.
func (d Dataset) Fields() []Field { return slices.Clone(d.fields) }
