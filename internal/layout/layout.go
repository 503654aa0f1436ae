package layout

import (
	"errors"
	"fmt"
	"sort"
)

// HeaderLength is the size of the common CEOS record header: record sequence
// number, four type codes and the record length.
const HeaderLength = 12

var ErrInvalidLayout = errors.New("invalid record layout")

// Kind is the encoding of a field.
type Kind int

const (
	KindText         Kind = iota + 1 // A<n>
	KindFixedDecimal                 // F<n>
	KindInteger                      // I<n>
	KindBinary                       // B<n>, big-endian unsigned
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "A"
	case KindFixedDecimal:
		return "F"
	case KindInteger:
		return "I"
	case KindBinary:
		return "B"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Tag identifies a record type by its four header codes.
type Tag struct {
	First  byte
	Type   byte
	Second byte
	Third  byte
}

func (t Tag) String() string {
	return fmt.Sprintf("%d/%d/%d/%d", t.First, t.Type, t.Second, t.Third)
}

// FieldSpec places one field within a record. Offset is relative to the record
// start.
type FieldSpec struct {
	Name   string
	Offset int64
	Width  int
	Kind   Kind
}

// End returns the offset one past the last byte of the field.
func (f FieldSpec) End() int64 { return f.Offset + int64(f.Width) }

func (f FieldSpec) String() string {
	return fmt.Sprintf("%s %s%d@%d", f.Name, f.Kind, f.Width, f.Offset)
}

func Text(name string, offset int64, width int) FieldSpec {
	return FieldSpec{Name: name, Offset: offset, Width: width, Kind: KindText}
}

func Decimal(name string, offset int64, width int) FieldSpec {
	return FieldSpec{Name: name, Offset: offset, Width: width, Kind: KindFixedDecimal}
}

func Integer(name string, offset int64, width int) FieldSpec {
	return FieldSpec{Name: name, Offset: offset, Width: width, Kind: KindInteger}
}

func Binary(name string, offset int64, width int) FieldSpec {
	return FieldSpec{Name: name, Offset: offset, Width: width, Kind: KindBinary}
}

// Layout is the immutable field table of one record type. Fields keep their
// declared order, which is the order they are read in.
type Layout struct {
	name       string
	tag        Tag
	length     int64
	fields     []FieldSpec
	index      map[string]int
	permissive bool
}

// New builds a layout and validates it: widths are positive, names unique,
// every field lies between the common header and length, and no two fields
// overlap.
func New(name string, tag Tag, length int64, fields ...FieldSpec) (*Layout, error) {
	l, err := build(name, tag, length, fields)
	if err != nil {
		return nil, err
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// NewPermissive builds a layout without range and overlap checks, matching
// legacy readers that never validated their tables.
func NewPermissive(name string, tag Tag, length int64, fields ...FieldSpec) (*Layout, error) {
	l, err := build(name, tag, length, fields)
	if err != nil {
		return nil, err
	}
	l.permissive = true
	return l, nil
}

// MustNew is New for statically declared tables.
func MustNew(name string, tag Tag, length int64, fields ...FieldSpec) *Layout {
	l, err := New(name, tag, length, fields...)
	if err != nil {
		panic(err)
	}
	return l
}

func build(name string, tag Tag, length int64, fields []FieldSpec) (*Layout, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidLayout)
	}
	l := &Layout{
		name:   name,
		tag:    tag,
		length: length,
		fields: append([]FieldSpec(nil), fields...),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range l.fields {
		if f.Name == "" {
			return nil, fmt.Errorf("%w: %s: field %d has no name", ErrInvalidLayout, name, i)
		}
		if _, dup := l.index[f.Name]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate field %q", ErrInvalidLayout, name, f.Name)
		}
		if f.Width <= 0 {
			return nil, fmt.Errorf("%w: %s: field %q has width %d", ErrInvalidLayout, name, f.Name, f.Width)
		}
		switch f.Kind {
		case KindText, KindFixedDecimal, KindInteger:
		case KindBinary:
			if f.Width != 1 && f.Width != 2 && f.Width != 4 && f.Width != 8 {
				return nil, fmt.Errorf("%w: %s: binary field %q has width %d", ErrInvalidLayout, name, f.Name, f.Width)
			}
		default:
			return nil, fmt.Errorf("%w: %s: field %q has unknown kind %d", ErrInvalidLayout, name, f.Name, int(f.Kind))
		}
		l.index[f.Name] = i
	}
	return l, nil
}

// Validate checks the byte ranges of the table. It ignores the permissive flag,
// so a permissive layout can still be checked explicitly.
func (l *Layout) Validate() error {
	if l.length < HeaderLength {
		return fmt.Errorf("%w: %s: length %d is shorter than the %d byte header", ErrInvalidLayout, l.name, l.length, HeaderLength)
	}
	sorted := append([]FieldSpec(nil), l.fields...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })
	for i, f := range sorted {
		if f.Offset < HeaderLength {
			return fmt.Errorf("%w: %s: field %q at %d overlaps the record header", ErrInvalidLayout, l.name, f.Name, f.Offset)
		}
		if f.End() > l.length {
			return fmt.Errorf("%w: %s: field %q ends at %d past record length %d", ErrInvalidLayout, l.name, f.Name, f.End(), l.length)
		}
		if i > 0 && sorted[i-1].End() > f.Offset {
			return fmt.Errorf("%w: %s: fields %q and %q overlap", ErrInvalidLayout, l.name, sorted[i-1].Name, f.Name)
		}
	}
	return nil
}

func (l *Layout) Name() string { return l.name }
func (l *Layout) Tag() Tag     { return l.tag }

// Length is the declared record length the table was written against.
func (l *Layout) Length() int64 { return l.length }

// SubheaderLength is the size of the region preceding the payload fields.
func (l *Layout) SubheaderLength() int64 { return HeaderLength }

func (l *Layout) Permissive() bool { return l.permissive }

// Fields returns a copy of the table in declared order.
func (l *Layout) Fields() []FieldSpec {
	return append([]FieldSpec(nil), l.fields...)
}

// Lookup returns the field with the given name.
func (l *Layout) Lookup(name string) (FieldSpec, bool) {
	i, ok := l.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return l.fields[i], true
}

// Extend returns a new layout with the fields of l followed by extra, under a
// new name and tag. Sensor-specific variants extend a shared base table this
// way.
func (l *Layout) Extend(name string, tag Tag, length int64, extra ...FieldSpec) (*Layout, error) {
	fields := append(l.Fields(), extra...)
	if l.permissive {
		return NewPermissive(name, tag, length, fields...)
	}
	return New(name, tag, length, fields...)
}
