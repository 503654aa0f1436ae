package record

import (
	"errors"
	"fmt"

	"github.com/d21d3q/goceos/internal/fieldreader"
	"github.com/d21d3q/goceos/internal/layout"
)

var ErrInvalidRecordLength = errors.New("invalid record length")

// Descriptor is the common header every CEOS record starts with.
type Descriptor struct {
	Sequence        uint32
	Tag             layout.Tag
	Length          int64
	SubheaderLength int64
}

var headerFields = []layout.FieldSpec{
	layout.Binary("record_sequence", 0, 4),
	layout.Binary("first_subtype", 4, 1),
	layout.Binary("record_type", 5, 1),
	layout.Binary("second_subtype", 6, 1),
	layout.Binary("third_subtype", 7, 1),
	layout.Binary("record_length", 8, 4),
}

// ReadDescriptor reads the 12 byte header at the cursor.
func ReadDescriptor(r *fieldreader.Reader) (Descriptor, error) {
	start := r.Pos()
	var vals [6]uint64
	for i, f := range headerFields {
		v, err := r.ReadBinary(f.Width)
		if err != nil {
			return Descriptor{}, &FieldError{Variant: "header", Field: f.Name, Offset: start + f.Offset, Err: err}
		}
		vals[i] = v
	}
	d := Descriptor{
		Sequence: uint32(vals[0]),
		Tag: layout.Tag{
			First:  byte(vals[1]),
			Type:   byte(vals[2]),
			Second: byte(vals[3]),
			Third:  byte(vals[4]),
		},
		Length:          int64(vals[5]),
		SubheaderLength: layout.HeaderLength,
	}
	if d.Length < layout.HeaderLength {
		return Descriptor{}, &FieldError{
			Variant: "header",
			Field:   "record_length",
			Offset:  start + 8,
			Err:     fmt.Errorf("%w: %d", ErrInvalidRecordLength, d.Length),
		}
	}
	return d, nil
}
