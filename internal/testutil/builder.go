package testutil

import (
	"encoding/binary"
	"fmt"

	"github.com/d21d3q/goceos/internal/layout"
)

// RecordBuilder assembles a CEOS record in memory: a 12 byte header followed by
// a blank-filled body that fields are written into.
type RecordBuilder struct {
	buf []byte
}

// NewRecord returns a blank record of length bytes whose header declares
// declaredLength. Pass the same value twice for a well-formed record.
func NewRecord(seq uint32, tag layout.Tag, length, declaredLength int) *RecordBuilder {
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = ' '
	}
	var hdr [layout.HeaderLength]byte
	binary.BigEndian.PutUint32(hdr[0:4], seq)
	hdr[4] = tag.First
	hdr[5] = tag.Type
	hdr[6] = tag.Second
	hdr[7] = tag.Third
	binary.BigEndian.PutUint32(hdr[8:12], uint32(declaredLength))
	copy(buf, hdr[:])
	return &RecordBuilder{buf: buf}
}

// Put writes s at offset. Bytes past the end of the buffer are dropped, which
// lets tests build truncated records.
func (b *RecordBuilder) Put(offset int, s string) *RecordBuilder {
	for i := 0; i < len(s); i++ {
		if offset+i < len(b.buf) {
			b.buf[offset+i] = s[i]
		}
	}
	return b
}

// PutField writes s right-justified into the field's byte range. It panics when
// s does not fit, since that is a broken test.
func (b *RecordBuilder) PutField(f layout.FieldSpec, s string) *RecordBuilder {
	if len(s) > f.Width {
		panic(fmt.Sprintf("value %q does not fit %s", s, f))
	}
	return b.Put(int(f.Offset), fmt.Sprintf("%*s", f.Width, s))
}

// PutNamed writes s into the named field of l.
func (b *RecordBuilder) PutNamed(l *layout.Layout, name, s string) *RecordBuilder {
	f, ok := l.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("layout %s has no field %q", l.Name(), name))
	}
	return b.PutField(f, s)
}

// Defaults writes "0" into every numeric field of l and zero bytes into every
// binary field, so a test only has to set the fields it cares about.
func (b *RecordBuilder) Defaults(l *layout.Layout) *RecordBuilder {
	for _, f := range l.Fields() {
		switch f.Kind {
		case layout.KindFixedDecimal, layout.KindInteger:
			b.PutField(f, "0")
		case layout.KindBinary:
			b.Put(int(f.Offset), string(make([]byte, f.Width)))
		}
	}
	return b
}

// Bytes returns the assembled record.
func (b *RecordBuilder) Bytes() []byte {
	return append([]byte(nil), b.buf...)
}

// Concat joins records into one file image.
func Concat(records ...[]byte) []byte {
	var out []byte
	for _, r := range records {
		out = append(out, r...)
	}
	return out
}
