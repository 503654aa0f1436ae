// Package ceos decodes CEOS satellite product records (leader, trailer,
// ancillary and image file descriptor records) from a random-access byte
// source into typed field values.
package ceos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/sirupsen/logrus"

	"github.com/d21d3q/goceos/internal/fieldreader"
	"github.com/d21d3q/goceos/internal/layout"
	"github.com/d21d3q/goceos/internal/metrics"
	"github.com/d21d3q/goceos/internal/record"
	"github.com/d21d3q/goceos/internal/registry"
	_ "github.com/d21d3q/goceos/internal/variant/filedesc" // register variants
	_ "github.com/d21d3q/goceos/internal/variant/prism"    // register variants
)

var (
	ErrOutOfBounds         = fieldreader.ErrOutOfBounds
	ErrTruncatedRead       = fieldreader.ErrTruncatedRead
	ErrMalformedNumeric    = fieldreader.ErrMalformedNumeric
	ErrUnknownRecordType   = record.ErrUnknownRecordType
	ErrInvalidRecordLength = record.ErrInvalidRecordLength
	ErrInvalidLayout       = layout.ErrInvalidLayout
)

type (
	// Reader is a cursor over a byte source, shared by sequential decodes.
	Reader = fieldreader.Reader
	// Origin selects where a record starts.
	Origin = record.Origin
	// Descriptor is the common record header.
	Descriptor = record.Descriptor
	// Tag identifies a record type.
	Tag = layout.Tag
	// FieldError names the record type, field and offset of a failure.
	FieldError = record.FieldError
)

// NewReader wraps src without taking ownership of it.
func NewReader(src io.ReadSeeker) (*Reader, error) { return fieldreader.New(src) }

// Absolute starts a record at pos.
func Absolute(pos int64) Origin { return record.Absolute(pos) }

// Sequential starts a record at the reader's current position.
func Sequential() Origin { return record.Sequential() }

// Record is a decoded record, independent of the source it was read from.
type Record struct {
	Variant    string
	Start      int64
	Descriptor Descriptor
	fields     *orderedmap.OrderedMap[string, any]
}

// Keys returns the field names in layout order.
func (r Record) Keys() []string {
	if r.fields == nil {
		return nil
	}
	keys := make([]string, 0, r.fields.Len())
	for el := r.fields.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Key)
	}
	return keys
}

// Map returns a copy of the fields.
func (r Record) Map() map[string]any {
	out := make(map[string]any)
	if r.fields == nil {
		return out
	}
	for el := r.fields.Front(); el != nil; el = el.Next() {
		out[el.Key] = el.Value
	}
	return out
}

// String renders the record as indented JSON with fields in layout order.
func (r Record) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `{"variant":%q,"start":%d,"sequence":%d,"tag":%q,"length":%d,"fields":{`,
		r.Variant, r.Start, r.Descriptor.Sequence, r.Descriptor.Tag.String(), r.Descriptor.Length)
	for i, key := range r.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		v, _ := r.fields.Get(key)
		k, _ := json.Marshal(key)
		val, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("variant: %s start:%d (marshal error: %v)", r.Variant, r.Start, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteString("}}")
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return fmt.Sprintf("variant: %s start:%d (marshal error: %v)", r.Variant, r.Start, err)
	}
	return out.String()
}

// Decoder decodes records against a set of registered record types. It holds
// no cursor state and may be shared between goroutines that each own a Reader.
type Decoder struct {
	registry *registry.Registry
	opts     record.Options
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
}

// NewDecoder builds a decoder with the built-in record types plus any layout
// files named in opts.
func NewDecoder(opts Options) (*Decoder, error) {
	reg, ropts, err := opts.toInternal()
	if err != nil {
		return nil, err
	}
	d := &Decoder{registry: reg, opts: ropts, log: opts.Logger}
	if d.log == nil {
		d.log = logrus.StandardLogger()
	}
	if opts.Registerer != nil {
		m, err := metrics.New(opts.Registerer)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		d.metrics = m
	}
	return d, nil
}

// Variants lists the names of the record types the decoder knows.
func (d *Decoder) Variants() []string {
	vs := d.registry.Variants()
	names := make([]string, 0, len(vs))
	for _, v := range vs {
		names = append(names, v.Name)
	}
	return names
}

// Decode reads the record starting at the absolute offset start of src.
func (d *Decoder) Decode(src io.ReadSeeker, start int64) (*Record, error) {
	r, err := NewReader(src)
	if err != nil {
		return nil, err
	}
	return d.DecodeRecord(r, Absolute(start))
}

// DecodeRecord decodes one record from r. After success r stands at the end of
// the record; after failure its position is unspecified.
func (d *Decoder) DecodeRecord(r *Reader, origin Origin) (*Record, error) {
	rec, err := record.Decode(r, origin, d.registry, d.opts)
	if err != nil {
		d.metrics.Failed(err)
		d.log.WithError(err).WithField("origin", origin.String()).Debug("record decode failed")
		return nil, err
	}
	d.metrics.Decoded(rec.Variant)
	d.log.WithFields(logrus.Fields{
		"variant": rec.Variant,
		"start":   rec.Start,
		"length":  rec.Descriptor.Length,
		"fields":  rec.Fields.Len(),
	}).Debug("record decoded")
	return &Record{
		Variant:    rec.Variant,
		Start:      rec.Start,
		Descriptor: rec.Descriptor,
		fields:     rec.Fields,
	}, nil
}

// DecodeNext decodes the record at the current position of r.
func (d *Decoder) DecodeNext(r *Reader) (*Record, error) {
	return d.DecodeRecord(r, Sequential())
}

// DecodeAll decodes consecutive records from the start of src until the end
// of the source. It stops at the first failure and returns the records decoded
// so far together with the error; whether to abort or skip is the caller's
// decision.
func (d *Decoder) DecodeAll(ctx context.Context, src io.ReadSeeker) ([]*Record, error) {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind source: %w", err)
	}
	r, err := NewReader(src)
	if err != nil {
		return nil, err
	}
	var out []*Record
	for r.Pos() < r.Size() {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		rec, err := d.DecodeNext(r)
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}
