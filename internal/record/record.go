package record

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/d21d3q/goceos/internal/fieldreader"
	"github.com/d21d3q/goceos/internal/layout"
)

// Origin says where a record starts: at an absolute offset, or wherever the
// reader's cursor currently stands.
type Origin struct {
	pos        int64
	sequential bool
}

func Absolute(pos int64) Origin { return Origin{pos: pos} }

func Sequential() Origin { return Origin{sequential: true} }

func (o Origin) IsSequential() bool { return o.sequential }

func (o Origin) String() string {
	if o.sequential {
		return "sequential"
	}
	return fmt.Sprintf("absolute(%d)", o.pos)
}

// PayloadFunc reads the record-specific fields through the cursor.
type PayloadFunc func(c *Cursor) error

// Variant binds a record type to its field table and payload step. A nil
// Payload reads every field of Layout in declared order.
type Variant struct {
	Name    string
	Layout  *layout.Layout
	Payload PayloadFunc
}

// Resolver maps a header tag to its variant.
type Resolver interface {
	Lookup(layout.Tag) (Variant, error)
}

// Decoded is a fully decoded record. It holds no reference to the source.
type Decoded struct {
	Start      int64
	Descriptor Descriptor
	Variant    string
	Fields     *orderedmap.OrderedMap[string, any]
}

// Cursor addresses fields relative to the start of the record being decoded.
// Every read seeks to start+offset first, so a field never depends on where the
// previous read stopped.
type Cursor struct {
	r          *fieldreader.Reader
	start      int64
	desc       Descriptor
	variant    string
	table      *layout.Layout
	permissive bool
	fields     *orderedmap.OrderedMap[string, any]
}

func (c *Cursor) Start() int64           { return c.start }
func (c *Cursor) Descriptor() Descriptor { return c.desc }
func (c *Cursor) Layout() *layout.Layout { return c.table }

// AbsolutePosition converts a record-relative offset.
func (c *Cursor) AbsolutePosition(offset int64) int64 { return c.start + offset }

// Read decodes one field and stores it under the field's name.
func (c *Cursor) Read(f layout.FieldSpec) (any, error) {
	pos := c.AbsolutePosition(f.Offset)
	if !c.permissive && f.End() > c.desc.Length {
		return nil, c.fail(f, pos, fmt.Errorf("%w: field ends at %d, record length is %d",
			fieldreader.ErrOutOfBounds, f.End(), c.desc.Length))
	}
	if pos > c.r.Size() {
		// The header promised more bytes than the source holds.
		return nil, c.fail(f, pos, fmt.Errorf("%w: field starts at %d, source ends at %d",
			fieldreader.ErrTruncatedRead, pos, c.r.Size()))
	}
	if err := c.r.Seek(pos); err != nil {
		return nil, c.fail(f, pos, err)
	}
	var (
		v   any
		err error
	)
	switch f.Kind {
	case layout.KindText:
		v, err = c.r.ReadText(f.Width)
	case layout.KindFixedDecimal:
		v, err = c.r.ReadFixedDecimal(f.Width)
	case layout.KindInteger:
		v, err = c.r.ReadInteger(f.Width)
	case layout.KindBinary:
		v, err = c.r.ReadBinary(f.Width)
	default:
		err = fmt.Errorf("unsupported field kind %s", f.Kind)
	}
	if err != nil {
		return nil, c.fail(f, pos, err)
	}
	c.fields.Set(f.Name, v)
	return v, nil
}

// ReadAll reads fields in order and stops at the first failure.
func (c *Cursor) ReadAll(fields []layout.FieldSpec) error {
	for _, f := range fields {
		if _, err := c.Read(f); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cursor) fail(f layout.FieldSpec, pos int64, err error) error {
	return &FieldError{Variant: c.variant, Field: f.Name, Offset: pos, Err: err}
}

// State is the progress of one record decode.
type State int

const (
	StatePositioned State = iota
	StateDecoded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePositioned:
		return "positioned"
	case StateDecoded:
		return "decoded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Options tune a decode.
type Options struct {
	// Permissive skips the check that fields lie within the record length
	// declared in the header.
	Permissive bool
}

// Run drives one record from StatePositioned to StateDecoded or StateFailed.
type Run struct {
	origin Origin
	state  State
	err    error
	start  int64
}

func NewRun(origin Origin) *Run {
	return &Run{origin: origin, start: -1}
}

func (run *Run) State() State { return run.state }

// Err returns the failure recorded in StateFailed.
func (run *Run) Err() error { return run.err }

// Start returns the absolute start of the record, or -1 before it is known.
func (run *Run) Start() int64 { return run.start }

// Decode runs the skeleton: position, read the common header, resolve the
// variant and run its payload step. On success the cursor is left at the end
// of the record (clamped to the source size) so a Sequential decode continues
// with the next record. On failure no record is returned and the cursor
// position is unspecified.
func (run *Run) Decode(r *fieldreader.Reader, resolver Resolver, opts Options) (*Decoded, error) {
	if run.state != StatePositioned {
		return nil, ErrAlreadyDecoded
	}
	rec, err := run.decode(r, resolver, opts)
	if err != nil {
		run.state = StateFailed
		run.err = err
		return nil, err
	}
	run.state = StateDecoded
	return rec, nil
}

func (run *Run) decode(r *fieldreader.Reader, resolver Resolver, opts Options) (*Decoded, error) {
	start := r.Pos()
	if !run.origin.IsSequential() {
		start = run.origin.pos
		if err := r.Seek(start); err != nil {
			return nil, fmt.Errorf("position record: %w", err)
		}
	}
	run.start = start

	desc, err := ReadDescriptor(r)
	if err != nil {
		return nil, err
	}
	variant, err := resolver.Lookup(desc.Tag)
	if err != nil {
		return nil, fmt.Errorf("record at %d: %w", start, err)
	}
	c := &Cursor{
		r:          r,
		start:      start,
		desc:       desc,
		variant:    variant.Name,
		table:      variant.Layout,
		permissive: opts.Permissive || variant.Layout.Permissive(),
		fields:     orderedmap.NewOrderedMap[string, any](),
	}
	payload := variant.Payload
	if payload == nil {
		payload = ReadLayout
	}
	if err := payload(c); err != nil {
		return nil, err
	}
	for _, f := range variant.Layout.Fields() {
		if _, ok := c.fields.Get(f.Name); !ok {
			return nil, &FieldError{Variant: variant.Name, Field: f.Name, Offset: c.AbsolutePosition(f.Offset), Err: ErrIncompleteRecord}
		}
	}

	end := start + desc.Length
	if end > r.Size() {
		end = r.Size()
	}
	if err := r.Seek(end); err != nil {
		return nil, err
	}
	return &Decoded{
		Start:      start,
		Descriptor: desc,
		Variant:    variant.Name,
		Fields:     c.fields,
	}, nil
}

// ReadLayout is the default payload step.
func ReadLayout(c *Cursor) error {
	return c.ReadAll(c.table.Fields())
}

// Decode is a single-use Run.
func Decode(r *fieldreader.Reader, origin Origin, resolver Resolver, opts Options) (*Decoded, error) {
	return NewRun(origin).Decode(r, resolver, opts)
}
