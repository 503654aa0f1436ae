package record

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/d21d3q/goceos/internal/fieldreader"
	"github.com/d21d3q/goceos/internal/layout"
	"github.com/d21d3q/goceos/internal/testutil"
)

var (
	sampleTag    = layout.Tag{First: 18, Type: 230, Second: 18, Third: 20}
	sampleLayout = layout.MustNew("sample", sampleTag, 128,
		layout.Text("mode", 62, 1),
		layout.Decimal("temperature", 78, 8),
		layout.Integer("count", 86, 6),
		layout.Binary("flags", 92, 2),
		layout.Decimal("last", 120, 8),
	)
)

type mapResolver map[layout.Tag]Variant

func (m mapResolver) Lookup(tag layout.Tag) (Variant, error) {
	v, ok := m[tag]
	if !ok {
		return Variant{}, fmt.Errorf("%w: %s", ErrUnknownRecordType, tag)
	}
	return v, nil
}

func sampleResolver() mapResolver {
	return mapResolver{sampleTag: {Name: "sample", Layout: sampleLayout}}
}

func sampleRecord(length, declared int) *testutil.RecordBuilder {
	return testutil.NewRecord(7, sampleTag, length, declared).
		Put(62, "S").
		Put(78, "  12.345").
		Put(86, "000042").
		Put(92, "\x01\x02").
		Put(120, "-1.5E+01")
}

func TestDecodeAbsolute(t *testing.T) {
	buf := testutil.Concat([]byte("junk"), sampleRecord(128, 128).Bytes())
	r := fieldreader.NewBytes(buf)

	run := NewRun(Absolute(4))
	require.EqualValues(t, -1, run.Start())
	rec, err := run.Decode(r, sampleResolver(), Options{})
	require.NoError(t, err)
	require.Equal(t, StateDecoded, run.State())
	require.EqualValues(t, 4, run.Start())
	require.EqualValues(t, 4, rec.Start)
	require.Equal(t, "sample", rec.Variant)
	require.Equal(t, Descriptor{Sequence: 7, Tag: sampleTag, Length: 128, SubheaderLength: 12}, rec.Descriptor)

	mode, _ := rec.Fields.Get("mode")
	require.Equal(t, "S", mode)
	temp, _ := rec.Fields.Get("temperature")
	require.InDelta(t, 12.345, temp, 1e-12)
	count, _ := rec.Fields.Get("count")
	require.Equal(t, int64(42), count)
	flags, _ := rec.Fields.Get("flags")
	require.Equal(t, uint64(0x0102), flags)
	last, _ := rec.Fields.Get("last")
	require.InDelta(t, -15.0, last, 1e-12)
	require.EqualValues(t, 132, r.Pos())

	var keys []string
	for el := rec.Fields.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Key)
	}
	require.Equal(t, []string{"mode", "temperature", "count", "flags", "last"}, keys)
}

func TestDecodeSequential(t *testing.T) {
	buf := testutil.Concat(sampleRecord(128, 128).Bytes(), sampleRecord(128, 128).Put(62, "N").Bytes())
	r := fieldreader.NewBytes(buf)

	require.True(t, Sequential().IsSequential())
	require.False(t, Absolute(0).IsSequential())
	first, err := Decode(r, Sequential(), sampleResolver(), Options{})
	require.NoError(t, err)
	second, err := Decode(r, Sequential(), sampleResolver(), Options{})
	require.NoError(t, err)
	require.EqualValues(t, 0, first.Start)
	require.EqualValues(t, 128, second.Start)
	mode, _ := second.Fields.Get("mode")
	require.Equal(t, "N", mode)
	require.Equal(t, r.Size(), r.Pos())
}

func TestDecodeDeterministic(t *testing.T) {
	buf := sampleRecord(128, 128).Bytes()
	r := fieldreader.NewBytes(buf)
	a, err := Decode(r, Absolute(0), sampleResolver(), Options{})
	require.NoError(t, err)
	b, err := Decode(r, Absolute(0), sampleResolver(), Options{})
	require.NoError(t, err)
	for el := a.Fields.Front(); el != nil; el = el.Next() {
		other, ok := b.Fields.Get(el.Key)
		require.True(t, ok)
		require.Equal(t, el.Value, other, el.Key)
	}
}

func TestDecodeMalformedField(t *testing.T) {
	buf := sampleRecord(128, 128).Put(78, "ABCDEFGH").Bytes()
	run := NewRun(Absolute(0))
	rec, err := run.Decode(fieldreader.NewBytes(buf), sampleResolver(), Options{})
	require.Nil(t, rec)
	require.ErrorIs(t, err, fieldreader.ErrMalformedNumeric)
	require.Equal(t, StateFailed, run.State())
	require.Equal(t, err, run.Err())

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "sample", fe.Variant)
	require.Equal(t, "temperature", fe.Field)
	require.EqualValues(t, 78, fe.Offset)

	_, err = run.Decode(fieldreader.NewBytes(buf), sampleResolver(), Options{})
	require.ErrorIs(t, err, ErrAlreadyDecoded)
}

func TestDecodeTruncatedFinalField(t *testing.T) {
	buf := sampleRecord(124, 128).Bytes()
	rec, err := Decode(fieldreader.NewBytes(buf), Absolute(0), sampleResolver(), Options{})
	require.Nil(t, rec)
	require.ErrorIs(t, err, fieldreader.ErrTruncatedRead)
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "last", fe.Field)
}

func TestDecodeRecordLengthBoundary(t *testing.T) {
	// "last" ends exactly at 128.
	_, err := Decode(fieldreader.NewBytes(sampleRecord(128, 128).Bytes()), Absolute(0), sampleResolver(), Options{})
	require.NoError(t, err)

	// Header declares one byte less than the layout needs.
	_, err = Decode(fieldreader.NewBytes(sampleRecord(128, 127).Bytes()), Absolute(0), sampleResolver(), Options{})
	require.ErrorIs(t, err, fieldreader.ErrOutOfBounds)

	rec, err := Decode(fieldreader.NewBytes(sampleRecord(128, 127).Bytes()), Absolute(0), sampleResolver(), Options{Permissive: true})
	require.NoError(t, err)
	require.EqualValues(t, 127, rec.Descriptor.Length)
}

func TestDecodeUnknownType(t *testing.T) {
	buf := testutil.NewRecord(1, layout.Tag{First: 1, Type: 1, Second: 1, Third: 1}, 128, 128).Bytes()
	run := NewRun(Absolute(0))
	_, err := run.Decode(fieldreader.NewBytes(buf), sampleResolver(), Options{})
	require.ErrorIs(t, err, ErrUnknownRecordType)
	require.Equal(t, StateFailed, run.State())
}

func TestDecodeStartOutOfBounds(t *testing.T) {
	_, err := Decode(fieldreader.NewBytes(make([]byte, 10)), Absolute(11), sampleResolver(), Options{})
	require.ErrorIs(t, err, fieldreader.ErrOutOfBounds)
}

func TestDecodeInvalidHeaderLength(t *testing.T) {
	buf := testutil.NewRecord(1, sampleTag, 128, 4).Bytes()
	_, err := Decode(fieldreader.NewBytes(buf), Absolute(0), sampleResolver(), Options{})
	require.ErrorIs(t, err, ErrInvalidRecordLength)
}

func TestDecodeTruncatedHeader(t *testing.T) {
	buf := testutil.NewRecord(1, sampleTag, 128, 128).Bytes()[:6]
	_, err := Decode(fieldreader.NewBytes(buf), Absolute(0), sampleResolver(), Options{})
	require.ErrorIs(t, err, fieldreader.ErrTruncatedRead)
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, "header", fe.Variant)
	require.Equal(t, "second_subtype", fe.Field)
}

func TestCustomPayloadMustPopulateLayout(t *testing.T) {
	resolver := mapResolver{sampleTag: {
		Name:   "lazy",
		Layout: sampleLayout,
		Payload: func(c *Cursor) error {
			if c.Start() != 0 || c.Descriptor().Tag != sampleTag {
				return fmt.Errorf("cursor at %d for %s", c.Start(), c.Descriptor().Tag)
			}
			f, _ := c.Layout().Lookup("mode")
			_, err := c.Read(f)
			return err
		},
	}}
	_, err := Decode(fieldreader.NewBytes(sampleRecord(128, 128).Bytes()), Absolute(0), resolver, Options{})
	require.ErrorIs(t, err, ErrIncompleteRecord)
}

func TestDecodeSourceEndsBeforeField(t *testing.T) {
	// The header declares 128 bytes but the source stops at 100, before "last".
	buf := sampleRecord(100, 128).Bytes()
	for _, opts := range []Options{{}, {Permissive: true}} {
		_, err := Decode(fieldreader.NewBytes(buf), Absolute(0), sampleResolver(), opts)
		require.ErrorIs(t, err, fieldreader.ErrTruncatedRead)
		require.NotErrorIs(t, err, fieldreader.ErrOutOfBounds)
		var fe *FieldError
		require.True(t, errors.As(err, &fe))
		require.Equal(t, "last", fe.Field)
		require.EqualValues(t, 120, fe.Offset)
	}
}

func TestDecodeBinaryKeepsHighBit(t *testing.T) {
	tag := layout.Tag{First: 1, Type: 2, Second: 3, Third: 4}
	wide := layout.MustNew("wide", tag, 20, layout.Binary("counter", 12, 8))
	buf := testutil.NewRecord(1, tag, 20, 20).Put(12, "\xff\x00\x00\x00\x00\x00\x00\x01").Bytes()

	rec, err := Decode(fieldreader.NewBytes(buf), Absolute(0), mapResolver{tag: {Name: "wide", Layout: wide}}, Options{})
	require.NoError(t, err)
	counter, _ := rec.Fields.Get("counter")
	require.Equal(t, uint64(0xff00000000000001), counter)
}
