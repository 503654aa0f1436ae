package fieldreader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

var (
	ErrOutOfBounds      = errors.New("position out of bounds")
	ErrTruncatedRead    = errors.New("truncated read")
	ErrMalformedNumeric = errors.New("malformed numeric field")
	ErrInvalidWidth     = errors.New("invalid field width")
)

// Reader is a cursor over a random-access byte source that reads fixed-width
// CEOS fields. The source is borrowed: Reader never closes it. A Reader is not
// safe for concurrent use.
type Reader struct {
	src  io.ReadSeeker
	size int64
	pos  int64
	text *encoding.Decoder
}

// New wraps src. The cursor starts at the source's current position.
func New(src io.ReadSeeker) (*Reader, error) {
	cur, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("query source position: %w", err)
	}
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("query source size: %w", err)
	}
	if _, err := src.Seek(cur, io.SeekStart); err != nil {
		return nil, fmt.Errorf("restore source position: %w", err)
	}
	return &Reader{
		src:  src,
		size: size,
		pos:  cur,
		text: charmap.ISO8859_1.NewDecoder(),
	}, nil
}

// NewBytes returns a Reader over an in-memory buffer.
func NewBytes(b []byte) *Reader {
	return &Reader{
		src:  bytes.NewReader(b),
		size: int64(len(b)),
		text: charmap.ISO8859_1.NewDecoder(),
	}
}

// Pos returns the absolute cursor position.
func (r *Reader) Pos() int64 { return r.pos }

// Size returns the length of the underlying source in bytes.
func (r *Reader) Size() int64 { return r.size }

// Seek moves the cursor to an absolute position. Seeking to exactly Size() is
// allowed; any read from there fails with ErrTruncatedRead.
func (r *Reader) Seek(pos int64) error {
	if pos < 0 || pos > r.size {
		return fmt.Errorf("%w: seek to %d, source has %d bytes", ErrOutOfBounds, pos, r.size)
	}
	if _, err := r.src.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("seek to %d: %w", pos, err)
	}
	r.pos = pos
	return nil
}

// ReadText reads an A<n> field. The text is returned verbatim, blanks included.
func (r *Reader) ReadText(width int) (string, error) {
	raw, err := r.read(width)
	if err != nil {
		return "", err
	}
	decoded, err := r.text.Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decode text at %d: %w", r.pos-int64(width), err)
	}
	return string(decoded), nil
}

// ReadFixedDecimal reads an F<n> field.
func (r *Reader) ReadFixedDecimal(width int) (float64, error) {
	raw, err := r.ReadText(width)
	if err != nil {
		return 0, err
	}
	return ParseFixedDecimal(raw)
}

// ReadInteger reads an I<n> field.
func (r *Reader) ReadInteger(width int) (int64, error) {
	raw, err := r.ReadText(width)
	if err != nil {
		return 0, err
	}
	return ParseInteger(raw)
}

// ReadBinary reads a big-endian unsigned B<n> field of 1, 2, 4 or 8 bytes.
func (r *Reader) ReadBinary(width int) (uint64, error) {
	switch width {
	case 1, 2, 4, 8:
	default:
		return 0, fmt.Errorf("%w: binary field of %d bytes", ErrInvalidWidth, width)
	}
	raw, err := r.read(width)
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint64(raw[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(raw)), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(raw)), nil
	default:
		return binary.BigEndian.Uint64(raw), nil
	}
}

func (r *Reader) read(width int) ([]byte, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}
	if avail := r.size - r.pos; avail < int64(width) {
		return nil, fmt.Errorf("%w: need %d bytes at %d, %d available", ErrTruncatedRead, width, r.pos, avail)
	}
	buf := make([]byte, width)
	n, err := io.ReadFull(r.src, buf)
	r.pos += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrTruncatedRead, width, n)
		}
		return nil, err
	}
	return buf, nil
}

// ParseFixedDecimal parses the text of an F<n> field. Surrounding blanks are
// ignored; anything other than an optionally signed decimal with an optional
// exponent is rejected.
func ParseFixedDecimal(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if !isDecimal(s) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumeric, raw)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrMalformedNumeric, raw, err)
	}
	return v, nil
}

// ParseInteger parses the text of an I<n> field.
func ParseInteger(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumeric, raw)
	}
	return v, nil
}

func isDecimal(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for i < len(s) && isDigit(s[i]) {
			i++
			exp++
		}
		if exp == 0 {
			return false
		}
	}
	return i == len(s)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
