package layout

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// A layout file lists record tables in YAML:
//
//	layouts:
//	  - name: prism_ancillary2
//	    tag: [18, 230, 18, 20]
//	    length: 8192
//	    fields:
//	      - {name: compression_mode, offset: 62, format: A1}
//	      - {name: ccd_temperature, offset: 78, format: F8}
type fileSpec struct {
	Layouts []layoutSpec `yaml:"layouts"`
}

type layoutSpec struct {
	Name   string      `yaml:"name"`
	Tag    []int       `yaml:"tag"`
	Length int64       `yaml:"length"`
	Fields []fieldSpec `yaml:"fields"`
}

type fieldSpec struct {
	Name   string `yaml:"name"`
	Offset int64  `yaml:"offset"`
	Format string `yaml:"format"`
}

// LoadFile reads layouts from a YAML file.
func LoadFile(path string, permissive bool) ([]*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout file: %w", err)
	}
	layouts, err := Parse(data, permissive)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return layouts, nil
}

// Parse decodes a YAML layout document.
func Parse(data []byte, permissive bool) ([]*Layout, error) {
	var spec fileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse layout file: %w", err)
	}
	out := make([]*Layout, 0, len(spec.Layouts))
	for _, ls := range spec.Layouts {
		tag, err := parseTag(ls.Tag)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidLayout, ls.Name, err)
		}
		fields := make([]FieldSpec, 0, len(ls.Fields))
		for _, fs := range ls.Fields {
			kind, width, err := ParseFormat(fs.Format)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: field %q: %v", ErrInvalidLayout, ls.Name, fs.Name, err)
			}
			fields = append(fields, FieldSpec{Name: fs.Name, Offset: fs.Offset, Width: width, Kind: kind})
		}
		var l *Layout
		if permissive {
			l, err = NewPermissive(ls.Name, tag, ls.Length, fields...)
		} else {
			l, err = New(ls.Name, tag, ls.Length, fields...)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// ParseFormat splits a CEOS format descriptor such as "A16" or "F8".
func ParseFormat(s string) (Kind, int, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return 0, 0, fmt.Errorf("format %q too short", s)
	}
	var kind Kind
	switch strings.ToUpper(s[:1]) {
	case "A":
		kind = KindText
	case "F", "E":
		kind = KindFixedDecimal
	case "I":
		kind = KindInteger
	case "B":
		kind = KindBinary
	default:
		return 0, 0, fmt.Errorf("unknown format %q", s)
	}
	width, err := strconv.Atoi(s[1:])
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("format %q has invalid width", s)
	}
	return kind, width, nil
}

func parseTag(codes []int) (Tag, error) {
	if len(codes) != 4 {
		return Tag{}, fmt.Errorf("tag needs 4 codes, got %d", len(codes))
	}
	var b [4]byte
	for i, c := range codes {
		if c < 0 || c > 255 {
			return Tag{}, fmt.Errorf("tag code %d out of range", c)
		}
		b[i] = byte(c)
	}
	return Tag{First: b[0], Type: b[1], Second: b[2], Third: b[3]}, nil
}
