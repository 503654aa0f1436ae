// Package filedesc holds the file descriptor records shared by every CEOS
// product: the leader and trailer file descriptors, and the common part of the
// image file descriptor that sensor packages extend.
package filedesc

import (
	"github.com/d21d3q/goceos/internal/layout"
	"github.com/d21d3q/goceos/internal/record"
	"github.com/d21d3q/goceos/internal/registry"
)

var (
	LeaderTag  = layout.Tag{First: 11, Type: 192, Second: 18, Third: 18}
	TrailerTag = layout.Tag{First: 63, Type: 192, Second: 18, Third: 18}
)

const descriptorLength = 720

// descriptorFields is the first 112 bytes after the header, common to all file
// descriptor records.
var descriptorFields = []layout.FieldSpec{
	layout.Text("ascii_flag", 12, 2),
	layout.Text("format_document", 16, 12),
	layout.Text("format_document_revision", 28, 2),
	layout.Text("record_format_revision", 30, 2),
	layout.Text("software_version", 32, 12),
	layout.Integer("file_number", 44, 4),
	layout.Text("file_id", 48, 16),
	layout.Text("sequence_location_flag", 64, 4),
	layout.Integer("sequence_location", 68, 8),
	layout.Integer("sequence_field_length", 76, 4),
	layout.Text("code_location_flag", 80, 4),
	layout.Integer("code_location", 84, 8),
	layout.Integer("code_field_length", 92, 4),
	layout.Text("length_location_flag", 96, 4),
	layout.Integer("length_location", 100, 8),
	layout.Integer("length_field_length", 108, 4),
}

// DescriptorFields returns a copy of the common file descriptor table.
func DescriptorFields() []layout.FieldSpec {
	return append([]layout.FieldSpec(nil), descriptorFields...)
}

// countPairs builds "<name>_records"/"<name>_record_length" I6 pairs from 180.
func countPairs(names ...string) []layout.FieldSpec {
	out := make([]layout.FieldSpec, 0, 2*len(names))
	offset := int64(180)
	for _, n := range names {
		out = append(out,
			layout.Integer(n+"_records", offset, 6),
			layout.Integer(n+"_record_length", offset+6, 6),
		)
		offset += 12
	}
	return out
}

var (
	Leader = layout.MustNew("leader_file_descriptor", LeaderTag, descriptorLength,
		append(DescriptorFields(), countPairs(
			"dataset_summary",
			"map_projection",
			"platform_position",
			"attitude",
			"radiometric",
			"radiometric_compensation",
			"data_quality",
			"histogram",
			"range_spectra",
			"dem_descriptor",
		)...)...,
	)

	Trailer = layout.MustNew("trailer_file_descriptor", TrailerTag, descriptorLength,
		append(DescriptorFields(), countPairs(
			"data_quality",
			"histogram",
			"ancillary",
		)...)...,
	)
)

func init() {
	registry.MustRegister(record.Variant{Name: "leader", Layout: Leader})
	registry.MustRegister(record.Variant{Name: "trailer", Layout: Trailer})
}
