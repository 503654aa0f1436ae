package filedesc

import "github.com/d21d3q/goceos/internal/layout"

// ImageDescriptorEnd is where sensor-specific locator fields of an image file
// descriptor begin.
const ImageDescriptorEnd = 340

var imageFields = []layout.FieldSpec{
	layout.Integer("image_records", 180, 6),
	layout.Integer("image_record_length", 186, 6),
	layout.Integer("bits_per_pixel", 216, 4),
	layout.Integer("pixels_per_data_group", 220, 4),
	layout.Integer("bytes_per_data_group", 224, 4),
	layout.Text("sample_justification", 228, 4),
	layout.Integer("bands", 232, 4),
	layout.Integer("lines_per_band", 236, 8),
	layout.Integer("left_border_pixels", 244, 4),
	layout.Integer("pixels_per_line", 248, 8),
	layout.Integer("right_border_pixels", 256, 4),
	layout.Integer("top_border_lines", 260, 4),
	layout.Integer("bottom_border_lines", 264, 4),
	layout.Text("interleaving", 268, 4),
	layout.Integer("records_per_line", 272, 2),
	layout.Integer("records_per_multichannel_line", 274, 2),
	layout.Integer("prefix_bytes", 276, 4),
	layout.Integer("image_data_bytes", 280, 8),
	layout.Integer("suffix_bytes", 288, 4),
	layout.Text("line_number_locator", 296, 8),
	layout.Text("band_number_locator", 304, 8),
	layout.Text("scan_start_time_locator", 312, 8),
	layout.Text("left_dummy_pixel_locator", 320, 8),
	layout.Text("right_dummy_pixel_locator", 328, 8),
	layout.Text("dummy_pixel_indicator", 336, 4),
}

// ImageDescriptor is the sensor-independent image file descriptor table. It is
// not registered itself; sensor packages extend it with their locators.
var ImageDescriptor = layout.MustNew("image_file_descriptor", layout.Tag{}, ImageDescriptorEnd,
	ImageDescriptorFields()...,
)

// ImageDescriptorFields returns the sensor-independent part of an image file
// descriptor: the common file descriptor fields followed by the image geometry
// and prefix locators.
func ImageDescriptorFields() []layout.FieldSpec {
	return append(DescriptorFields(), imageFields...)
}
