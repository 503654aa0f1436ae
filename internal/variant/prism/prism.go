// Package prism registers the record variants specific to the ALOS PRISM
// sensor.
package prism

import (
	"github.com/d21d3q/goceos/internal/layout"
	"github.com/d21d3q/goceos/internal/record"
	"github.com/d21d3q/goceos/internal/registry"
	"github.com/d21d3q/goceos/internal/variant/filedesc"
)

var (
	Ancillary2Tag          = layout.Tag{First: 18, Type: 230, Second: 18, Third: 20}
	ImageFileDescriptorTag = layout.Tag{First: 50, Type: 192, Second: 18, Third: 18}
)

const (
	ancillary2Length          = 8192
	imageFileDescriptorLength = 392
)

// Ancillary2 is the PRISM ancillary 2 record: sensor temperatures and the
// absolute calibration coefficients.
var Ancillary2 = layout.MustNew("prism_ancillary2", Ancillary2Tag, ancillary2Length,
	layout.Text("compression_mode", 62, 1),
	layout.Decimal("ccd_temperature", 78, 8),
	layout.Decimal("signal_processing_section_temperature", 86, 8),
	layout.Decimal("absolute_calibration_gain", 2702, 8),
	layout.Decimal("absolute_calibration_offset", 2710, 8),
)

var locatorFields = []layout.FieldSpec{
	layout.Text("aux_data_locator", filedesc.ImageDescriptorEnd, 8),
	layout.Text("quality_information_locator", filedesc.ImageDescriptorEnd+8, 8),
	layout.Text("extraction_start_point_locator", filedesc.ImageDescriptorEnd+16, 8),
}

// ImageFileDescriptor is the common image file descriptor followed by the PRISM
// locators of bytes 341-364.
var ImageFileDescriptor = mustExtend(filedesc.ImageDescriptor.Extend(
	"prism_image_file_descriptor", ImageFileDescriptorTag, imageFileDescriptorLength, locatorFields...,
))

func mustExtend(l *layout.Layout, err error) *layout.Layout {
	if err != nil {
		panic(err)
	}
	return l
}

func init() {
	registry.MustRegister(record.Variant{Name: "prism_ancillary2", Layout: Ancillary2})
	registry.MustRegister(record.Variant{Name: "prism_image_file_descriptor", Layout: ImageFileDescriptor})
}
