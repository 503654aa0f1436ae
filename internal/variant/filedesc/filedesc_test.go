package filedesc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d21d3q/goceos/internal/fieldreader"
	"github.com/d21d3q/goceos/internal/layout"
	"github.com/d21d3q/goceos/internal/record"
	"github.com/d21d3q/goceos/internal/registry"
	"github.com/d21d3q/goceos/internal/testutil"
)

func TestLeaderFileDescriptor(t *testing.T) {
	buf := testutil.NewRecord(1, LeaderTag, descriptorLength, descriptorLength).
		Defaults(Leader).
		PutNamed(Leader, "ascii_flag", "A").
		PutNamed(Leader, "file_id", "PSM_LED_SAMPLE").
		PutNamed(Leader, "dataset_summary_records", "1").
		PutNamed(Leader, "dataset_summary_record_length", "4096").
		PutNamed(Leader, "platform_position_record_length", "4680").
		Bytes()

	rec, err := record.Decode(fieldreader.NewBytes(buf), record.Absolute(0), registry.Default(), record.Options{})
	require.NoError(t, err)
	assert.Equal(t, "leader", rec.Variant)

	flag, _ := rec.Fields.Get("ascii_flag")
	assert.Equal(t, " A", flag)
	fileID, _ := rec.Fields.Get("file_id")
	assert.Equal(t, "  PSM_LED_SAMPLE", fileID)
	n, _ := rec.Fields.Get("dataset_summary_records")
	assert.Equal(t, int64(1), n)
	l, _ := rec.Fields.Get("platform_position_record_length")
	assert.Equal(t, int64(4680), l)
}

func TestTrailerBlankCountFails(t *testing.T) {
	buf := testutil.NewRecord(9, TrailerTag, descriptorLength, descriptorLength).
		Defaults(Trailer).
		Put(192, "      ").
		Bytes()
	_, err := record.Decode(fieldreader.NewBytes(buf), record.Absolute(0), registry.Default(), record.Options{})
	require.ErrorIs(t, err, fieldreader.ErrMalformedNumeric)
	assert.Contains(t, err.Error(), "trailer: field histogram_records at offset 192")
}

func TestCountPairs(t *testing.T) {
	pairs := countPairs("a", "b")
	assert.Equal(t, []layout.FieldSpec{
		layout.Integer("a_records", 180, 6),
		layout.Integer("a_record_length", 186, 6),
		layout.Integer("b_records", 192, 6),
		layout.Integer("b_record_length", 198, 6),
	}, pairs)
}

func TestImageDescriptorFieldsFitBeforeSensorLocators(t *testing.T) {
	for _, f := range ImageDescriptorFields() {
		assert.LessOrEqual(t, f.End(), int64(ImageDescriptorEnd), f.Name)
	}
}
