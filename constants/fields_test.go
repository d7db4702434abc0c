package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchema(t *testing.T) {
	base := Schema(false)
	require.Len(t, base, 13)
	assert.Equal(t, FieldInspectionNo, base[0])
	assert.Equal(t, FieldVendor, base[12])

	extended := Schema(true)
	require.Len(t, extended, 14)
	assert.Equal(t, base, extended[:13])
	assert.Equal(t, FieldQualityDigit, extended[13])
}

func TestSchema_ReturnsCopy(t *testing.T) {
	a := Schema(false)
	a[0] = "mutated"
	assert.Equal(t, FieldInspectionNo, Schema(false)[0])
}

func TestSchemaDefaults(t *testing.T) {
	base := SchemaDefaults(false)
	assert.Equal(t, map[string]string{FieldInspectionSeq: DefaultInspectionSeq}, base)

	extended := SchemaDefaults(true)
	assert.Equal(t, DefaultInspectionSeq, extended[FieldInspectionSeq])
	assert.Equal(t, DefaultQualityDigit, extended[FieldQualityDigit])
}

func TestMapExtToFormat(t *testing.T) {
	tests := []struct {
		ext      string
		expected string
	}{
		{ext: ".pdf", expected: FormatPDF},
		{ext: "PDF", expected: FormatPDF},
		{ext: ".TXT", expected: FormatText},
		{ext: "txt", expected: FormatText},
		{ext: ".csv", expected: ""},
		{ext: "", expected: ""},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapExtToFormat(tt.ext))
		})
	}
}

func TestNormalizeExt(t *testing.T) {
	assert.Equal(t, "pdf", NormalizeExt(".PDF"))
	assert.Equal(t, "txt", NormalizeExt("txt"))
	assert.Equal(t, "", NormalizeExt("."))
}
