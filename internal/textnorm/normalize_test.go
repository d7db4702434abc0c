package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "empty input",
			in:       "",
			expected: "",
		},
		{
			name:     "tabs collapse to single space",
			in:       "Inspection No.\t\tFIN-123",
			expected: "Inspection No. FIN-123",
		},
		{
			name:     "carriage returns collapse",
			in:       "line one\r\nline two",
			expected: "line one \nline two",
		},
		{
			name:     "mixed tab and CR run is one space",
			in:       "a\t\r\tb",
			expected: "a b",
		},
		{
			name:     "soft hyphen stripped",
			in:       "Tech­nology",
			expected: "Technology",
		},
		{
			name:     "newlines preserved",
			in:       "a\nb\n\nc",
			expected: "a\nb\n\nc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.in))
		})
	}
}

func TestCanonicalize(t *testing.T) {
	ct := Canonicalize("  Inspection No. FIN-123  \n\n\t\n  PO Date Jan 30, 24\n")

	require.Len(t, ct.Lines, 2)
	assert.Equal(t, "Inspection No. FIN-123", ct.Lines[0])
	assert.Equal(t, "PO Date Jan 30, 24", ct.Lines[1])
	assert.Contains(t, ct.Full, "\n")
	assert.False(t, ct.Empty())
}

func TestCanonicalize_Empty(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty string", in: ""},
		{name: "whitespace only", in: "   \n\t\n \r\n"},
		{name: "soft hyphens only", in: "­\n­"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Canonicalize(tt.in).Empty())
		})
	}
}
