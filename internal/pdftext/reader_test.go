package pdftext

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractBytes_NotAPDF(t *testing.T) {
	r := NewReader(nil)

	tests := []struct {
		name string
		data []byte
	}{
		{name: "plain text", data: []byte("just some text")},
		{name: "empty", data: nil},
		{name: "header only", data: []byte("%PDF-1.4 fake pdf content")},
		{name: "truncated header", data: []byte("%PD")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.ExtractBytes(context.Background(), "bad.pdf", tt.data)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "PDF_ERROR")
		})
	}
}

func TestExtractFile_Missing(t *testing.T) {
	r := NewReader(nil)

	_, err := r.ExtractFile(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read pdf")
}

func TestNewReader_NilLogger(t *testing.T) {
	assert.NotNil(t, NewReader(nil))
}
