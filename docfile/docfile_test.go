package docfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_HasExtension(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"source/index.rst", true},
		{"source/reference/page.txt", true},
		{"source/INDEX.RST", true},
		{"source/images/logo.png", false},
		{"Makefile", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HasExtension(tt.path, DefaultExtensions), tt.path)
	}
}

func Test_HasExtension_WithoutDot(t *testing.T) {
	assert.True(t, HasExtension("a/b.yaml", []string{"yaml"}))
	assert.False(t, HasExtension("a/b.yaml", nil))
}

func Test_DetectFormat(t *testing.T) {
	assert.Equal(t, "reStructuredText", DetectFormat("source/index.rst"))
	assert.Equal(t, "reStructuredText", DetectFormat("source/page.TXT"))
	assert.Equal(t, "Code sample", DetectFormat("source/includes/example.py"))
	assert.Equal(t, "Unknown", DetectFormat("source/data.xyz"))
}

func Test_IsBinaryContent_TextFile(t *testing.T) {
	assert.False(t, IsBinaryContent([]byte(".. include:: /includes/foo.rst\n")))
}

func Test_IsBinaryContent_BinaryFile(t *testing.T) {
	assert.True(t, IsBinaryContent([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00}))
}

func Test_IsBinaryContent_EmptyFile(t *testing.T) {
	assert.False(t, IsBinaryContent(nil))
}

func Test_IsBinaryContent_NullAfterWindow(t *testing.T) {
	content := make([]byte, 600)
	for i := range content {
		content[i] = 'a'
	}
	content[550] = 0x00
	assert.False(t, IsBinaryContent(content))
}
