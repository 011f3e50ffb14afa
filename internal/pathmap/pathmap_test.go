package pathmap

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/S-Muro0526/wasabi/internal/errors"
)

func TestBase(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", ""},
		{"a/b/", "a/b"},
		{"a/b", "a"},
		{"a", ""},
		{"a/", "a"},
		{"a/b//", "a/b"},
		{"/", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Base(tt.prefix), "prefix %q", tt.prefix)
	}
}

func TestLocalPath(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		prefix   string
		destRoot string
		want     string
	}{
		{
			name:     "prefix with trailing separator is stripped",
			key:      "a/b/c/d.txt",
			prefix:   "a/b/",
			destRoot: "Download",
			want:     filepath.Join("Download", "c", "d.txt"),
		},
		{
			name:     "empty prefix keeps full key",
			key:      "a/b/c/d.txt",
			prefix:   "",
			destRoot: "Download",
			want:     filepath.Join("Download", "a", "b", "c", "d.txt"),
		},
		{
			name:     "prefix without trailing separator keeps last segment",
			key:      "a/b/c/d.txt",
			prefix:   "a/b",
			destRoot: "Download",
			want:     filepath.Join("Download", "b", "c", "d.txt"),
		},
		{
			name:     "single segment prefix without separator",
			key:      "reports/2024.csv",
			prefix:   "reports",
			destRoot: "out",
			want:     filepath.Join("out", "reports", "2024.csv"),
		},
		{
			name:     "partial name prefix matches sibling directories",
			key:      "a/bc/x.txt",
			prefix:   "a/b",
			destRoot: "out",
			want:     filepath.Join("out", "bc", "x.txt"),
		},
		{
			name:     "redundant separators are cleaned",
			key:      "a/b//c/./d.txt",
			prefix:   "a/b/",
			destRoot: "out",
			want:     filepath.Join("out", "c", "d.txt"),
		},
		{
			name:     "absolute destination root",
			key:      "x/y.bin",
			prefix:   "x/",
			destRoot: "/tmp/restore",
			want:     filepath.Join("/tmp/restore", "y.bin"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LocalPath(tt.key, tt.prefix, tt.destRoot)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalPath_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		prefix string
	}{
		{"parent traversal", "a/../../etc/passwd", ""},
		{"traversal below prefix", "a/b/../../../x", "a/b/"},
		{"absolute key", "/etc/passwd", ""},
		{"key outside prefix", "z/file.txt", "a/b/"},
		{"key equal to prefix directory", "a/b/", "a/b/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LocalPath(tt.key, tt.prefix, "Download")
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidObjectKey)
		})
	}
}

func TestFilePath(t *testing.T) {
	got, err := FilePath("a/b/report.pdf", "Download")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("Download", "report.pdf"), got)

	got, err = FilePath("top.txt", "out")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "top.txt"), got)

	_, err = FilePath("/", "out")
	assert.ErrorIs(t, err, errors.ErrInvalidObjectKey)
}
