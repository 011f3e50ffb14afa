// Package pathmap maps remote object keys onto local destination paths.
//
// Keys are always '/'-delimited regardless of the host platform. The mapping
// preserves the remote directory structure below the source prefix and never
// produces a path outside the destination root.
package pathmap

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/S-Muro0526/wasabi/internal/errors"
)

// Separator is the key delimiter used by the object store.
const Separator = "/"

// Base returns the key prefix that is stripped from every listed key.
//
// A prefix ending in a separator is a directory and is stripped entirely. A
// prefix without a trailing separator is treated as a name inside its parent
// directory, so its last segment survives in the local path.
func Base(sourcePrefix string) string {
	if sourcePrefix == "" {
		return ""
	}
	if strings.HasSuffix(sourcePrefix, Separator) {
		return strings.TrimRight(sourcePrefix, Separator)
	}
	dir := path.Dir(sourcePrefix)
	if dir == "." || dir == Separator {
		return ""
	}
	return dir
}

// Relative returns key relative to sourcePrefix as a cleaned, '/'-delimited path.
func Relative(key, sourcePrefix string) (string, error) {
	rel := key
	if base := Base(sourcePrefix); base != "" {
		if !strings.HasPrefix(key, base+Separator) {
			return "", errors.NewError("mapPath", errors.ErrInvalidObjectKey).
				WithKey(key).
				WithMessage("key is outside source prefix " + sourcePrefix)
		}
		rel = strings.TrimLeft(key[len(base)+1:], Separator)
	} else if strings.HasPrefix(rel, Separator) {
		return "", errors.NewError("mapPath", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("key maps to an absolute path")
	}

	rel = path.Clean(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", errors.NewError("mapPath", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("key escapes the destination directory")
	}

	return rel, nil
}

// LocalPath joins the key, relative to sourcePrefix, onto destRoot.
//
// Examples with destRoot "Download" and key "a/b/c/d.txt":
//
//	sourcePrefix "a/b/" -> Download/c/d.txt
//	sourcePrefix ""     -> Download/a/b/c/d.txt
//	sourcePrefix "a/b"  -> Download/b/c/d.txt
func LocalPath(key, sourcePrefix, destRoot string) (string, error) {
	rel, err := Relative(key, sourcePrefix)
	if err != nil {
		return "", err
	}
	return filepath.Join(destRoot, filepath.FromSlash(rel)), nil
}

// FilePath returns the default destination of a single-file download: the
// key's base name directly under destRoot.
func FilePath(key, destRoot string) (string, error) {
	name := path.Base(strings.TrimRight(key, Separator))
	if name == "." || name == Separator || name == ".." || name == "" {
		return "", errors.NewError("mapPath", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("key has no file name")
	}
	return filepath.Join(destRoot, name), nil
}
