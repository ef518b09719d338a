package schema

import (
	"os"
	"path/filepath"
	"strings"
)

// unixPathPrefixes are the prefixes a path string must start with.
var unixPathPrefixes = []string{"/", "./", "../", "~/"}

// IsUnixPath reports whether p looks like a Unix path. Only the prefix is
// checked; the rest of the string is not inspected.
func IsUnixPath(p string) bool {
	for _, prefix := range unixPathPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// ExpandHome replaces a leading "~/" with the directory returned by home.
// Other paths are returned unchanged.
func ExpandHome(p string, home func() (string, error)) (string, error) {
	if !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	if home == nil {
		home = os.UserHomeDir
	}
	dir, err := home()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, p[2:]), nil
}

// PathProber answers whether a filesystem path exists.
type PathProber interface {
	Exists(path string) bool
}

// ProberFunc adapts a function to PathProber.
type ProberFunc func(path string) bool

// Exists calls f(path).
func (f ProberFunc) Exists(path string) bool {
	return f(path)
}

// StatProber probes the local filesystem with os.Stat. Any stat error,
// including permission errors, counts as "does not exist".
type StatProber struct{}

// Exists implements PathProber.
func (StatProber) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
