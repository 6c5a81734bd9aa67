package store

import (
	"os"
	"path/filepath"
	"strings"
)

// Local is a file-per-key fallback store rooted at a directory. It backs
// the engine's offline path: scenes land here when the remote write fails
// and are read back synchronously on startup.
type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Local{dir: dir}, nil
}

func (l *Local) Get(key string) ([]byte, bool) {
	data, err := os.ReadFile(l.path(key))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set writes atomically via a temp file so a crash mid-write never leaves a
// truncated scene behind.
func (l *Local) Set(key string, value []byte) error {
	path := l.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (l *Local) path(key string) string {
	// Keys are generated internally, but sanitize anyway so a hostile
	// canvas id cannot escape the directory.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(l.dir, safe+".json")
}
