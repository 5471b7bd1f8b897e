// Package attachment writes attachment content to disk and names the destination file.
package attachment

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// DefaultName is used when an attachment carries no usable name.
const DefaultName = "noname"

// WriteError reports a failure to save an attachment.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return "cannot save attachment at " + e.Path + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Materializer places attachments inside Dir. Content is only written when Persist is set.
//
// Names are not disambiguated: two attachments with the same name share a destination and
// the last write wins.
type Materializer struct {
	Dir     string
	Persist bool
}

// Path returns the destination of an attachment, named by the first usable candidate.
func (m Materializer) Path(candidates ...string) string {
	return filepath.Join(m.Dir, fileName(candidates))
}

// Materialize computes the destination for an attachment and, if persisting, writes data
// there. The destination is returned in either case.
func (m Materializer) Materialize(data []byte, candidates ...string) (string, error) {
	path := m.Path(candidates...)
	if !m.Persist {
		return path, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	log.Debug().Str("module", "attachment").Str("path", path).Int("size", len(data)).
		Msg("Saved attachment")
	return path, nil
}

// fileName picks the first candidate that still names a file once reduced to its base, so
// an attachment cannot escape the destination directory.
func fileName(candidates []string) string {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		base := filepath.Base(filepath.FromSlash(c))
		switch base {
		case ".", "..", string(filepath.Separator):
			continue
		}
		return base
	}
	return DefaultName
}
