package export

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/cascbox/cascview/pkg/casc"
)

// Path policy errors.
var (
	ErrEmptySource  = errors.New("empty export source")
	ErrUnsafeSource = errors.New("export source escapes the output directory")
)

// TargetPath maps an item source to its on-disk destination. Remote
// assets mirror their archive path under the output directory so a
// batch reproduces the archive layout; local files keep only their base
// name, since their origin directory is meaningless in the export tree.
func TargetPath(outputDir, source string, mode Mode) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", ErrEmptySource
	}

	var rel string
	if mode == ModeLocal {
		rel = filepath.Base(source)
	} else {
		rel = filepath.FromSlash(casc.NormalizeName(source))
	}

	rel = strings.TrimLeft(rel, string(filepath.Separator))
	if rel == "" || rel == "." {
		return "", ErrEmptySource
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part == ".." {
			return "", ErrUnsafeSource
		}
	}

	return filepath.Join(outputDir, rel), nil
}
