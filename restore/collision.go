package restore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// resolveCollision returns a variant of destination that does not
// exist yet. When the preferred name is taken a counter is inserted
// before the extension: report.txt, report-1.txt, report-2.txt with
// the lowest unused number winning.
//
// Between this check and the move someone else could claim the name.
// This is a single process tool restoring into a quiet tree so the
// window is accepted.
func resolveCollision(destination string) (string, error) {
	_, err := os.Lstat(destination)
	if os.IsNotExist(err) {
		return destination, nil
	}
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(destination)
	ext := filepath.Ext(destination)
	stem := strings.TrimSuffix(filepath.Base(destination), ext)

	// Dotfiles have no stem to speak of: .bashrc counts up as
	// .bashrc-1 rather than -1.bashrc.
	if stem == "" {
		stem = ext
		ext = ""
	}

	for i := 1; ; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
		_, err := os.Lstat(candidate)
		if os.IsNotExist(err) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
	}
}
