// Package export writes a built chain to disk as an ordered set of files.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	"github.com/kozaktomas/face-morph/internal/chain"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// SafeName makes an id usable as a single path element.
func SafeName(id string) string {
	name := RemoveDiacritics(id)
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == 0:
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "_"
	}
	return name
}

// minIndexWidth is the narrowest zero padding of the position prefix.
const minIndexWidth = 3

// IndexWidth is the number of digits needed to number n entries from zero,
// never less than three.
func IndexWidth(n int) int {
	return max(minIndexWidth, len(strconv.Itoa(n-1)))
}

// FileName is the output name of the entry at position index, zero padded to
// width digits. Names sharing one width sort in chain order.
func FileName(index, width int, distance float64, id string) string {
	return fmt.Sprintf("%0*d_dist-%.4f_%s", width, index, distance, SafeName(id))
}

// CopyChain copies srcDir/<id> for every entry to dstDir under FileName,
// keeping file mode and modification time. It returns the names written,
// in chain order.
func CopyChain(entries []chain.Entry, srcDir, dstDir string) ([]string, error) {
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	if err := removeStale(dstDir); err != nil {
		return nil, err
	}

	width := IndexWidth(len(entries))
	names := make([]string, 0, len(entries))
	for i, e := range entries {
		name := FileName(i, width, e.Distance, e.ID)
		if err := copyFile(filepath.Join(srcDir, e.ID), filepath.Join(dstDir, name)); err != nil {
			return names, fmt.Errorf("copy %s: %w", e.ID, err)
		}
		names = append(names, name)
	}
	return names, nil
}

// removeStale deletes the output of an earlier export so it cannot leak into
// the frame sequence.
func removeStale(dir string) error {
	stale, err := filepath.Glob(filepath.Join(dir, "[0-9][0-9][0-9]*_dist-*"))
	if err != nil {
		return err
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove stale export: %w", err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// OpenFile applies the mode only on creation, and through the umask.
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
