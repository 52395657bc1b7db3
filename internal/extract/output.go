package extract

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultOutputFile is used when no output filename is given.
const DefaultOutputFile = "output.txt"

// ResolveOutputPath picks the destination file. Explicit names are honored
// exactly as given. noClobber switches to a numbering scheme instead of
// overwriting: the first of name.txt, name_1.txt, name_2.txt, ... that does
// not exist yet.
func ResolveOutputPath(name string, noClobber bool) string {
	if name == "" {
		name = DefaultOutputFile
	}
	if !noClobber {
		return name
	}
	return nextAvailable(name)
}

func nextAvailable(path string) string {
	// A name counts as taken only when stat succeeds. Stat failures other
	// than "not exist" end the search as well, so the write reports the real
	// error instead of the numbering spinning on it.
	if _, err := os.Stat(path); err != nil {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d%s", base, n, ext)
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
	}
}

// WriteOutput writes the combined text, creating or truncating the file.
func WriteOutput(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputWrite, err)
	}
	return nil
}

// Preview returns up to n lines from the start of the file, for the
// run-complete printout.
func Preview(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for len(lines) < n && scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
