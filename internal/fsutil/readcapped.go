package fsutil

import (
	"bufio"
	"os"
)

// ReadCapped reads a text file line by line, stopping once maxLines lines
// have been collected or the cumulative consumed bytes reach maxBytes,
// whichever comes first. An unreadable file yields an empty result rather
// than an error: crash artifacts routinely vanish or are permission-locked
// mid-scan, and one bad file must not abort a batch import.
func ReadCapped(path string, maxLines, maxBytes int) []string {
	if maxLines <= 0 || maxBytes <= 0 {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var (
		lines    []string
		consumed int
	)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		consumed += len(line) + 1
		lines = append(lines, line)
		if len(lines) >= maxLines || consumed >= maxBytes {
			break
		}
	}
	return lines
}
