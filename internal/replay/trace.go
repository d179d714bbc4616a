// Package replay drives a Client with a recorded access trace and summarizes
// how the cache behaved.
package replay

import (
	"bufio"
	"io"
	"strings"
)

// ParseTrace reads one asset name per line. Blank lines and lines starting
// with '#' are skipped.
func ParseTrace(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
