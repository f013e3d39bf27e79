package pipeline

import (
	"bufio"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/unicode/norm"
)

// CleanAddresses prepares raw operator input for a batch: each entry is
// NFC-normalised and trimmed, and blank entries are dropped. Order is kept.
func CleanAddresses(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(norm.NFC.String(s))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ReadAddressLines reads one address per line from r and cleans them.
func ReadAddressLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, strings.TrimPrefix(sc.Text(), "\ufeff"))
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: read address lines")
	}
	return CleanAddresses(lines), nil
}
