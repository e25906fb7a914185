package integrity

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mcdonaldj/siblame/internal/ports"
)

// maxLineSize bounds a single annotate output line.
const maxLineSize = 1024 * 1024

// dateLayouts are the date renderings seen from si, most specific first.
var dateLayouts = []string{
	"Jan 2, 2006 3:04:05 PM MST",
	"Jan 2, 2006 3:04:05 PM",
	"Jan 2, 2006 MST",
	"Jan 2, 2006",
	time.RFC3339,
}

// Parse reads `si annotate --fields=date,revision,author` output: one
// tab-separated record per line. Blank lines are ignored; lines without
// exactly three fields are logged and skipped.
func (s *Strategy) Parse(r io.Reader) ([]ports.BlameLine, error) {
	var lines []ports.BlameLine

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		// Runs of tabs separate a single pair of fields.
		fields := strings.FieldsFunc(text, func(r rune) bool { return r == '\t' })
		if len(fields) != 3 {
			s.logger.Warn("failed to parse annotate line", "line", text)
			continue
		}

		date := strings.TrimSpace(fields[0])
		line := ports.BlameLine{
			LineNumber: len(lines) + 1,
			Date:       date,
			Revision:   strings.TrimSpace(fields[1]),
			Author:     strings.TrimSpace(fields[2]),
		}
		if t, ok := parseDate(date); ok {
			line.Time = t
		} else {
			s.logger.Debug("unrecognised annotate date", "date", date)
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return lines, fmt.Errorf("reading annotate output: %w", err)
	}
	return lines, nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
