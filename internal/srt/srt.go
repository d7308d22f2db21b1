// Package srt parses and writes SubRip subtitle text. The written form is
// fixed for downstream compatibility: 1-based sequential index, a
// "HH:MM:SS,mmm --> HH:MM:SS,mmm" line, the transcript text, then a blank
// line, per cue.
package srt

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Cue is one subtitle entry.
type Cue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

var timeLineRe = regexp.MustCompile(`^(\d\d:\d\d:\d\d[,.]\d\d\d) --> (\d\d:\d\d:\d\d[,.]\d\d\d)$`)

// Parse reads SRT text into cues. Sequence numbers in the input are ignored;
// Format renumbers from 1. Cues without any text are dropped.
func Parse(content string) ([]Cue, error) {
	var cues []Cue
	var current *Cue
	var textLines []string

	flush := func() {
		if current != nil && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			cues = append(cues, *current)
		}
		current = nil
		textLines = nil
	}

	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())

		if line == "" {
			flush()
			continue
		}

		if matches := timeLineRe.FindStringSubmatch(line); len(matches) == 3 {
			flush()
			start, err := parseTimestamp(matches[1])
			if err != nil {
				return nil, err
			}
			end, err := parseTimestamp(matches[2])
			if err != nil {
				return nil, err
			}
			current = &Cue{Start: start, End: end}
			continue
		}

		// A bare number before a timestamp line is a sequence index.
		if current == nil && isNumber(line) {
			continue
		}

		if current != nil {
			textLines = append(textLines, line)
		}
	}
	flush()

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan subtitle text: %w", err)
	}

	return cues, nil
}

// Format writes cues in the canonical SRT form. The output is bit-exact for
// a given cue list: comma millisecond separator, CRLF-free, one blank line
// after every cue including the last.
func Format(cues []Cue) string {
	var b strings.Builder
	for i, cue := range cues {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", formatTimestamp(cue.Start), formatTimestamp(cue.End))
		b.WriteString(cue.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// Normalize round-trips SRT text through Parse and Format, producing the
// canonical form regardless of the input's numbering, separator style or
// stray whitespace.
func Normalize(content string) (string, error) {
	cues, err := Parse(content)
	if err != nil {
		return "", err
	}
	return Format(cues), nil
}

func parseTimestamp(s string) (time.Duration, error) {
	var h, m, sec, ms int
	normalized := strings.Replace(s, ".", ",", 1)
	if _, err := fmt.Sscanf(normalized, "%02d:%02d:%02d,%03d", &h, &m, &sec, &ms); err != nil {
		return 0, fmt.Errorf("malformed subtitle timestamp %q: %w", s, err)
	}
	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(sec)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}

func formatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func isNumber(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
