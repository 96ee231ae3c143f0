package port

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseLine splits a single CSV line into its fields. Quoted fields may
// contain the delimiter and doubled quotes.
func ParseLine(raw string) ([]string, error) {
	raw = strings.TrimRight(raw, "\r\n")
	if raw == "" {
		return []string{""}, nil
	}

	r := newReader(strings.NewReader(raw))
	fields, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []string{""}, nil
		}

		return nil, fmt.Errorf("parse line: %w", err)
	}

	return fields, nil
}

func newReader(rd io.Reader) *csv.Reader {
	r := csv.NewReader(rd)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	return r
}

// maxLine caps the length of a single physical line.
const maxLine = 1 << 20

// recordReader splits input into logical CSV records, joining physical lines
// while a quoted field is open, and parses each one with ParseLine.
type recordReader struct {
	sc   *bufio.Scanner
	line int
}

func newRecordReader(r io.Reader) *recordReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	return &recordReader{sc: sc}
}

// Read returns the fields of the next non-blank record and the line it
// starts on. It returns io.EOF at the end of the input.
func (rr *recordReader) Read() ([]string, int, error) {
	var (
		b     strings.Builder
		start int
	)

	for rr.sc.Scan() {
		rr.line++
		text := rr.sc.Text()

		if b.Len() == 0 {
			if strings.TrimSpace(text) == "" {
				continue
			}
			start = rr.line
		} else {
			b.WriteByte('\n')
		}
		b.WriteString(text)

		if !quoteOpen(b.String()) {
			fields, err := ParseLine(b.String())
			return fields, start, err
		}
	}

	if err := rr.sc.Err(); err != nil {
		return nil, rr.line, fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	// an unterminated quoted field runs to the end of the input.
	if b.Len() > 0 {
		fields, err := ParseLine(b.String())
		return fields, start, err
	}

	return nil, rr.line, io.EOF
}

// quoteOpen reports whether s ends inside a quoted field. Only a quote at
// the start of a field opens one; doubled quotes inside it are escapes.
func quoteOpen(s string) bool {
	in, fieldStart := false, true
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case in && c == '"':
			if i+1 < len(s) && s[i+1] == '"' {
				i++
				continue
			}
			in = false
		case !in && c == '"' && fieldStart:
			in = true
		}

		fieldStart = !in && (c == ',' || c == '\n')
	}

	return in
}

// columns holds the index of each known column, -1 when absent.
type columns struct {
	title      int
	url        int
	domain     int
	category   int
	closedDate int
	closedTime int
}

// normalizeHeader lowercases h and drops separators, "Closed Date" and
// "closed_date" both become "closeddate".
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))

	return strings.NewReplacer(" ", "", "_", "", "-", "", ".", "").Replace(h)
}

// detectColumns maps header names to columns, first match wins.
func detectColumns(header []string) (columns, error) {
	c := columns{-1, -1, -1, -1, -1, -1}
	set := func(dst *int, i int) {
		if *dst == -1 {
			*dst = i
		}
	}

	for i, h := range header {
		n := normalizeHeader(h)
		switch {
		case n == "":
		case strings.Contains(n, "close") && strings.Contains(n, "date"):
			set(&c.closedDate, i)
		case strings.Contains(n, "close") && strings.Contains(n, "time"):
			set(&c.closedTime, i)
		case strings.Contains(n, "title") || n == "name":
			set(&c.title, i)
		case n == "favicon" || strings.Contains(n, "icon"):
		case strings.Contains(n, "url") || strings.Contains(n, "link") || n == "href" || n == "address":
			set(&c.url, i)
		case strings.Contains(n, "domain") || n == "host" || n == "hostname":
			set(&c.domain, i)
		case strings.Contains(n, "category") || n == "status" || n == "label":
			set(&c.category, i)
		}
	}

	var missing []string
	if c.title == -1 {
		missing = append(missing, "title")
	}

	if c.url == -1 {
		missing = append(missing, "url")
	}

	if len(missing) > 0 {
		return c, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return c, nil
}

// field returns the trimmed value at i, empty when out of range.
func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[i])
}

// closedAt parses the closed date and time columns into Unix milliseconds.
func (c columns) closedAt(row []string) (int64, bool) {
	d, t := field(row, c.closedDate), field(row, c.closedTime)

	var s string
	switch {
	case d != "" && t != "":
		s = d + " " + t
	case d != "":
		s = d
	case t != "":
		s = t
	default:
		return 0, false
	}

	ts, err := dateparse.ParseAny(s)
	if err != nil || ts.IsZero() || ts.Before(time.Unix(0, 0)) {
		return 0, false
	}

	return ts.UnixMilli(), true
}
