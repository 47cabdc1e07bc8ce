// Package extract turns input files into raw candidate address lists.
// It is a producer collaborator: it never judges validity, the pipeline
// does. I/O and parse errors here are fatal for a run.
package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// addressSweep finds address-shaped tokens inside free text, for
// harvesting candidates out of email message bodies.
var addressSweep = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// FromFile extracts candidates based on the file extension:
// .csv takes the first column of every row, .eml/.msg parses an RFC 822
// message and sweeps its text parts, anything else is read as one
// candidate per line.
func FromFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FromCSV(f)
	case ".eml", ".msg":
		return FromMessage(f)
	default:
		return FromLines(f)
	}
}

// FromCSV takes the first column of each non-empty row.
func FromCSV(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var out []string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if len(row) == 0 {
			continue
		}
		if v := strings.TrimSpace(row[0]); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

// FromLines reads one candidate per line, as-is. Blank and comment
// lines stay in the list; skipping them is the batch runner's contract.
func FromLines(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		out = append(out, strings.TrimRight(line, "\r"))
	}
	// A trailing newline is not an extra candidate.
	if n := len(out); n > 0 && out[n-1] == "" {
		out = out[:n-1]
	}
	return out, nil
}

// FromMessage parses an RFC 822 message, walks its text/plain parts
// (the whole body for non-multipart messages) and sweeps them for
// addresses.
func FromMessage(r io.Reader) ([]string, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}

	var text strings.Builder
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read message part: %w", err)
		}

		h, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue // attachments are not candidate sources
		}
		ct, _, err := h.ContentType()
		if err == nil && ct != "" && ct != "text/plain" {
			continue
		}
		if _, err := io.Copy(&text, part.Body); err != nil {
			return nil, fmt.Errorf("read message body: %w", err)
		}
		text.WriteByte('\n')
	}

	return addressSweep.FindAllString(text.String(), -1), nil
}
