package etl

import (
	"context"
	"encoding/csv"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/BartekS5/bookclub/pkg/logger"
)

// Record is one data line of a delimited file, addressed by header name.
type Record struct {
	Line   int
	header map[string]int
	values []string
}

// NewRecord builds a Record from parallel header and value slices.
func NewRecord(line int, header, values []string) Record {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	return Record{Line: line, header: idx, values: values}
}

// Get returns the raw value of column name, or "" when the column is absent.
func (r Record) Get(name string) string {
	i, ok := r.header[name]
	if !ok || i >= len(r.values) {
		return ""
	}
	return r.values[i]
}

// CSVSource streams a delimited file. Lines with more fields than the header
// or broken quoting are skipped and counted in Malformed; short lines are
// padded with empty values.
type CSVSource struct {
	Path      string
	Encoding  string
	Delimiter rune

	Rows      int
	Malformed int
}

func NewCSVSource(path, enc string, delim rune) *CSVSource {
	return &CSVSource{Path: path, Encoding: enc, Delimiter: delim}
}

// LookupEncoding resolves an IANA charset name. UTF-8 (or an empty name)
// returns a nil encoding, meaning no decode step.
func LookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" || strings.EqualFold(name, "utf-8") || strings.EqualFold(name, "utf8") {
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown encoding %q", name)
	}
	if enc == nil {
		return nil, errors.Errorf("encoding %q is not supported", name)
	}
	return enc, nil
}

// Records yields each well-formed line. Only I/O and decode failures are
// yielded as errors; iteration stops after one.
func (s *CSVSource) Records(ctx context.Context) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		f, err := os.Open(s.Path)
		if err != nil {
			yield(Record{}, errors.Wrapf(err, "failed to open '%s'", s.Path))
			return
		}
		defer f.Close()

		enc, err := LookupEncoding(s.Encoding)
		if err != nil {
			yield(Record{}, err)
			return
		}
		var r io.Reader = f
		if enc != nil {
			r = transform.NewReader(f, enc.NewDecoder())
		}

		s.Rows, s.Malformed = 0, 0
		for rec, err := range s.read(ctx, r) {
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

func (s *CSVSource) read(ctx context.Context, r io.Reader) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		cr := csv.NewReader(r)
		cr.Comma = s.Delimiter
		cr.LazyQuotes = true
		cr.FieldsPerRecord = -1

		first, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = errors.Errorf("'%s' is empty", s.Path)
			}
			yield(Record{}, errors.Wrapf(err, "failed to read header of '%s'", s.Path))
			return
		}
		header := cleanHeader(first)
		idx := make(map[string]int, len(header))
		for i, h := range header {
			idx[h] = i
		}

		for {
			if err := ctx.Err(); err != nil {
				yield(Record{}, err)
				return
			}
			values, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				s.Malformed++
				logger.Debugf("%s: skipping malformed line %d: %v", s.Path, perr.StartLine, perr.Err)
				continue
			}
			if err != nil {
				yield(Record{}, errors.Wrapf(err, "failed to read '%s'", s.Path))
				return
			}
			line, _ := cr.FieldPos(0)
			if len(values) > len(header) {
				s.Malformed++
				logger.Debugf("%s: skipping line %d with %d fields, want %d", s.Path, line, len(values), len(header))
				continue
			}
			for len(values) < len(header) {
				values = append(values, "")
			}
			s.Rows++
			if !yield(Record{Line: line, header: idx, values: values}, nil) {
				return
			}
		}
	}
}

// cleanHeader strips whitespace and stray quotes from column names, which
// the datasets wrap in quotes.
func cleanHeader(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		c = strings.TrimPrefix(c, "\ufeff")
		c = strings.ReplaceAll(strings.TrimSpace(c), `"`, "")
		out[i] = norm.NFC.String(c)
	}
	return out
}
