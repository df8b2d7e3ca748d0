// Package protein provides a lazy FASTA-like protein record iterator,
// the search driver's source of database entries.
//
// The parse loop is adapted from encoding/fasta's bufio.Scanner-based
// reader, but streams one record at a time instead of loading the whole
// file -- the search driver consumes exactly one protein per work item
// and must not hold the whole database in memory.
package protein

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/grailbio/xcorr/config"
)

// Record is a single parsed protein database entry.
type Record struct {
	Name     string
	Residues []byte
}

// Len returns the residue count.
func (r *Record) Len() int { return len(r.Residues) }

// Iterator yields one Record per call to Next, in file order.
type Iterator struct {
	r       *bufio.Reader
	pending []byte // header line already consumed for the next record ('>' stripped)
	lineNo  int
	done    bool
}

// NewIterator wraps r as a streaming protein iterator. r is consumed
// lazily: Next reads only as much as is needed to return one record.
func NewIterator(r io.Reader) *Iterator {
	return &Iterator{r: bufio.NewReaderSize(r, 1<<20)}
}

// Next returns the next protein record, or io.EOF when the stream is
// exhausted. A malformed header (content before the first '>') is a
// fatal ParseDatabase error.
func (it *Iterator) Next() (*Record, error) {
	if it.done {
		return nil, io.EOF
	}

	var header []byte
	if it.pending != nil {
		header = it.pending
		it.pending = nil
	} else {
		// Skip to the first '>'.
		for {
			b, err := it.r.ReadByte()
			if err == io.EOF {
				it.done = true
				return nil, io.EOF
			}
			if err != nil {
				return nil, errors.Wrap(err, "protein: reading database")
			}
			if b == '\n' {
				it.lineNo++
				continue
			}
			if b == '>' {
				break
			}
			if b == ' ' || b == '\t' || b == '\r' {
				continue
			}
			return nil, errors.Errorf("protein: malformed database at line %d: expected '>', got %q", it.lineNo+1, b)
		}
		h, err := it.readHeaderLine()
		if err != nil {
			return nil, err
		}
		header = h
	}

	rec := &Record{Name: truncateHeader(header)}
	residues := make([]byte, 0, 256)
	for {
		b, err := it.r.ReadByte()
		if err == io.EOF {
			it.done = true
			rec.Residues = residues
			return rec, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "protein: reading database")
		}
		if b == '\n' {
			it.lineNo++
			continue
		}
		if b == '>' {
			h, err := it.readHeaderLine()
			if err != nil {
				return nil, err
			}
			it.pending = h
			rec.Residues = residues
			return rec, nil
		}
		if b >= 33 && b <= 126 {
			residues = append(residues, upper(b))
		}
		// Bytes outside the printable range (whitespace, control
		// characters) are silently skipped, per spec.md §4.1.
	}
}

func (it *Iterator) readHeaderLine() ([]byte, error) {
	line, err := it.r.ReadBytes('\n')
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "protein: reading header")
	}
	if err == io.EOF {
		it.done = true
	} else {
		it.lineNo++
	}
	if len(line) > 0 && line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}
	return line, nil
}

func truncateHeader(h []byte) string {
	end := len(h)
	for i, b := range h {
		if b == ' ' || b == '\t' {
			end = i
			break
		}
	}
	if end > config.WidthReference-1 {
		end = config.WidthReference - 1
	}
	return string(h[:end])
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - ('a' - 'A')
	}
	return b
}

// ClipMethionine returns a second, offset-by-one view of rec's
// residues when the first residue is 'M', supporting the
// clip-N-terminal-methionine second search pass (spec.md §4.3). ok is
// false when there is no leading methionine to clip.
func ClipMethionine(rec *Record) (residues []byte, ok bool) {
	if len(rec.Residues) > 0 && rec.Residues[0] == 'M' {
		return rec.Residues[1:], true
	}
	return nil, false
}
