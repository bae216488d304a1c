package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Open opens the source file for a category and returns a lazy record stream.
// The caller should treat a not-exist error as a recoverable category skip.
func Open(dir string, category Category) (*Stream, error) {
	file, err := os.Open(filepath.Join(dir, category.FileName()))
	if err != nil {
		return nil, err
	}
	return &Stream{category: category, file: file, dec: json.NewDecoder(file)}, nil
}

// Stream is a finite, single-pass sequence of records for one category.
// It is not restartable.
type Stream struct {
	category Category
	file     *os.File
	dec      *json.Decoder
	started  bool
	done     bool
	skipped  int
	err      error
}

// Next returns the next well-formed record. Records that fail to decode into
// the category's shape, or that miss required fields, are skipped and
// counted; the stream continues past them. Next reports false at end of
// input or when the file itself is unreadable (see Err).
func (s *Stream) Next() (Record, bool) {
	if s.err != nil || s.done {
		return nil, false
	}
	if !s.started {
		tok, err := s.dec.Token()
		if err != nil {
			s.err = fmt.Errorf("read %s: %w", s.category.FileName(), err)
			return nil, false
		}
		if delim, ok := tok.(json.Delim); !ok || delim != '[' {
			s.err = fmt.Errorf("read %s: top level is not an array", s.category.FileName())
			return nil, false
		}
		s.started = true
	}

	for s.dec.More() {
		var raw json.RawMessage
		if err := s.dec.Decode(&raw); err != nil {
			// Structural corruption; nothing after this point can be framed.
			s.err = fmt.Errorf("read %s: %w", s.category.FileName(), err)
			return nil, false
		}

		rec := newRecord(s.category)
		if err := json.Unmarshal(raw, rec); err != nil {
			s.skipped++
			recordParseSkip(s.category)
			continue
		}
		if err := rec.Validate(); err != nil {
			s.skipped++
			recordParseSkip(s.category)
			continue
		}
		return rec, true
	}

	s.done = true
	if _, err := s.dec.Token(); err != nil {
		s.err = fmt.Errorf("read %s: %w", s.category.FileName(), err)
	}
	return nil, false
}

// Skipped reports how many records were skipped for parse or validation failures.
func (s *Stream) Skipped() int { return s.skipped }

// Err reports a file-level read failure, if any occurred.
func (s *Stream) Err() error { return s.err }

// Close releases the underlying file.
func (s *Stream) Close() error { return s.file.Close() }
