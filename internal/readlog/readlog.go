// Package readlog writes classified readings to a delimited log file. One
// SessionLogger owns one open file and one running row index for its
// lifetime; rows are numbered per physical file, resuming across process
// restarts when the file is opened in append mode.
package readlog

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/banshee-data/lsm6200/internal/classify"
	"github.com/banshee-data/lsm6200/internal/timeutil"
)

var (
	// ErrSchemaMismatch is returned when a row of one schema is written to
	// a logger opened with the other.
	ErrSchemaMismatch = errors.New("readlog: row does not match the session schema")

	// ErrClosed is returned when writing to a closed logger.
	ErrClosed = errors.New("readlog: logger is closed")
)

// Schema selects the row shape for a logging session. The two shapes are
// distinct on purpose; a session commits to one at open time.
type Schema string

const (
	// SchemaCategorized writes six category-value columns with at most one
	// populated per row.
	SchemaCategorized Schema = "categorized"
	// SchemaVerdict writes a single value column plus the verdict.
	SchemaVerdict Schema = "verdict"
)

// Options configures a logging session.
type Options struct {
	Path   string
	Schema Schema
	// Append opens the existing file and resumes its row numbering;
	// otherwise the file is overwritten.
	Append bool
	// UTC selects UTC timestamps; the default is local time.
	UTC bool
	// Clock supplies row timestamps. Nil means the real clock.
	Clock timeutil.Clock
}

// SessionLogger is an append-safe reading log. It holds unshared mutable
// state (the row index and the file cursor) and must not be used from
// multiple goroutines without external synchronization.
type SessionLogger struct {
	file   *os.File
	w      *csv.Writer
	schema Schema
	utc    bool
	clock  timeutil.Clock
	index  int
}

// Open starts a logging session on the file at opts.Path, creating parent
// directories as needed. A new or empty file gets the header row for the
// chosen schema and numbering starts at 1; appending to a non-empty file
// skips the header and resumes numbering after the existing rows.
func Open(opts Options) (*SessionLogger, error) {
	if opts.Schema != SchemaCategorized && opts.Schema != SchemaVerdict {
		return nil, fmt.Errorf("readlog: unknown schema %q", opts.Schema)
	}
	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("readlog: create log directory: %w", err)
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	if opts.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(opts.Path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("readlog: open log file: %w", err)
	}

	clock := opts.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}

	l := &SessionLogger{
		file:   file,
		w:      csv.NewWriter(file),
		schema: opts.Schema,
		utc:    opts.UTC,
		clock:  clock,
		index:  1,
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("readlog: stat log file: %w", err)
	}

	if info.Size() == 0 {
		if err := l.writeHeader(); err != nil {
			file.Close()
			return nil, err
		}
		return l, nil
	}

	// Appending to an existing log: resume numbering after the rows
	// already on disk (line count minus the header).
	rows, err := countLines(opts.Path)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("readlog: count existing rows: %w", err)
	}
	if rows > 0 {
		l.index = rows // header occupies one line, so data rows = rows-1
	}
	return l, nil
}

func (l *SessionLogger) writeHeader() error {
	var header []string
	switch l.schema {
	case SchemaCategorized:
		header = []string{"No.", "timestamp"}
		for _, cat := range classify.Categories {
			header = append(header, fmt.Sprintf("Cat%d_%s", cat.Code, cat.Label))
		}
		header = append(header, "unit", "reason", "raw")
	case SchemaVerdict:
		header = []string{"No.", "timestamp", "value", "verdict", "unit", "reason", "raw"}
	}
	return l.writeRecord(header)
}

// LogCategorized appends a row with the value placed in the column matching
// the 1-indexed category code; the other five category columns stay blank.
// A nil value, or a code outside 1..6, populates no column at all.
func (l *SessionLogger) LogCategorized(value *decimal.Decimal, code int, unit, reason, raw string) error {
	if l.file == nil {
		return ErrClosed
	}
	if l.schema != SchemaCategorized {
		return fmt.Errorf("%w: categorized row on %q session", ErrSchemaMismatch, l.schema)
	}

	cats := make([]string, len(classify.Categories))
	if value != nil && code >= 1 && code <= len(cats) {
		cats[code-1] = value.StringFixed(3)
	}

	record := append([]string{fmt.Sprint(l.index), l.timestamp()}, cats...)
	record = append(record, unit, reason, raw)
	if err := l.writeRecord(record); err != nil {
		return err
	}
	l.index++
	return nil
}

// LogVerdict appends a verdict-schema row. A nil value leaves the value
// column blank.
func (l *SessionLogger) LogVerdict(value *decimal.Decimal, verdict classify.Verdict, unit, reason, raw string) error {
	if l.file == nil {
		return ErrClosed
	}
	if l.schema != SchemaVerdict {
		return fmt.Errorf("%w: verdict row on %q session", ErrSchemaMismatch, l.schema)
	}

	var v string
	if value != nil {
		v = value.StringFixed(3)
	}

	record := []string{fmt.Sprint(l.index), l.timestamp(), v, string(verdict), unit, reason, raw}
	if err := l.writeRecord(record); err != nil {
		return err
	}
	l.index++
	return nil
}

// Index returns the sequence number the next row will carry.
func (l *SessionLogger) Index() int {
	return l.index
}

// Close flushes buffered rows and releases the file handle. The handle is
// closed unconditionally, even when the final flush fails.
func (l *SessionLogger) Close() error {
	if l.file == nil {
		return nil
	}
	l.w.Flush()
	flushErr := l.w.Error()

	closeErr := l.file.Close()
	l.file = nil

	if flushErr != nil {
		return fmt.Errorf("readlog: flush log file: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("readlog: close log file: %w", closeErr)
	}
	return nil
}

func (l *SessionLogger) writeRecord(record []string) error {
	if err := l.w.Write(record); err != nil {
		return fmt.Errorf("readlog: write row: %w", err)
	}
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		return fmt.Errorf("readlog: write row: %w", err)
	}
	return nil
}

func (l *SessionLogger) timestamp() string {
	now := l.clock.Now()
	if l.utc {
		return now.UTC().Format("2006-01-02T15:04:05") + "Z"
	}
	return now.Format("2006-01-02T15:04:05")
}

// SessionFilename names a per-session log file after the standard size and
// the session start time, e.g. "0.110mm_20250601_083000.csv".
func SessionFilename(standard decimal.Decimal, unit string, start time.Time) string {
	return fmt.Sprintf("%s%s_%s.csv", standard.StringFixed(3), unit, start.Format("20060102_150405"))
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	scan := bufio.NewScanner(f)
	scan.Buffer(make([]byte, 64*1024), 1024*1024)
	for scan.Scan() {
		n++
	}
	if err := scan.Err(); err != nil {
		return 0, err
	}
	return n, nil
}
