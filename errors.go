package cfdb

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBadDbPath is returned when the database path names a regular file or a symlink.
	ErrBadDbPath = errors.New("bad database path")
	// ErrMissingIndex is returned when a column family is referenced that does not exist.
	ErrMissingIndex = errors.New("missing column family")
	// ErrNoCounters is returned when the counters column family is absent.
	ErrNoCounters = errors.New("missing counters column family")
	// ErrBadIndex is returned when an index entry points at a record that does not exist.
	ErrBadIndex = errors.New("bad index")
	// ErrNotOpen is returned by operations on a closed database.
	ErrNotOpen = errors.New("database is not open")
)

type DataError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func dataErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DataError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x", e.Msg, e.Err, n, e.Data)
		}
		return fmt.Sprintf("%s: (%d) %x", e.Msg, n, e.Data)
	}
	p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: (%d) %x...%x", e.Msg, e.Err, n, p, s)
	}
	return fmt.Sprintf("%s: (%d) %x...%x", e.Msg, n, p, s)
}

// PathError describes a database path that cannot host a database.
type PathError struct {
	Path    string
	Symlink bool
}

func (e *PathError) Unwrap() error {
	return ErrBadDbPath
}

func (e *PathError) Error() string {
	if e.Symlink {
		return fmt.Sprintf("%v: %q is a symlink", ErrBadDbPath, e.Path)
	}
	return fmt.Sprintf("%v: %q is a file", ErrBadDbPath, e.Path)
}

// IndexError reports a failure tied to a column family and, optionally, a key in it.
type IndexError struct {
	CF  string
	Key []byte
	Msg string
	Err error
}

func indexErrf(cf string, key []byte, err error, format string, args ...any) error {
	return &IndexError{cf, key, fmt.Sprintf(format, args...), err}
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

func (e *IndexError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.CF)
	if e.Key != nil {
		buf.WriteByte('/')
		buf.WriteString(hex.EncodeToString(e.Key))
	}
	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
	}
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}
