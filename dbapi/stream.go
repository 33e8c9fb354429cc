package dbapi

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"io"

	"github.com/tomyedwab/sqlite-dbapi/types"
)

// Row is one result row, converted according to the cursor's Description.
type Row []any

// rowStream pulls rows from the engine one at a time and converts them on
// the way out. It can be drained once.
type rowStream struct {
	rows       driver.Rows
	names      []string
	converters []types.Converter

	// buffered holds rows materialized ahead of the caller; they are served
	// before anything else, followed by err if materializing failed.
	buffered []Row
	err      error
	done     bool
}

// newRowStream converts each column with the converter overrides holds for
// its type code, falling back to types.ConverterFor.
func newRowStream(rows driver.Rows, desc Description, overrides map[types.TypeCode]types.Converter) *rowStream {
	s := &rowStream{
		rows:       rows,
		names:      desc.Names(),
		converters: make([]types.Converter, len(desc)),
	}
	for i, col := range desc {
		if conv, ok := overrides[col.TypeCode]; ok && conv != nil {
			s.converters[i] = conv
			continue
		}
		s.converters[i] = types.ConverterFor(col.TypeCode)
	}
	return s
}

func emptyStream() *rowStream {
	return &rowStream{done: true}
}

// next returns the next row, or io.EOF once the stream is exhausted.
func (s *rowStream) next() (Row, error) {
	if len(s.buffered) > 0 {
		row := s.buffered[0]
		s.buffered = s.buffered[1:]
		return row, nil
	}
	if s.err != nil {
		err := s.err
		s.err = nil
		return nil, err
	}
	if s.done {
		return nil, io.EOF
	}

	dest := make([]driver.Value, len(s.converters))
	if err := s.rows.Next(dest); err != nil {
		s.close()
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, engineError("fetching row", err)
	}
	row := make(Row, len(dest))
	for i, v := range dest {
		converted, err := s.converters[i](v)
		if err != nil {
			s.close()
			return nil, engineError(fmt.Sprintf("converting column %q", s.names[i]), err)
		}
		row[i] = converted
	}
	return row, nil
}

// materialize reads every remaining row into the buffer and reports how
// many there were. A failure part way keeps the rows read so far and
// replays the error after them.
func (s *rowStream) materialize() (int, error) {
	var rows []Row
	for {
		row, err := s.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.buffered = rows
			s.err = err
			return -1, err
		}
		rows = append(rows, row)
	}
	s.buffered = rows
	return len(rows), nil
}

func (s *rowStream) close() error {
	s.done = true
	if s.rows == nil {
		return nil
	}
	err := s.rows.Close()
	s.rows = nil
	return err
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
