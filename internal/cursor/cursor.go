// Package cursor adapts forward-only, handle-based enumerations (such as a
// WMI query result) into a lazy sequence of typed rows.
//
// A Source hands out at most one Record per call and reports the end of
// the stream by returning a nil Record. Rows pulls records one at a time,
// fetches a fixed list of fields from each, and releases every handle it
// receives. Callers only ever see owned models.Row values.
package cursor

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/vitalis-app/hostenum/internal/models"
)

// Record is one element returned by a Source. Release must be called once
// the record is no longer needed.
type Record interface {
	Get(field string) (models.Value, error)
	Release()
}

// Source is a forward-only, single-pass enumeration handle.
type Source interface {
	// Next returns the next record, or a nil Record and nil error once
	// the stream is exhausted.
	Next() (Record, error)
	Close() error
}

// Rows is a lazy, non-restartable row sequence over a Source.
type Rows struct {
	src    Source
	fields []string
	done   bool
	closed bool
}

// New returns a Rows that extracts fields from every record of src.
// Rows takes ownership of src.
func New(src Source, fields []string) *Rows {
	return &Rows{
		src:    src,
		fields: append([]string(nil), fields...),
	}
}

// Next returns the next row. It returns io.EOF once the source is
// exhausted. A failure to fetch the next record is returned once and the
// sequence is then finished. A failure to fetch any field of a record
// fails that record only; the following call moves on to the next record.
func (r *Rows) Next() (models.Row, error) {
	if r.done {
		return models.Row{}, io.EOF
	}

	rec, err := r.src.Next()
	if err != nil {
		r.finish()
		return models.Row{}, fmt.Errorf("fetch record: %w", err)
	}
	if rec == nil {
		r.finish()
		return models.Row{}, io.EOF
	}
	defer rec.Release()

	row := models.NewRow()
	for _, field := range r.fields {
		v, err := rec.Get(field)
		if err != nil {
			return models.Row{}, fmt.Errorf("fetch field %q: %w", field, err)
		}
		row.Set(field, v)
	}
	return row, nil
}

// All returns the remaining rows as an iterator. Iteration stops at end
// of stream, after a record fetch failure, or when the consumer stops.
func (r *Rows) All() iter.Seq2[models.Row, error] {
	return func(yield func(models.Row, error) bool) {
		for {
			row, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(row, err) {
				return
			}
		}
	}
}

// Close releases the underlying source. It is safe to call more than once
// and after the sequence has finished.
func (r *Rows) Close() error {
	r.done = true
	if r.closed {
		return nil
	}
	r.closed = true
	return r.src.Close()
}

func (r *Rows) finish() {
	_ = r.Close()
}

// Collect drains rows and returns every successful row plus the errors of
// the failed ones, in order. It closes rows.
func Collect(rows *Rows) ([]models.Row, []error) {
	defer rows.Close()

	var (
		out    []models.Row
		failed []error
	)
	for row, err := range rows.All() {
		if err != nil {
			failed = append(failed, err)
			continue
		}
		out = append(out, row)
	}
	return out, failed
}
