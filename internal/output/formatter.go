package output

import (
	"fmt"
	"io"
	"slices"

	"github.com/vitalis-app/hostenum/internal/errs"
)

// Output format names.
const (
	FormatSimple = "simple"
	FormatTable  = "table"
	FormatJSON   = "json"
)

// Formats lists every supported format name.
var Formats = []string{FormatSimple, FormatTable, FormatJSON}

// Formatter renders a report. Every cell is rendered through its total
// string form, so formatting never fails on cell data.
type Formatter interface {
	Format(w io.Writer, rep Report) error
}

// New returns the formatter registered under name.
func New(name string) (Formatter, error) {
	switch name {
	case FormatSimple, "":
		return &SimpleFormatter{}, nil
	case FormatTable:
		return &TableFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{Indent: true}, nil
	}
	return nil, fmt.Errorf("output format %q (want one of %v): %w", name, Formats, errs.ErrUnsupported)
}

// IsFormat reports whether name is a supported format.
func IsFormat(name string) bool {
	return slices.Contains(Formats, name)
}
