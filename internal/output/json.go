package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter writes the report as a single JSON document.
type JSONFormatter struct {
	Indent bool
}

func (f *JSONFormatter) Format(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(rep)
}
