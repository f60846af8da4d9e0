// Writer implementation printing journal events to STDOUT
package journal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"qjm-roster/internal/roster"
)

// JSONStdoutWriter prints each event as one JSON line.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// WriteEvent outputs an event in JSON format.
func (w *JSONStdoutWriter) WriteEvent(e roster.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}
