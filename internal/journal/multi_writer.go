package journal

import (
	"errors"

	"qjm-roster/internal/roster"
)

// MultiWriter fans events out to several writers. A failing writer does not
// stop delivery to the others; all errors are joined.
type MultiWriter struct {
	writers []roster.EventWriter
}

// NewMultiWriter creates a MultiWriter, skipping nil writers.
func NewMultiWriter(ws ...roster.EventWriter) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range ws {
		if w != nil {
			mw.writers = append(mw.writers, w)
		}
	}
	return mw
}

// WriteEvent sends an event to all writers.
func (mw *MultiWriter) WriteEvent(e roster.Event) error {
	var errs []error
	for _, w := range mw.writers {
		if err := w.WriteEvent(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of wrapped writers.
func (mw *MultiWriter) Len() int { return len(mw.writers) }
