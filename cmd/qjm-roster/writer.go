package main

import (
	"errors"
	"log/slog"

	"qjm-roster/internal/config"
	"qjm-roster/internal/journal"
	"qjm-roster/internal/roster"
)

// newWriters sets up the journal sinks from config and flags. A non-nil tui
// is added as a sink and takes over stdout, so the JSON stdout sink is left
// out. It returns the writer and a cleanup function closing the sinks.
func newWriters(j config.Journal, printOnly bool, logger *slog.Logger, tui roster.EventWriter) (roster.EventWriter, func(), error) {
	var (
		ws      []roster.EventWriter
		closers []func() error
	)
	cleanup := func() {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		if err := errors.Join(errs...); err != nil && logger != nil {
			logger.Warn("closing journal sinks", "err", err)
		}
	}

	if (printOnly || j.Stdout) && tui == nil {
		ws = append(ws, journal.NewJSONStdoutWriter())
	}
	if !printOnly && j.Greptime.Endpoint != "" {
		gw, err := journal.NewGreptimeDBWriter(j.Greptime.Endpoint, j.Greptime.Database, j.Greptime.Table, logger)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, gw.Close)
		ws = append(ws, gw)
	}
	if j.File != "" {
		fw, err := journal.NewFileWriter(j.File)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, fw.Close)
		ws = append(ws, fw)
	}
	if tui != nil {
		ws = append(ws, tui)
	}

	if len(ws) == 1 {
		return ws[0], cleanup, nil
	}
	return journal.NewMultiWriter(ws...), cleanup, nil
}
