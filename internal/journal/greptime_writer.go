package journal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"qjm-roster/internal/roster"
)

const defaultEventTable = "roster_events"

type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter stores journal events in a GreptimeDB table.
type GreptimeDBWriter struct {
	client  greptimeClient
	table   string
	timeout time.Duration
	log     *slog.Logger
}

// NewGreptimeDBWriter connects to endpoint ("host" or "host:port"). The table
// is created by GreptimeDB on first write.
func NewGreptimeDBWriter(endpoint, database, tableName string, logger *slog.Logger) (*GreptimeDBWriter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := greptime.NewConfig(endpoint)
	if h, p, err := net.SplitHostPort(endpoint); err == nil {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("greptime endpoint %q: %w", endpoint, err)
		}
		cfg = greptime.NewConfig(h).WithPort(port)
	}
	if database != "" {
		cfg = cfg.WithDatabase(database)
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if tableName == "" {
		tableName = defaultEventTable
	}
	return &GreptimeDBWriter{client: client, table: tableName, timeout: 5 * time.Second, log: logger}, nil
}

// WriteEvent inserts a single event.
func (w *GreptimeDBWriter) WriteEvent(e roster.Event) error {
	return w.WriteEvents([]roster.Event{e})
}

// WriteEvents inserts multiple events in one request.
func (w *GreptimeDBWriter) WriteEvents(events []roster.Event) error {
	if len(events) == 0 {
		return nil
	}
	tbl, err := w.buildTable(events)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		w.logger().Warn("greptime write failed", "table", w.table, "err", err)
		return err
	}
	w.logger().Debug("greptime wrote events", "table", w.table, "rows", len(events))
	return nil
}

// Close releases the client connection.
func (w *GreptimeDBWriter) Close() error {
	if c, ok := w.client.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (w *GreptimeDBWriter) logger() *slog.Logger {
	if w.log == nil {
		return slog.Default()
	}
	return w.log
}

func (w *GreptimeDBWriter) buildTable(events []roster.Event) (*table.Table, error) {
	tbl, err := table.New(w.table)
	if err != nil {
		return nil, err
	}
	cols := []struct {
		name string
		tag  bool
	}{
		{"unit_id", true},
		{"kind", true},
		{"event_id", false},
		{"from_container", false},
		{"to_container", false},
		{"session_id", false},
	}
	for _, c := range cols {
		if c.tag {
			err = tbl.AddTagColumn(c.name, types.STRING)
		} else {
			err = tbl.AddFieldColumn(c.name, types.STRING)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return nil, err
	}
	for _, e := range events {
		if err := tbl.AddRow(e.UnitID, string(e.Kind), e.ID, e.From, e.To, e.SessionID, e.Timestamp); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}
