package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"qjm-roster/internal/admin"
	"qjm-roster/internal/aggregate"
	"qjm-roster/internal/catalog"
	"qjm-roster/internal/config"
	"qjm-roster/internal/journal"
	"qjm-roster/internal/logging"
	"qjm-roster/internal/roster"
	"qjm-roster/internal/scenario"
	"qjm-roster/internal/wargame"
)

var (
	servePrintOnly bool
	serveCatalog   string
	serveParams    string
	serveNoTUI     bool
	serveJSONLogs  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the roster console",
	Long:  "serve loads the unit catalog, places every unit in its faction panel and serves the drag-and-drop console.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath, schemaPath)
		if err != nil {
			return err
		}

		useTUI := cfg.Journal.TUI && !serveNoTUI && !servePrintOnly && term.IsTerminal(int(os.Stdout.Fd()))
		logOut := os.Stdout
		if useTUI {
			logOut = os.Stderr
		}
		logger := logging.NewWithLevel(logOut, cfg.LogLevel, serveJSONLogs)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, logger)

		params := cfg.Parameters
		if serveParams != "" {
			p, err := scenario.Load(serveParams)
			if err != nil {
				return err
			}
			params = *p
		}
		store := scenario.NewStore(params)

		client := wargame.NewClient(cfg.Service.BaseURL, wargame.Options{
			Timeout: cfg.Service.Timeout,
			RPS:     cfg.Service.RPS,
			Burst:   cfg.Service.Burst,
		})
		cat, err := loadCatalog(ctx, client, serveCatalog)
		if err != nil {
			return err
		}

		notifier := aggregate.NewNotifier(client, store.Frontage, cfg.Service.Timeout, logger)

		var board *roster.Board
		var tui *journal.TUIWriter
		if useTUI {
			tui = journal.NewTUIWriter(func() roster.Snapshot { return board.Snapshot() })
			defer tui.Close()
		}
		notifier.OnUpdate(func(s aggregate.Stats) {
			logger.Debug("personnel updated", "seq", s.Seq, "attackers", s.Attackers, "defenders", s.Defenders, "density", s.Density)
			if tui != nil {
				tui.WriteStats(s)
			}
		})

		var tuiSink roster.EventWriter
		if tui != nil {
			tuiSink = tui
		}
		events, cleanup, err := newWriters(cfg.Journal, servePrintOnly, logger, tuiSink)
		if err != nil {
			return err
		}
		defer cleanup()

		board, err = roster.NewBoard(cfg.Roles, notifier, events, logger)
		if err != nil {
			return err
		}
		defer board.Close()
		if err := board.Load(cat); err != nil {
			return err
		}

		srv := admin.NewServer(board, store, client, notifier, logger)
		if tui != nil {
			srv.OnChange = tui.Refresh
			tui.Refresh()
		}
		err = srv.Start(ctx, cfg.ListenAddr)
		notifier.Wait()
		logger.Info("roster console stopped")
		return err
	},
}

// loadCatalog reads the catalog from path when given, otherwise from the service.
func loadCatalog(ctx context.Context, client *wargame.Client, path string) (*catalog.Catalog, error) {
	if path != "" {
		return catalog.LoadFile(path)
	}
	return client.Catalog(ctx)
}

func init() {
	serveCmd.Flags().BoolVar(&servePrintOnly, "print-only", false, "Print journal events to STDOUT instead of writing to GreptimeDB")
	serveCmd.Flags().StringVar(&serveCatalog, "catalog", "", "Load the unit catalog from a YAML/JSON file instead of the service")
	serveCmd.Flags().StringVar(&serveParams, "parameters", "", "Path to battle parameters YAML overriding the config defaults")
	serveCmd.Flags().BoolVar(&serveNoTUI, "no-tui", false, "Disable the terminal UI even when stdout is a terminal")
	serveCmd.Flags().BoolVar(&serveJSONLogs, "json-logs", false, "Emit logs as JSON")
}
