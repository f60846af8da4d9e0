package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"qjm-roster/internal/journal"
	"qjm-roster/internal/roster"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a roster journal file",
	Long:  "replay reads reassignment events from a JSONL journal and prints the final membership of every container.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		m := journal.NewMembership()
		var w roster.EventWriter = m
		if replayPrintOnly {
			w = journal.NewMultiWriter(journal.NewJSONStdoutWriter(), m)
		}
		if err := journal.ReplayLogFile(replayInput, w, replaySpeed); err != nil {
			return err
		}
		printMembership(cmd, m.Containers())
		return nil
	},
}

func printMembership(cmd *cobra.Command, containers map[string][]string) {
	ids := make([]string, 0, len(containers))
	for id := range containers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := cmd.OutOrStdout()
	for _, id := range ids {
		fmt.Fprintf(out, "%s (%d)\n", id, len(containers[id]))
		for _, u := range containers[id] {
			fmt.Fprintf(out, "  %s\n", u)
		}
	}
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to journal log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 0, "Playback speed multiplier (0 replays without delay)")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Echo replayed events to STDOUT")
	replayCmd.MarkFlagRequired("input")
}
