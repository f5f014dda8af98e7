package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/store"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/bus"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
)

type historyOptions struct {
	Limit  int
	Output string
}

var historyOpts historyOptions

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "list past analyses (newest first)",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := validateListFormat(historyOpts.Output); err != nil {
			return err
		}
		if historyOpts.Limit < 0 {
			return fmt.Errorf("limit must not be negative")
		}
		return runWorker(func(_ context.Context) error {
			return runHistory(historyOpts)
		})
	},
}

func init() {
	flags := historyCmd.Flags()
	flags.IntVar(&historyOpts.Limit, "limit", store.DefaultListLimit, "the number of analyses to show")
	flags.StringVarP(&historyOpts.Output, "output", "o", "table", "format to show the history (available=[table, json])")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(opts historyOptions) error {
	if !appConfig.History.Enabled {
		bus.Notify("history", "Analysis history is disabled (history.enabled=false)")
		return nil
	}

	s, err := store.Open(appConfig.History.Path)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			log.Debugf("unable to close analysis history: %+v", err)
		}
	}()

	records, err := s.List(opts.Limit)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch opts.Output {
	case "json":
		if records == nil {
			records = []store.AnalysisRecord{}
		}
		if err := encodeJSON(&buf, records); err != nil {
			return err
		}
	default:
		if len(records) == 0 {
			bus.Notify("history", "No analyses recorded yet")
			return nil
		}
		renderHistoryTable(&buf, records)
	}

	bus.Report("history", buf.String())
	return nil
}

func renderHistoryTable(w io.Writer, records []store.AnalysisRecord) {
	table := newListTable(w, "Date", "Package", "Version", "Risk", "Findings", "Crit/High/Med/Low/Info", "Project")
	for _, r := range records {
		counts := strings.Join([]string{
			strconv.Itoa(r.Critical), strconv.Itoa(r.High), strconv.Itoa(r.Medium), strconv.Itoa(r.Low), strconv.Itoa(r.Info),
		}, "/")
		table.Append([]string{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Package,
			r.Version,
			strconv.Itoa(r.RiskScore),
			strconv.Itoa(r.Total),
			counts,
			r.ProjectDir,
		})
	}
	table.Render()
}
