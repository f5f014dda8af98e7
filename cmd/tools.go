package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/tool"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/bus"
)

var toolsOutputFormat string

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "show which external tools (apktool, jadx, zipalign, apksigner, jarsigner, keytool) are installed",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if err := validateListFormat(toolsOutputFormat); err != nil {
			return err
		}
		return runWorker(func(ctx context.Context) error {
			return runTools(ctx, toolsOutputFormat)
		})
	},
}

func init() {
	toolsCmd.Flags().StringVarP(&toolsOutputFormat, "output", "o", "table", "format to show the tool status (available=[table, json])")

	rootCmd.AddCommand(toolsCmd)
}

func validateListFormat(format string) error {
	switch format {
	case "table", "json":
		return nil
	}
	return fmt.Errorf("unsupported output format: %s", format)
}

func runTools(ctx context.Context, format string) error {
	toolbox, err := newToolbox()
	if err != nil {
		return err
	}

	statuses := toolbox.Check(ctx)

	var buf bytes.Buffer
	switch format {
	case "json":
		err = encodeJSON(&buf, statuses)
	default:
		renderToolTable(&buf, statuses)
	}
	if err != nil {
		return err
	}

	bus.Report("tools", buf.String())
	return nil
}

func renderToolTable(buf io.Writer, statuses []tool.Status) {
	table := newListTable(buf, "Tool", "Found", "Version", "Minimum", "Path")

	for _, s := range statuses {
		found := "no"
		if s.Found {
			found = "yes"
			if !s.MeetsMinimum {
				found = "yes (too old)"
			}
		}
		table.Append([]string{s.Name, found, s.Version, s.MinVersion, s.Path})
	}
	table.Render()
}

// newListTable is a borderless table, in the style of the findings table report.
func newListTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetAutoFormatHeaders(true)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)
	return table
}

func encodeJSON(buf io.Writer, v interface{}) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", " ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("unable to encode json: %w", err)
	}
	return nil
}
