package ui

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gookit/color"
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"
	"github.com/wagoodman/go-progress/format"
	"github.com/wagoodman/jotframe/pkg/frame"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/event/parsers"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
)

const maxBarWidth = 50
const statusTitleColumn = 31
const completedStatus = "✔"
const failedStatus = "✘"
const tileFormat = color.Bold

var auxInfoFormat = color.HEX("#777777")
var statusTitleTemplate = fmt.Sprintf(" %%s %%-%ds ", statusTitleColumn)

func startProcess() (format.Simple, *spinner) {
	width, _ := frame.GetTerminalSize()
	barWidth := int(0.25 * float64(width))
	if barWidth > maxBarWidth {
		barWidth = maxBarWidth
	}
	formatter := format.NewSimpleWithTheme(barWidth, format.HeavyNoBarTheme, format.ColorCompleted, format.ColorTodo)
	return formatter, newSpinner(spinnerDotSet)
}

func finalStatus(err error) string {
	if err != nil && !progress.IsErrCompleted(err) {
		return color.Red.Sprint(failedStatus)
	}
	return color.Green.Sprint(completedStatus)
}

func (r *Handler) ExtractionStartedHandler(ctx context.Context, fr *frame.Frame, e partybus.Event, wg *sync.WaitGroup) error {
	mon, err := parsers.ParseExtractionStarted(e)
	if err != nil {
		return fmt.Errorf("bad %s event: %w", e.Type, err)
	}

	line, err := fr.Append()
	if err != nil {
		return err
	}

	wg.Add(1)

	formatter, spin := startProcess()
	stream := progress.Stream(ctx, mon, 150*time.Millisecond)
	title := tileFormat.Sprint("Extracting APK...")
	name := filepath.Base(mon.APK)

	formatFn := func(p progress.Progress) {
		progStr, err := formatter.Format(p)
		if err != nil {
			_, _ = io.WriteString(line, fmt.Sprintf("Error: %+v", err))
			return
		}
		auxInfo := auxInfoFormat.Sprintf("[%s: %s]", name, mon.Stage.Stage())
		_, _ = io.WriteString(line, fmt.Sprintf(statusTitleTemplate+"%s %s", color.Magenta.Sprint(spin.Next()), title, progStr, auxInfo))
	}

	go func() {
		defer wg.Done()

		var last progress.Progress
		formatFn(last)
		for p := range stream {
			last = p
			formatFn(p)
		}

		title = tileFormat.Sprint("Extracted APK")
		auxInfo := auxInfoFormat.Sprintf("[%s: %s]", name, mon.Stage.Stage())
		_, _ = io.WriteString(line, fmt.Sprintf(statusTitleTemplate+"%s", finalStatus(last.Error()), title, auxInfo))
	}()
	return nil
}

func (r *Handler) AnalysisStartedHandler(ctx context.Context, fr *frame.Frame, e partybus.Event, wg *sync.WaitGroup) error {
	mon, err := parsers.ParseAnalysisStarted(e)
	if err != nil {
		return fmt.Errorf("bad %s event: %w", e.Type, err)
	}

	line, err := fr.Append()
	if err != nil {
		return err
	}

	line2, err := fr.Append()
	if err != nil {
		return err
	}

	wg.Add(1)

	_, spin := startProcess()
	stream := progress.Stream(ctx, mon.FilesProcessed, 50*time.Millisecond)
	title := tileFormat.Sprint("Analyzing project...")
	title2 := tileFormat.Sprint("Findings")

	severityCount := func(s finding.Severity) int64 {
		if m, ok := mon.BySeverity[s]; ok && m != nil {
			return m.Current()
		}
		return 0
	}

	summary := func() string {
		return auxInfoFormat.Sprintf("[Critical: %d, High: %d, Medium: %d, Low: %d, Info: %d]",
			severityCount(finding.CriticalSeverity),
			severityCount(finding.HighSeverity),
			severityCount(finding.MediumSeverity),
			severityCount(finding.LowSeverity),
			severityCount(finding.InfoSeverity),
		)
	}

	formatFn := func(p progress.Progress) {
		s := color.Magenta.Sprint(spin.Next())
		auxInfo := auxInfoFormat.Sprintf("[files %d, findings %d]", p.Current(), mon.FindingsDiscovered.Current())
		_, _ = io.WriteString(line, fmt.Sprintf(statusTitleTemplate+"%s", s, title, auxInfo))
		_, _ = io.WriteString(line2, fmt.Sprintf(statusTitleTemplate+"%s", s, title2, summary()))
	}

	go func() {
		defer wg.Done()

		var last progress.Progress
		formatFn(last)
		for p := range stream {
			last = p
			formatFn(p)
		}

		status := finalStatus(last.Error())
		title = tileFormat.Sprint("Analyzed project")
		auxInfo := auxInfoFormat.Sprintf("[%d files, %d findings]", last.Current(), mon.FindingsDiscovered.Current())
		_, _ = io.WriteString(line, fmt.Sprintf(statusTitleTemplate+"%s", status, title, auxInfo))
		_, _ = io.WriteString(line2, fmt.Sprintf(statusTitleTemplate+"%s", status, title2, summary()))
	}()

	return nil
}

func (r *Handler) TaskStartedHandler(ctx context.Context, fr *frame.Frame, e partybus.Event, wg *sync.WaitGroup) error {
	task, err := parsers.ParseTaskStarted(e)
	if err != nil {
		return fmt.Errorf("bad %s event: %w", e.Type, err)
	}

	line, err := fr.Append()
	if err != nil {
		return err
	}

	wg.Add(1)

	formatter, spin := startProcess()
	stream := progress.Stream(ctx, task, 150*time.Millisecond)
	title := tileFormat.Sprint(task.Title + "...")

	formatFn := func(p progress.Progress) {
		var progStr, auxInfo string
		switch {
		case task.Stage.Stage() == "downloading" && p.Size() > 0:
			progStr, _ = formatter.Format(p)
			auxInfo = auxInfoFormat.Sprintf(" [%s / %s]", humanize.Bytes(uint64(p.Current())), humanize.Bytes(uint64(p.Size())))
		default:
			auxInfo = auxInfoFormat.Sprintf("[%s]", task.Stage.Stage())
		}
		_, _ = io.WriteString(line, fmt.Sprintf(statusTitleTemplate+"%s%s", color.Magenta.Sprint(spin.Next()), title, progStr, auxInfo))
	}

	go func() {
		defer wg.Done()

		var last progress.Progress
		formatFn(last)
		for p := range stream {
			last = p
			formatFn(p)
		}

		title = tileFormat.Sprint(task.Title)
		auxInfo := auxInfoFormat.Sprintf("[%s]", task.Context)
		_, _ = io.WriteString(line, fmt.Sprintf(statusTitleTemplate+"%s", finalStatus(last.Error()), title, auxInfo))
	}()
	return nil
}
