package analysis

import (
	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/go-progress"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/event"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/event/monitor"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/finding"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/bus"
)

type tracker struct {
	files      *progress.Manual
	findings   *progress.Manual
	bySeverity map[finding.Severity]*progress.Manual
}

func newTracker() *tracker {
	t := &tracker{
		files:      progress.NewManual(-1),
		findings:   progress.NewManual(-1),
		bySeverity: make(map[finding.Severity]*progress.Manual),
	}
	for _, sev := range finding.AllSeverities {
		t.bySeverity[sev] = progress.NewManual(-1)
	}
	return t
}

func (t *tracker) publish(project string) {
	bySeverity := make(map[finding.Severity]progress.Monitorable)
	for sev, m := range t.bySeverity {
		bySeverity[sev] = m
	}

	bus.Publish(partybus.Event{
		Type:   event.AnalysisStarted,
		Source: project,
		Value: monitor.Analysis{
			Project:            project,
			FilesProcessed:     t.files,
			FindingsDiscovered: t.findings,
			BySeverity:         bySeverity,
		},
	})
}

func (t *tracker) add(findings ...finding.Finding) {
	for _, f := range findings {
		t.findings.Increment()
		if m, ok := t.bySeverity[f.Severity]; ok {
			m.Increment()
		}
	}
}

func (t *tracker) done(err error) {
	if err != nil {
		t.files.SetError(err)
		return
	}
	t.files.SetCompleted()
	t.findings.SetCompleted()
	for _, m := range t.bySeverity {
		m.SetCompleted()
	}
}
