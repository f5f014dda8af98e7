package ui

import (
	"context"
	"sync"

	"github.com/wagoodman/go-partybus"
	"github.com/wagoodman/jotframe/pkg/frame"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/event"
)

// Handler renders the progress monitors published by the aft library.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (r *Handler) RespondsTo(e partybus.Event) bool {
	switch e.Type {
	case event.ExtractionStarted,
		event.AnalysisStarted,
		event.TaskStarted:
		return true
	default:
		return false
	}
}

func (r *Handler) Handle(ctx context.Context, fr *frame.Frame, e partybus.Event, wg *sync.WaitGroup) error {
	switch e.Type {
	case event.ExtractionStarted:
		return r.ExtractionStartedHandler(ctx, fr, e, wg)
	case event.AnalysisStarted:
		return r.AnalysisStartedHandler(ctx, fr, e, wg)
	case event.TaskStarted:
		return r.TaskStartedHandler(ctx, fr, e, wg)
	}
	return nil
}
