package parsers

import (
	"fmt"

	"github.com/wagoodman/go-partybus"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/event"
	"github.com/protalal11-ops/apk-forensic-toolkit/aft/event/monitor"
)

type ErrBadPayload struct {
	Type  partybus.EventType
	Field string
	Value interface{}
}

func (e *ErrBadPayload) Error() string {
	return fmt.Sprintf("event='%s' has bad event payload field='%v': '%+v'", string(e.Type), e.Field, e.Value)
}

func newPayloadErr(t partybus.EventType, field string, value interface{}) error {
	return &ErrBadPayload{
		Type:  t,
		Field: field,
		Value: value,
	}
}

func checkEventType(actual, expected partybus.EventType) error {
	if actual != expected {
		return newPayloadErr(expected, "Type", actual)
	}
	return nil
}

func ParseExtractionStarted(e partybus.Event) (*monitor.Extraction, error) {
	if err := checkEventType(e.Type, event.ExtractionStarted); err != nil {
		return nil, err
	}

	mon, ok := e.Value.(monitor.Extraction)
	if !ok {
		return nil, newPayloadErr(e.Type, "Value", e.Value)
	}

	return &mon, nil
}

func ParseAnalysisStarted(e partybus.Event) (*monitor.Analysis, error) {
	if err := checkEventType(e.Type, event.AnalysisStarted); err != nil {
		return nil, err
	}

	mon, ok := e.Value.(monitor.Analysis)
	if !ok {
		return nil, newPayloadErr(e.Type, "Value", e.Value)
	}

	return &mon, nil
}

func ParseTaskStarted(e partybus.Event) (*monitor.Task, error) {
	if err := checkEventType(e.Type, event.TaskStarted); err != nil {
		return nil, err
	}

	mon, ok := e.Value.(monitor.Task)
	if !ok {
		return nil, newPayloadErr(e.Type, "Value", e.Value)
	}

	return &mon, nil
}

type UpdateCheck struct {
	New     string
	Current string
}

func ParseAppUpdateAvailable(e partybus.Event) (*UpdateCheck, error) {
	if err := checkEventType(e.Type, event.AppUpdateAvailable); err != nil {
		return nil, err
	}

	updateCheck, ok := e.Value.(UpdateCheck)
	if !ok {
		return nil, newPayloadErr(e.Type, "Value", e.Value)
	}

	return &updateCheck, nil
}

func ParseCLIReport(e partybus.Event) (string, string, error) {
	if err := checkEventType(e.Type, event.CLIReport); err != nil {
		return "", "", err
	}

	context, ok := e.Source.(string)
	if !ok {
		// this is optional
		context = ""
	}

	report, ok := e.Value.(string)
	if !ok {
		return "", "", newPayloadErr(e.Type, "Value", e.Value)
	}

	return context, report, nil
}

func ParseCLINotification(e partybus.Event) (string, string, error) {
	if err := checkEventType(e.Type, event.CLINotification); err != nil {
		return "", "", err
	}

	context, ok := e.Source.(string)
	if !ok {
		// this is optional
		context = ""
	}

	notification, ok := e.Value.(string)
	if !ok {
		return "", "", newPayloadErr(e.Type, "Value", e.Value)
	}

	return context, notification, nil
}
