/*
Package event provides event types for all events that the aft library published onto the event bus. By convention, for each event
defined here there should be a corresponding event parser defined in the parsers/ child package.
*/
package event

import "github.com/wagoodman/go-partybus"

const (
	AppUpdateAvailable partybus.EventType = "aft-app-update-available"
	ExtractionStarted  partybus.EventType = "aft-extraction-started"
	AnalysisStarted    partybus.EventType = "aft-analysis-started"
	TaskStarted        partybus.EventType = "aft-task-started"
	CLIReport          partybus.EventType = "aft-cli-report"
	CLINotification    partybus.EventType = "aft-cli-notification"
	CLIExit            partybus.EventType = "aft-cli-exit-event"
)
