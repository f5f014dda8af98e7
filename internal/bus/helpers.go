package bus

import (
	"github.com/wagoodman/go-partybus"

	"github.com/protalal11-ops/apk-forensic-toolkit/aft/event"
)

func Exit() {
	Publish(partybus.Event{
		Type: event.CLIExit,
	})
}

func Report(context, report string) {
	Publish(partybus.Event{
		Type:   event.CLIReport,
		Source: context,
		Value:  report,
	})
}

func Notify(context, message string) {
	Publish(partybus.Event{
		Type:   event.CLINotification,
		Source: context,
		Value:  message,
	})
}
