package ui

import (
	"github.com/wagoodman/go-partybus"
)

// UI is a partybus.Handler that owns the terminal for the lifetime of a command.
type UI interface {
	Setup(unsubscribe func() error) error
	partybus.Handler
	Teardown(force bool) error
}
