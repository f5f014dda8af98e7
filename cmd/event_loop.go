package cmd

import (
	"errors"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/wagoodman/go-partybus"

	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
	"github.com/protalal11-ops/apk-forensic-toolkit/internal/ui"
)

// eventLoop listens to worker errors (from execution path), worker events (from a partybus subscription), and
// signal interrupts. Is responsible for handling each event relative to a given UI and to coordinate eventing until
// an eventual graceful exit. On an interrupt the cleanup function is called right away so that running work (and
// the external tools it drives) is cancelled.
// nolint:gocognit,funlen
func eventLoop(workerErrs <-chan error, signals <-chan os.Signal, subscription *partybus.Subscription, cleanupFn func(), uxs ...ui.UI) error {
	defer cleanupFn()
	events := subscription.Events()
	var err error
	var ux ui.UI

	if ux, err = setupUI(subscription.Unsubscribe, uxs...); err != nil {
		return err
	}

	var retErr error
	var forceTeardown bool

	for {
		if workerErrs == nil && events == nil {
			break
		}
		select {
		case err, isOpen := <-workerErrs:
			if !isOpen {
				workerErrs = nil
				continue
			}
			if err != nil {
				// capture the error from the worker and unsubscribe to complete a graceful shutdown
				retErr = multierror.Append(retErr, err)
				_ = subscription.Unsubscribe()
				// the worker has exited, we may have been mid-handling events for the UI which should now be
				// ignored, in which case forcing a teardown of the UI regardless of the state is required.
				forceTeardown = true
			}
		case e, isOpen := <-events:
			if !isOpen {
				events = nil
				continue
			}

			if err := ux.Handle(e); err != nil {
				if errors.Is(err, partybus.ErrUnsubscribe) {
					events = nil
				} else {
					retErr = multierror.Append(retErr, err)
					// shutdown if there is a critical error
					if err := subscription.Unsubscribe(); err != nil {
						// unable to unsubscribe from the event bus, stop reading events and give up
						log.Warnf("unable to unsubscribe from the event bus: %+v", err)
						events = nil
					}
				}
			}
		case <-signals:
			// ignore further results from any event source and exit ASAP
			cleanupFn()
			events = nil
			workerErrs = nil
			forceTeardown = true
		}
	}

	if err := ux.Teardown(forceTeardown); err != nil {
		retErr = multierror.Append(retErr, err)
	}

	return retErr
}

// setupUI takes one or more UIs that responds to events and takes a event bus unsubscribe function for use
// during teardown. With more than one UI, the first UI that is able to be setup is used. An error is only
// returned if no UI could be setup.
func setupUI(unsubscribe func() error, uis ...ui.UI) (ui.UI, error) {
	var setupErr error
	for _, u := range uis {
		if err := u.Setup(unsubscribe); err != nil {
			setupErr = multierror.Append(setupErr, err)
			log.Debugf("unable to setup UI, trying the next one: %+v", err)
			continue
		}
		return u, nil
	}
	if setupErr == nil {
		return nil, errors.New("no UI given")
	}
	return nil, setupErr
}
