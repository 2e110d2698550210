package emulator

import (
	"context"
	"errors"

	"github.com/looplab/fsm"

	"github.com/moffa90/go-eepromab/protocol"
)

// Partition lifecycle states.
const (
	StateUnset     = "unset"
	StateValid     = "valid"
	StateCommitted = "committed"
)

// Partition lifecycle events.
const (
	eventErase      = "erase"
	eventValidate   = "validate"
	eventInvalidate = "invalidate"
	eventCommit     = "commit"
	eventDemote     = "demote"
)

// newLifecycle builds the state machine of one partition.
//
//	unset --validate--> valid --commit--> committed
//	valid --invalidate--> unset           committed --demote--> valid
//	unset|valid --erase--> unset          unset --commit--> committed
func newLifecycle(p protocol.Partition, initial string, logger Logger) *fsm.FSM {
	events := fsm.Events{
		{Name: eventErase, Src: []string{StateUnset, StateValid}, Dst: StateUnset},
		{Name: eventValidate, Src: []string{StateUnset, StateValid}, Dst: StateValid},
		{Name: eventInvalidate, Src: []string{StateValid}, Dst: StateUnset},
		{Name: eventCommit, Src: []string{StateUnset, StateValid}, Dst: StateCommitted},
		{Name: eventDemote, Src: []string{StateCommitted}, Dst: StateValid},
	}

	callbacks := fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			if logger != nil {
				logger.Debug("partition state changed",
					"partition", p.String(),
					"event", e.Event,
					"from", e.Src,
					"to", e.Dst,
				)
			}
		},
	}

	return fsm.NewFSM(initial, events, callbacks)
}

// transition fires event on the lifecycle of p. A self transition is not
// an error.
func (e *Emulator) transition(p protocol.Partition, event string) error {
	err := e.lifecycle[p].Event(context.Background(), event)
	var noTransition fsm.NoTransitionError
	if err == nil || errors.As(err, &noTransition) {
		return nil
	}
	return err
}

func (e *Emulator) state(p protocol.Partition) string {
	return e.lifecycle[p].Current()
}
