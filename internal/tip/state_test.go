package tip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition_HappyPath(t *testing.T) {
	s := StateSelect
	for _, step := range []struct {
		event Event
		want  State
	}{
		{EventStart, StatePreparing},
		{EventWarmedUp, StateConfirm},
		{EventSubmit, StateSending},
		{EventSucceeded, StateDone},
		{EventReset, StateSelect},
	} {
		next, err := Transition(s, step.event)
		require.NoError(t, err, "%s on %s", s, step.event)
		assert.Equal(t, step.want, next)
		s = next
	}
}

func TestTransition_AbortAlwaysReturnsToSelect(t *testing.T) {
	for _, s := range States() {
		if s == StateDone {
			continue
		}
		next, err := Transition(s, EventAbort)
		require.NoError(t, err, s)
		assert.Equal(t, StateSelect, next, s)
	}

	_, err := Transition(StateDone, EventAbort)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestTransition_SendingOnlyLeavesForwardOrBack(t *testing.T) {
	for _, e := range Events() {
		next, err := Transition(StateSending, e)
		if err != nil {
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, StateSending, next)
			continue
		}
		assert.Contains(t, []State{StateDone, StateSelect}, next, "sending on %s", e)
	}
}

func TestTransition_Exhaustive(t *testing.T) {
	// No event ever moves the flow backwards except to select.
	order := map[State]int{}
	for i, s := range States() {
		order[s] = i
	}
	for _, s := range States() {
		for _, e := range Events() {
			next, err := Transition(s, e)
			if err != nil {
				continue
			}
			if next != StateSelect {
				assert.Equal(t, order[s]+1, order[next], "%s on %s -> %s", s, e, next)
			}
		}
	}
}

func TestState_InFlight(t *testing.T) {
	assert.False(t, StateSelect.InFlight())
	assert.True(t, StatePreparing.InFlight())
	assert.True(t, StateConfirm.InFlight())
	assert.True(t, StateSending.InFlight())
	assert.False(t, StateDone.InFlight())
}
