package applications

import (
	"errors"
	"testing"

	"animal-sanctuary/internal/platform/apperr"

	"github.com/stretchr/testify/assert"
)

func TestStateMachine_Table(t *testing.T) {
	m := NewStateMachine()

	legal := map[Status][]Status{
		StatusSubmitted:          {StatusUnderReview, StatusInterviewScheduled, StatusApproved, StatusRejected, StatusWithdrawn},
		StatusUnderReview:        {StatusInterviewScheduled, StatusApproved, StatusRejected, StatusWithdrawn},
		StatusInterviewScheduled: {StatusApproved, StatusRejected, StatusWithdrawn},
		StatusApproved:           nil,
		StatusRejected:           nil,
		StatusWithdrawn:          nil,
	}

	for from, tos := range legal {
		allowed := map[Status]bool{}
		for _, to := range tos {
			allowed[to] = true
		}
		for _, to := range allStatuses {
			assert.Equalf(t, allowed[to], m.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestStateMachine_NoBackwardsMoves(t *testing.T) {
	m := NewStateMachine()
	assert.False(t, m.CanTransition(StatusUnderReview, StatusSubmitted))
	assert.False(t, m.CanTransition(StatusInterviewScheduled, StatusUnderReview))
	assert.False(t, m.CanTransition(StatusSubmitted, StatusSubmitted))
}

func TestStateMachine_ValidateErrors(t *testing.T) {
	m := NewStateMachine()

	assert.NoError(t, m.Validate(StatusSubmitted, StatusApproved))

	err := m.Validate(StatusApproved, StatusWithdrawn)
	assert.True(t, errors.Is(err, ErrIllegalTransition))
	assert.Equal(t, apperr.KindRule, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "Approved")

	err = m.Validate(StatusInterviewScheduled, StatusUnderReview)
	assert.True(t, errors.Is(err, ErrIllegalTransition))
	assert.Contains(t, err.Error(), "from Interview Scheduled to Under Review")
}

func TestStateMachine_Next(t *testing.T) {
	m := NewStateMachine()
	assert.Equal(t, []Status{StatusApproved, StatusRejected, StatusWithdrawn}, m.Next(StatusInterviewScheduled))
	assert.Empty(t, m.Next(StatusRejected))
}

func TestParseStatus(t *testing.T) {
	st, ok := ParseStatus(" Under Review ")
	assert.True(t, ok)
	assert.Equal(t, StatusUnderReview, st)

	_, ok = ParseStatus("under review")
	assert.False(t, ok)

	assert.True(t, StatusWithdrawn.IsTerminal())
	assert.False(t, StatusSubmitted.IsTerminal())
}
