package applications

import "animal-sanctuary/internal/platform/apperr"

var ErrIllegalTransition = apperr.New(apperr.KindRule, "illegal status transition")

// StateMachine es la tabla de transiciones legales. Es la única fuente de verdad:
// handlers y repos no comparan estados por su cuenta.
type StateMachine struct {
	allowed map[Status]map[Status]struct{}
}

func NewStateMachine() StateMachine {
	edges := map[Status][]Status{
		StatusSubmitted:          {StatusUnderReview, StatusInterviewScheduled, StatusApproved, StatusRejected, StatusWithdrawn},
		StatusUnderReview:        {StatusInterviewScheduled, StatusApproved, StatusRejected, StatusWithdrawn},
		StatusInterviewScheduled: {StatusApproved, StatusRejected, StatusWithdrawn},
		// Approved, Rejected, Withdrawn: terminales.
	}

	m := StateMachine{allowed: make(map[Status]map[Status]struct{}, len(edges))}
	for from, tos := range edges {
		set := make(map[Status]struct{}, len(tos))
		for _, to := range tos {
			set[to] = struct{}{}
		}
		m.allowed[from] = set
	}
	return m
}

func (m StateMachine) CanTransition(from, to Status) bool {
	_, ok := m.allowed[from][to]
	return ok
}

// Next devuelve los destinos legales desde from (vacío si es terminal).
func (m StateMachine) Next(from Status) []Status {
	out := make([]Status, 0, len(m.allowed[from]))
	for _, st := range allStatuses {
		if m.CanTransition(from, st) {
			out = append(out, st)
		}
	}
	return out
}

func (m StateMachine) Validate(from, to Status) error {
	if m.CanTransition(from, to) {
		return nil
	}
	if from.IsTerminal() {
		return apperr.Wrapf(ErrIllegalTransition, "application is %s and cannot change status", from)
	}
	return apperr.Wrapf(ErrIllegalTransition, "cannot move application from %s to %s", from, to)
}
