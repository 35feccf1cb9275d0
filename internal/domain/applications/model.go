package applications

import (
	"strings"
	"time"
)

// Status de revisión de la solicitud.
// @Enum Submitted, Under Review, Interview Scheduled, Approved, Rejected, Withdrawn
type Status string

const (
	StatusSubmitted          Status = "Submitted"
	StatusUnderReview        Status = "Under Review"
	StatusInterviewScheduled Status = "Interview Scheduled"
	StatusApproved           Status = "Approved"
	StatusRejected           Status = "Rejected"
	StatusWithdrawn          Status = "Withdrawn"
)

var allStatuses = []Status{
	StatusSubmitted,
	StatusUnderReview,
	StatusInterviewScheduled,
	StatusApproved,
	StatusRejected,
	StatusWithdrawn,
}

func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, st := range allStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// ActiveStatuses son los no terminales. Un animal tiene a lo sumo una solicitud en alguno de ellos.
func ActiveStatuses() []Status {
	return []Status{StatusSubmitted, StatusUnderReview, StatusInterviewScheduled}
}

func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusWithdrawn
}

// AutoRejectReason se usa al rechazar solicitudes hermanas cuando se aprueba otra.
const AutoRejectReason = "animal no longer available"

// Application vincula un adoptante con un animal.
// ApprovalDate está seteado sii Status == Approved; RejectionReason sii Status == Rejected.
type Application struct {
	ID int64 `json:"application_id"`

	AdopterID int64 `json:"adopter_id"`
	AnimalID  int64 `json:"animal_id"`

	ApplicationDate time.Time `json:"application_date"`
	Status          Status    `json:"status"`

	ReasonForAdoption     string     `json:"reason_for_adoption"`
	LivingArrangement     string     `json:"living_arrangement"`
	References            string     `json:"references"`
	WorkSchedule          string     `json:"work_schedule"`
	PlanForPetCare        string     `json:"plan_for_pet_care"`
	PreferredAdoptionDate *time.Time `json:"preferred_adoption_date"`
	MonthlyBudget         *float64   `json:"monthly_budget"`

	InterviewDate   *time.Time `json:"interview_date"`
	StaffNotes      string     `json:"staff_notes"`
	ApprovalDate    *time.Time `json:"approval_date"`
	RejectionReason string     `json:"rejection_reason"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
