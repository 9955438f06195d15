package model

type TemplateStatus string

const (
	TemplateStatusDraft    TemplateStatus = "DRAFT"
	TemplateStatusActive   TemplateStatus = "ACTIVE"
	TemplateStatusArchived TemplateStatus = "ARCHIVED"
)

type Frequency string

const (
	FrequencyWeekly   Frequency = "WEEKLY"
	FrequencyBiweekly Frequency = "BIWEEKLY"
)

type SessionStatus string

const (
	SessionStatusOffered    SessionStatus = "OFFERED"
	SessionStatusClaimed    SessionStatus = "CLAIMED"
	SessionStatusApproved   SessionStatus = "APPROVED"
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
	SessionStatusEvaluated  SessionStatus = "EVALUATED"
	SessionStatusRefused    SessionStatus = "REFUSED"
	SessionStatusCancelled  SessionStatus = "CANCELLED"
)

// SessionStatuses lists every session status in lifecycle order.
var SessionStatuses = []SessionStatus{
	SessionStatusOffered,
	SessionStatusClaimed,
	SessionStatusApproved,
	SessionStatusInProgress,
	SessionStatusCompleted,
	SessionStatusEvaluated,
	SessionStatusRefused,
	SessionStatusCancelled,
}

func (s SessionStatus) Valid() bool {
	for _, v := range SessionStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition may leave s.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusEvaluated || s == SessionStatusRefused || s == SessionStatusCancelled
}

// Live reports whether a session in status s occupies its (template, date) slot.
func (s SessionStatus) Live() bool {
	return s != SessionStatusCancelled && s != SessionStatusRefused
}
