// Package apperr carries the structured errors returned by the session engine.
//
// Every error produced by a usecase is an *Error (possibly wrapped with a
// stack by github.com/cockroachdb/errors). Handlers use KindOf to pick an HTTP
// status and render the remaining fields so clients can show a precise message.
package apperr

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind is the coarse error class.
type Kind string

const (
	KindValidation     Kind = "VALIDATION"
	KindNotFound       Kind = "NOT_FOUND"
	KindConflict       Kind = "CONFLICT"
	KindStateViolation Kind = "STATE_VIOLATION"
	KindAuthorization  Kind = "AUTHORIZATION"
	KindInternal       Kind = "INTERNAL"
)

// Code names the specific failure inside a Kind.
type Code string

const (
	CodeInvalidInput        Code = "INVALID_INPUT"
	CodeInvalidRating       Code = "INVALID_RATING"
	CodeNotFound            Code = "NOT_FOUND"
	CodeClaimConflict       Code = "CLAIM_CONFLICT"
	CodeDuplicateEvaluation Code = "DUPLICATE_EVALUATION"
	CodeSlotConflict        Code = "SLOT_CONFLICT"
	CodeIllegalTransition   Code = "ILLEGAL_TRANSITION"
	CodeIncompleteSteps     Code = "INCOMPLETE_STEPS"
	CodeSessionNotActive    Code = "SESSION_NOT_ACTIVE"
	CodeSessionLocked       Code = "SESSION_LOCKED"
	CodeSessionNotOffered   Code = "SESSION_NOT_OFFERED"
	CodeSessionNotCompleted Code = "SESSION_NOT_COMPLETED"
	CodeSessionNotStartable Code = "SESSION_NOT_STARTABLE"
	CodeSessionPriceLocked  Code = "SESSION_PRICE_LOCKED"
	CodeTemplateNotActive   Code = "TEMPLATE_NOT_ACTIVE"
	CodeTemplateNotEditable Code = "TEMPLATE_NOT_EDITABLE"
	CodeNoEligibleDays      Code = "NO_ELIGIBLE_DAYS"
	CodeNotAuthorized       Code = "NOT_AUTHORIZED"
	CodeEmployeeNotEligible Code = "EMPLOYEE_NOT_ELIGIBLE"
	CodeInternal            Code = "INTERNAL"
)

// Error is the structured error value. Zero-valued fields are omitted when rendered.
type Error struct {
	Kind       Kind              `json:"kind"`
	Code       Code              `json:"code"`
	Message    string            `json:"message"`
	SessionID  string            `json:"session_id,omitempty"`
	TemplateID string            `json:"template_id,omitempty"`
	From       string            `json:"from,omitempty"`
	To         string            `json:"to,omitempty"`
	Remaining  int               `json:"remaining,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}

func (e *Error) Error() string {
	if e.SessionID != "" {
		return fmt.Sprintf("%s: %s (session %s)", e.Code, e.Message, e.SessionID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same Code, so sentinel-style checks work:
//
//	errors.Is(err, &apperr.Error{Code: apperr.CodeClaimConflict})
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func newErr(kind Kind, code Code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

// CodeOf returns the Code of err, CodeInternal for foreign errors.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeInternal
}

// HasCode reports whether err carries code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

func withStack(e *Error) error {
	return errors.WithStackDepth(e, 1)
}

// Validation

func Invalid(msg string, fields map[string]string) error {
	e := newErr(KindValidation, CodeInvalidInput, msg)
	e.Fields = fields
	return withStack(e)
}

func InvalidRating(sessionID string, rating int) error {
	e := newErr(KindValidation, CodeInvalidRating, fmt.Sprintf("rating %d outside 1-5", rating))
	e.SessionID = sessionID
	return withStack(e)
}

// NotFound

func NotFound(resource, id string) error {
	e := newErr(KindNotFound, CodeNotFound, fmt.Sprintf("%s %s not found", resource, id))
	e.Fields = map[string]string{"resource": resource, "id": id}
	return withStack(e)
}

// Conflict

func ClaimConflict(sessionID string) error {
	e := newErr(KindConflict, CodeClaimConflict, "session already claimed")
	e.SessionID = sessionID
	return withStack(e)
}

func DuplicateEvaluation(sessionID string) error {
	e := newErr(KindConflict, CodeDuplicateEvaluation, "session already evaluated")
	e.SessionID = sessionID
	return withStack(e)
}

func SlotConflict(templateID string) error {
	e := newErr(KindConflict, CodeSlotConflict, "a live session already covers one of the generated slots")
	e.TemplateID = templateID
	return withStack(e)
}

// StateViolation

func IllegalTransition(sessionID, from, to string) error {
	e := newErr(KindStateViolation, CodeIllegalTransition, fmt.Sprintf("cannot move from %s to %s", from, to))
	e.SessionID = sessionID
	e.From = from
	e.To = to
	return withStack(e)
}

func IncompleteSteps(sessionID string, remaining int) error {
	e := newErr(KindStateViolation, CodeIncompleteSteps, fmt.Sprintf("%d step(s) not completed", remaining))
	e.SessionID = sessionID
	e.Remaining = remaining
	return withStack(e)
}

func SessionNotActive(sessionID, status string) error {
	e := newErr(KindStateViolation, CodeSessionNotActive, "session is not in progress")
	e.SessionID = sessionID
	e.From = status
	return withStack(e)
}

func SessionLocked(sessionID, status string) error {
	e := newErr(KindStateViolation, CodeSessionLocked, "session progress is locked")
	e.SessionID = sessionID
	e.From = status
	return withStack(e)
}

func SessionPriceLocked(sessionID, status string) error {
	e := newErr(KindStateViolation, CodeSessionPriceLocked, "session price can no longer change")
	e.SessionID = sessionID
	e.From = status
	return withStack(e)
}

func SessionNotOffered(sessionID, status string) error {
	e := newErr(KindStateViolation, CodeSessionNotOffered, "session is not offered")
	e.SessionID = sessionID
	e.From = status
	return withStack(e)
}

func SessionNotCompleted(sessionID, status string) error {
	e := newErr(KindStateViolation, CodeSessionNotCompleted, "session is not completed")
	e.SessionID = sessionID
	e.From = status
	return withStack(e)
}

func SessionNotStartable(sessionID, scheduledDate string) error {
	e := newErr(KindStateViolation, CodeSessionNotStartable, "session cannot start before "+scheduledDate)
	e.SessionID = sessionID
	return withStack(e)
}

func TemplateNotActive(templateID, status string) error {
	e := newErr(KindStateViolation, CodeTemplateNotActive, "template is not active")
	e.TemplateID = templateID
	e.From = status
	return withStack(e)
}

func TemplateNotEditable(templateID, status string) error {
	e := newErr(KindStateViolation, CodeTemplateNotEditable, "only draft templates can be edited")
	e.TemplateID = templateID
	e.From = status
	return withStack(e)
}

func TemplateIllegalTransition(templateID, from, to string) error {
	e := newErr(KindStateViolation, CodeIllegalTransition, fmt.Sprintf("cannot move template from %s to %s", from, to))
	e.TemplateID = templateID
	e.From = from
	e.To = to
	return withStack(e)
}

func NoEligibleDays(templateID string) error {
	e := newErr(KindStateViolation, CodeNoEligibleDays, "recurring template has no eligible weekdays")
	e.TemplateID = templateID
	return withStack(e)
}

// AuthorizationViolation

func NotAuthorized(msg string) error {
	return withStack(newErr(KindAuthorization, CodeNotAuthorized, msg))
}

func EmployeeNotEligible(employeeID string) error {
	e := newErr(KindAuthorization, CodeEmployeeNotEligible, "employee account is not active")
	e.Fields = map[string]string{"employee_id": employeeID}
	return withStack(e)
}

// Internal wraps an unexpected error, keeping its cause for logs.
func Internal(err error, msg string) error {
	return errors.Wrap(err, msg)
}
