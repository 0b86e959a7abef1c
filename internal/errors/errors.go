// internal/errors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// ErrEmptyAudience is returned when a segment predicate matches no customers.
// A campaign must never be created for an empty segment.
var ErrEmptyAudience = errors.New("no customers match the provided segment rules")

// InvalidPredicateError reports a segment predicate that is empty, references
// an unknown customer attribute, or carries a value incompatible with the
// attribute's type.
type InvalidPredicateError struct {
	Reason string
}

func (e *InvalidPredicateError) Error() string {
	return "invalid segment rules: " + e.Reason
}

func NewInvalidPredicate(format string, args ...any) error {
	return &InvalidPredicateError{Reason: fmt.Sprintf(format, args...)}
}

// TranslationFailedError reports that the natural-language translator returned
// nothing parsable. Distinct from InvalidPredicateError: the prompt may have
// been fine and the model response garbage.
type TranslationFailedError struct {
	Cause error
}

func (e *TranslationFailedError) Error() string {
	if e.Cause != nil {
		return "failed to parse natural language prompt: " + e.Cause.Error()
	}
	return "failed to parse natural language prompt"
}

func (e *TranslationFailedError) Unwrap() error { return e.Cause }

// NotFoundError reports an unknown campaign, customer or communication log id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func NewCampaignNotFound(id string) error {
	return &NotFoundError{Resource: "campaign", ID: id}
}

func NewLogNotFound(id string) error {
	return &NotFoundError{Resource: "communication log", ID: id}
}

// InvalidTransitionError reports an out-of-order lifecycle call, e.g.
// triggering a campaign that is no longer pending.
type InvalidTransitionError struct {
	CampaignID string
	Status     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("campaign %s cannot be triggered in status %q", e.CampaignID, e.Status)
}

// InvalidReceiptError reports a delivery receipt with a missing log id or a
// status outside {SENT, FAILED}.
type InvalidReceiptError struct {
	Reason string
}

func (e *InvalidReceiptError) Error() string {
	return "invalid delivery receipt: " + e.Reason
}

// InvalidArgumentError covers remaining request validation failures, such as a
// blank message template on trigger.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string { return e.Reason }

// StoreFailureError wraps a store write that did not complete, such as a bulk
// insert of ledger rows. Surfaced to clients as a generic server error.
type StoreFailureError struct {
	Op    string
	Cause error
}

func (e *StoreFailureError) Error() string {
	return fmt.Sprintf("store operation %s failed: %v", e.Op, e.Cause)
}

func (e *StoreFailureError) Unwrap() error { return e.Cause }
