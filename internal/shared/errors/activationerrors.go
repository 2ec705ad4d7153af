package errors

import "errors"

// ActivationErrorKind classifies plan activation failures. The kinds map
// one-to-one onto the conditions callers branch on: local precondition
// failures are never retried, external rejections carry the provider's
// own message, and the inconsistent-identity kind marks the terminal
// state of the bounded new-client retry.
type ActivationErrorKind string

const (
	KindIdentityRequired          ActivationErrorKind = "identity_required"
	KindPhoneUnverified           ActivationErrorKind = "phone_unverified"
	KindPlanNotFound              ActivationErrorKind = "plan_not_found"
	KindPaymentRequired           ActivationErrorKind = "payment_required"
	KindFreePlanAlreadyGranted    ActivationErrorKind = "free_plan_already_granted"
	KindIdentityStateInconsistent ActivationErrorKind = "identity_state_inconsistent"
	KindExternalAPIUnavailable    ActivationErrorKind = "external_api_unavailable"
	KindExternalAPIRejected       ActivationErrorKind = "external_api_rejected"
	KindPaymentUnverifiable       ActivationErrorKind = "payment_unverifiable"
	KindWebhookCorrelationFailed  ActivationErrorKind = "webhook_correlation_failed"
)

// ActivationError is a typed, user-displayable activation failure.
// Message carries the provider's own error text when one exists.
type ActivationError struct {
	Kind    ActivationErrorKind
	Message string
}

func (e *ActivationError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func NewActivationError(kind ActivationErrorKind, message string) *ActivationError {
	return &ActivationError{Kind: kind, Message: message}
}

// GetActivationError extracts an ActivationError from an error chain.
func GetActivationError(err error) *ActivationError {
	var actErr *ActivationError
	if errors.As(err, &actErr) {
		return actErr
	}
	return nil
}

// IsActivationKind reports whether err is an ActivationError of the given kind.
func IsActivationKind(err error, kind ActivationErrorKind) bool {
	actErr := GetActivationError(err)
	return actErr != nil && actErr.Kind == kind
}
