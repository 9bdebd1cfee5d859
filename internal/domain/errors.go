package domain

import (
	"context"
	"errors"
)

var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrSecretNotFound      = errors.New("secret not found")
	ErrInvalidAccount      = errors.New("invalid account")
	ErrInvalidTransferSpec = errors.New("invalid transfer spec")
)

// Fatal outcomes. Any of these aborts the remaining run for an account.
var (
	ErrLoginFailed           = errors.New("login failed")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrFeeReviewUnreadable   = errors.New("fee review unreadable")
	ErrResumptionUnavailable = errors.New("resumption unavailable")
	ErrRetryBudgetExhausted  = errors.New("retry budget exhausted")
	ErrWidgetStepFailed      = errors.New("widget step failed")
)

// Retryable outcomes. The workflow restarts from the form-filling step.
var (
	ErrAmbiguousSignOutcome = errors.New("ambiguous sign outcome")
	ErrSuccessNotObserved   = errors.New("success not observed")
)

func IsRetryable(err error) bool {
	return errors.Is(err, ErrAmbiguousSignOutcome) || errors.Is(err, ErrSuccessNotObserved)
}

func IsFatal(err error) bool {
	return err != nil && !IsRetryable(err)
}

// FailureKind maps an outcome to a stable label for logs and metrics.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrLoginFailed):
		return "login_failed"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrFeeReviewUnreadable):
		return "fee_review_unreadable"
	case errors.Is(err, ErrResumptionUnavailable):
		return "resumption_unavailable"
	case errors.Is(err, ErrRetryBudgetExhausted):
		return "retry_budget_exhausted"
	case errors.Is(err, ErrWidgetStepFailed):
		return "widget_step_failed"
	case errors.Is(err, ErrAmbiguousSignOutcome):
		return "ambiguous_sign_outcome"
	case errors.Is(err, ErrSuccessNotObserved):
		return "success_not_observed"
	case errors.Is(err, context.DeadlineExceeded):
		return "budget_exceeded"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "unknown"
	}
}
