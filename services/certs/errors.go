package certs

import "errors"

// Error taxonomy for the certificate subsystem. Controllers map these to
// HTTP statuses; batch operations use them to decide retryability.
var (
	// ErrNotEligible: the learner has not met an issuance requirement.
	// The wrapped message carries the first unmet condition.
	ErrNotEligible = errors.New("not eligible")

	// ErrAlreadyIssued: a live certificate already exists for the
	// (user, course) pair, including the loser of a concurrent insert race.
	ErrAlreadyIssued = errors.New("certificate already issued")

	// ErrRender: transient document generation or storage failure.
	// The certificate is left FAILED and can be repaired by RetryFailed.
	ErrRender = errors.New("render failed")

	// ErrData: a required content field is missing or malformed.
	// Retrying without fixing the record cannot succeed.
	ErrData = errors.New("certificate data invalid")

	// ErrEvaluation: a progress/enrollment collaborator was unavailable,
	// so eligibility could not be determined. Never reported as ineligible.
	ErrEvaluation = errors.New("eligibility evaluation failed")

	// ErrNotFound: unknown certificate id or verification code.
	ErrNotFound = errors.New("certificate not found")

	// ErrUnauthorized: the caller may not perform this operation.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidTransition: the requested status change is not a legal
	// lifecycle step (e.g. revoking a PENDING certificate).
	ErrInvalidTransition = errors.New("illegal status transition")
)
