package domain

import "errors"

// Rejected operations
var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrSelfSponsorship      = errors.New("user cannot sponsor themselves")
	ErrSponsorAlreadySet    = errors.New("sponsor already set")
	ErrCommissionNotPending = errors.New("commission is not pending")
	ErrAffiliateExists      = errors.New("affiliate already registered")
	ErrSponsorIsDescendant  = errors.New("sponsor is in the user's downline")
)

// Not found
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrSponsorNotFound    = errors.New("sponsor not found")
	ErrAffiliateNotFound  = errors.New("affiliate not found")
	ErrCommissionNotFound = errors.New("commission not found")
	ErrUnknownDivision    = errors.New("unknown division")
	ErrUnknownDistrict    = errors.New("unknown district")
)

// Invariant violations. These abort the mutating transaction and are never coerced.
var (
	ErrNegativeBalance = errors.New("balance invariant violated: negative balance")
	ErrCyclicHierarchy = errors.New("hierarchy invariant violated: cycle detected")
)

// ErrDependencyUnavailable wraps identity / purchase-history failures. Retryable.
var ErrDependencyUnavailable = errors.New("dependency unavailable")

func IsRetryable(err error) bool {
	return errors.Is(err, ErrDependencyUnavailable)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrSponsorNotFound) ||
		errors.Is(err, ErrAffiliateNotFound) ||
		errors.Is(err, ErrCommissionNotFound) ||
		errors.Is(err, ErrUnknownDivision) ||
		errors.Is(err, ErrUnknownDistrict)
}

func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrNegativeBalance) || errors.Is(err, ErrCyclicHierarchy)
}
