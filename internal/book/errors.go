package book

import "errors"

// Sentinel errors returned by the service and repository. Anything that does
// not match one of these is a storage or connectivity failure and is safe to
// retry (re-running a transition that actually committed will append a
// duplicate change-log entry; callers needing exactly-once must keep their
// own idempotency keys).
var (
	// ErrNotFound: the book does not exist or has been removed.
	ErrNotFound = errors.New("book not found")

	// ErrConflict: the transition's compare-and-set guard matched zero
	// rows. The book moved out of the expected state concurrently; re-read
	// before retrying.
	ErrConflict = errors.New("book state conflict")

	// ErrUnauthorized: the actor does not satisfy the transition's role or
	// holder requirement.
	ErrUnauthorized = errors.New("not allowed")

	// ErrUpstreamUnavailable: the catalog metadata lookup failed. Only
	// Acquire returns it.
	ErrUpstreamUnavailable = errors.New("metadata lookup unavailable")
)
