package domain

import "errors"

var (
	// ErrProductNotFound is returned for an unknown product key.
	ErrProductNotFound = errors.New("product not found")

	// ErrNoActiveSession is returned when a purchase step arrives outside the state it requires.
	ErrNoActiveSession = errors.New("no active session")

	// ErrUpstreamUnavailable wraps failures of the chat transport or the completion service.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
