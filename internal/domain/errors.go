package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrNotConfigured indicates no gift rule has been saved yet.
	ErrNotConfigured = errors.New("gift rule not configured")

	// ErrCartNotFound indicates the platform has no cart for the given id.
	ErrCartNotFound = errors.New("cart not found")

	// ErrUpstreamUnavailable indicates the platform API could not be reached
	// or is not provisioned for this shop.
	ErrUpstreamUnavailable = errors.New("upstream api unavailable")
)
