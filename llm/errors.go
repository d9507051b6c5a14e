package llm

import "errors"

var (
	// ErrMissingCredential is returned when the selected provider has no API key.
	// It is raised before any network call and is never retried.
	ErrMissingCredential = errors.New("missing credential")

	// ErrUnknownProvider is returned for selectors outside the supported set.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrProviderCallFailed wraps any upstream transport, auth or API error.
	ErrProviderCallFailed = errors.New("provider call failed")

	// ErrUnsupported is returned for operations a provider does not offer.
	ErrUnsupported = errors.New("operation not supported by provider")
)
