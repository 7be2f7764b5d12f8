package tenant

import "errors"

var (
	// ErrMissingContext means the call carried no tenant signal at all.
	ErrMissingContext = errors.New("missing tenant context in call metadata")
	// ErrResolutionFailed means a signal was present but matched no business.
	ErrResolutionFailed = errors.New("no business found for provided tenant context")
)
