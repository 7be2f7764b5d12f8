package availability

import "errors"

// ErrValidation marks malformed or out-of-range tool arguments. Wrapped with
// a field-level description before it reaches the handler.
var ErrValidation = errors.New("invalid args")
