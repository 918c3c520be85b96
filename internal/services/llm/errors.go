package llm

import "errors"

// ErrEmptyResponse is returned when the provider completes without
// producing any text. Callers substitute a fallback reply rather than
// surfacing this to the user as a failure.
var ErrEmptyResponse = errors.New("llm returned empty response")
